package contact

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	contactsvc "github.com/folio-dev/folio/internal/service/contact"
	"github.com/folio-dev/folio/internal/transport/auth"
	"github.com/folio-dev/folio/internal/transport/httperr"
)

const msgNotFound = "Submission not found"

// RegisterPublic mounts the contact form endpoints. limit guards the
// submission route only.
func RegisterPublic(rg *gin.RouterGroup, svc *contactsvc.Service, limit gin.HandlerFunc) {
	rg.POST("/form_submit", limit, submit(svc))
	rg.POST("/form_data", ping(svc))
}

func RegisterAdmin(rg *gin.RouterGroup, svc *contactsvc.Service) {
	rg.GET("", list(svc))
	rg.GET("/:id", get(svc))
	rg.DELETE("/:id", remove(svc))
}

type submitReq struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   *string `json:"phone"`
	Message string  `json:"message"`
}

func submit(svc *contactsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req submitReq
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.Message(c, http.StatusBadRequest, "Request must be JSON")
			return
		}
		sub, err := svc.Submit(c.Request.Context(), contactsvc.Input{
			Name:    req.Name,
			Email:   req.Email,
			Phone:   req.Phone,
			Message: req.Message,
		})
		if err != nil {
			httperr.Respond(c, err, "")
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message":    "Form submitted successfully!",
			"submission": sub,
		})
	}
}

func ping(svc *contactsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var fields map[string]any
		if err := c.ShouldBindJSON(&fields); err != nil {
			httperr.Message(c, http.StatusBadRequest, "Request must be JSON")
			return
		}
		svc.Ping(c.Request.Context(), fields)
		c.JSON(http.StatusOK, gin.H{"message": "Data received"})
	}
}

func list(svc *contactsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.Query("page"))
		perPage, _ := strconv.Atoi(c.Query("per_page"))

		p, err := svc.List(c.Request.Context(), page, perPage)
		if err != nil {
			httperr.Respond(c, err, "")
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httperr.Message(c, http.StatusBadRequest, "Invalid submission id.")
		return 0, false
	}
	return id, true
}

func get(svc *contactsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		sub, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			httperr.Respond(c, err, msgNotFound)
			return
		}
		c.JSON(http.StatusOK, sub)
	}
}

func remove(svc *contactsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), auth.Actor(c), id); err != nil {
			httperr.Respond(c, err, msgNotFound)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Submission deleted successfully"})
	}
}
