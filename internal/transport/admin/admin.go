package admin

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	adminsvc "github.com/folio-dev/folio/internal/service/admin"
	"github.com/folio-dev/folio/internal/transport/auth"
	"github.com/folio-dev/folio/internal/transport/httperr"
)

// RegisterPublic mounts login, the only admin route reachable without a token.
func RegisterPublic(rg *gin.RouterGroup, svc *adminsvc.Service) {
	rg.POST("/login", login(svc))
}

func RegisterAdmin(rg *gin.RouterGroup, svc *adminsvc.Service) {
	rg.POST("/register", register(svc))
	rg.GET("/me", me())
}

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func bindCredentials(c *gin.Context) (credentialsReq, bool) {
	var req credentialsReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		httperr.Message(c, http.StatusBadRequest, "Username and password required")
		return req, false
	}
	return req, true
}

func login(svc *adminsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bindCredentials(c)
		if !ok {
			return
		}
		tok, user, err := svc.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			httperr.Respond(c, err, "")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"access_token": tok.AccessToken,
			"token_type":   "Bearer",
			"expires_in":   int64(time.Until(tok.ExpiresAt).Round(time.Second) / time.Second),
			"user":         gin.H{"id": user.ID, "username": user.Username},
		})
	}
}

func register(svc *adminsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bindCredentials(c)
		if !ok {
			return
		}
		user, err := svc.Register(c.Request.Context(), auth.Actor(c), req.Username, req.Password)
		if err != nil {
			httperr.Respond(c, err, "")
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "Admin user created successfully. Please login.",
			"user":    user,
		})
	}
}

func me() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := auth.Identity(c)
		c.JSON(http.StatusOK, gin.H{"id": id.UserID, "username": id.Username})
	}
}
