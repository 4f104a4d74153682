package project

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	domainproject "github.com/folio-dev/folio/internal/domain/project"
	projectsvc "github.com/folio-dev/folio/internal/service/project"
	"github.com/folio-dev/folio/internal/transport/auth"
	"github.com/folio-dev/folio/internal/transport/httperr"
)

const msgNotFound = "Project not found"

// RegisterPublic mounts the read-only catalog.
func RegisterPublic(rg *gin.RouterGroup, svc *projectsvc.Service, baseURL string) {
	rg.GET("", listProjects(svc, baseURL))
	rg.GET("/:id", getProject(svc, baseURL))
}

// RegisterAdmin mounts the catalog with mutations. rg must already require
// an admin token.
func RegisterAdmin(rg *gin.RouterGroup, svc *projectsvc.Service, baseURL string) {
	rg.GET("", listProjects(svc, baseURL))
	rg.POST("", createProject(svc, baseURL))
	rg.GET("/:id", getProject(svc, baseURL))
	rg.PUT("/:id", updateProject(svc, baseURL))
	rg.PATCH("/:id", updateProject(svc, baseURL))
	rg.DELETE("/:id", deleteProject(svc))
}

type projectResp struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Description   *string   `json:"description"`
	ProjectURL    *string   `json:"project_url"`
	ImageFilename *string   `json:"image_filename"`
	ImageURL      *string   `json:"image_url"`
	DateAdded     time.Time `json:"date_added"`
}

func toResp(c *gin.Context, baseURL string, p domainproject.Project) projectResp {
	r := projectResp{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		ProjectURL:    p.ProjectURL,
		ImageFilename: p.ImageFilename,
		DateAdded:     p.DateAdded,
	}
	if p.HasImage() {
		u := ImageURL(c, baseURL, *p.ImageFilename)
		r.ImageURL = &u
	}
	return r
}

// ImageURL builds the public address of a blob. Without a configured base
// URL it is derived from the request; X-Forwarded-Proto counts only when a
// trusted proxy sent it (see transport.TrustedForwarding). Deployments behind
// a proxy should set PUBLIC_BASE_URL.
func ImageURL(c *gin.Context, baseURL, filename string) string {
	if baseURL == "" {
		scheme := "http"
		if c.Request.TLS != nil || c.GetString("forwarded_proto") == "https" {
			scheme = "https"
		}
		baseURL = scheme + "://" + c.Request.Host
	}
	return baseURL + "/uploads/" + filename
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httperr.Message(c, http.StatusBadRequest, "Invalid project id.")
		return 0, false
	}
	return id, true
}

// formValue returns nil when the field is absent so updates can tell
// "unchanged" from "cleared".
func formValue(c *gin.Context, key string) *string {
	v, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	return &v
}

// formUpload opens the optional image part. The caller closes the returned file.
func formUpload(c *gin.Context) (*projectsvc.Upload, multipart.File, error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	if fh.Filename == "" {
		return nil, nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &projectsvc.Upload{Filename: fh.Filename, Body: f}, f, nil
}

func listProjects(svc *projectsvc.Service, baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		projects, err := svc.List(c.Request.Context())
		if err != nil {
			httperr.Respond(c, err, "")
			return
		}
		out := make([]projectResp, 0, len(projects))
		for _, p := range projects {
			out = append(out, toResp(c, baseURL, p))
		}
		c.JSON(http.StatusOK, out)
	}
}

func getProject(svc *projectsvc.Service, baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		p, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			httperr.Respond(c, err, msgNotFound)
			return
		}
		c.JSON(http.StatusOK, toResp(c, baseURL, p))
	}
}

func createProject(svc *projectsvc.Service, baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		upload, f, err := formUpload(c)
		if err != nil {
			httperr.Message(c, http.StatusBadRequest, "Malformed multipart form.")
			return
		}
		if f != nil {
			defer f.Close()
		}

		in := projectsvc.CreateInput{
			Name:        c.PostForm("name"),
			Description: formValue(c, "description"),
			ProjectURL:  formValue(c, "project_url"),
		}
		p, err := svc.Create(c.Request.Context(), auth.Actor(c), in, upload)
		if err != nil {
			httperr.Respond(c, err, msgNotFound)
			return
		}
		c.JSON(http.StatusCreated, toResp(c, baseURL, p))
	}
}

func updateProject(svc *projectsvc.Service, baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		upload, f, err := formUpload(c)
		if err != nil {
			httperr.Message(c, http.StatusBadRequest, "Malformed multipart form.")
			return
		}
		if f != nil {
			defer f.Close()
		}

		patch := domainproject.Patch{
			Name:        formValue(c, "name"),
			Description: formValue(c, "description"),
			ProjectURL:  formValue(c, "project_url"),
		}
		p, err := svc.Update(c.Request.Context(), auth.Actor(c), id, patch, upload)
		if err != nil {
			httperr.Respond(c, err, msgNotFound)
			return
		}
		c.JSON(http.StatusOK, toResp(c, baseURL, p))
	}
}

func deleteProject(svc *projectsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), auth.Actor(c), id); err != nil {
			httperr.Respond(c, err, msgNotFound)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
	}
}
