package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/folio-dev/folio/internal/domain"
	domainproject "github.com/folio-dev/folio/internal/domain/project"
	projectsvc "github.com/folio-dev/folio/internal/service/project"
)

// RegisterTools registers the read-only catalog tools. Mutations stay behind
// the authenticated HTTP API.
func RegisterTools(s *mcpserver.MCPServer, projectSvc *projectsvc.Service, baseURL string) {
	s.AddTool(mcpmcp.NewTool("list_projects",
		mcpmcp.WithDescription("List every portfolio project, newest first. Each entry carries name, description, project_url and image_url."),
	), listProjectsHandler(projectSvc, baseURL))

	s.AddTool(mcpmcp.NewTool("get_project",
		mcpmcp.WithDescription("Fetch one portfolio project by its numeric id."),
		mcpmcp.WithNumber("id", mcpmcp.Required(), mcpmcp.Description("Project id")),
	), getProjectHandler(projectSvc, baseURL))
}

type projectView struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	ProjectURL  *string   `json:"project_url"`
	ImageURL    *string   `json:"image_url"`
	DateAdded   time.Time `json:"date_added"`
}

func toView(p domainproject.Project, baseURL string) projectView {
	v := projectView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		ProjectURL:  p.ProjectURL,
		DateAdded:   p.DateAdded,
	}
	if p.HasImage() {
		u := baseURL + "/uploads/" + *p.ImageFilename
		v.ImageURL = &u
	}
	return v
}

func listProjectsHandler(projectSvc *projectsvc.Service, baseURL string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, _ mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		projects, err := projectSvc.List(ctx)
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}
		views := make([]projectView, 0, len(projects))
		for _, p := range projects {
			views = append(views, toView(p, baseURL))
		}
		data, _ := json.Marshal(views)
		return mcpmcp.NewToolResultText(string(data)), nil
	}
}

func getProjectHandler(projectSvc *projectsvc.Service, baseURL string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		id := mcpmcp.ParseInt64(req, "id", 0)
		if id <= 0 {
			return mcpmcp.NewToolResultText("error: invalid id"), nil
		}
		p, err := projectSvc.Get(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return mcpmcp.NewToolResultText("error: project not found"), nil
		}
		if err != nil {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err)), nil
		}
		data, _ := json.Marshal(toView(p, baseURL))
		return mcpmcp.NewToolResultText(string(data)), nil
	}
}
