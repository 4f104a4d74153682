package mcp

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	projectsvc "github.com/folio-dev/folio/internal/service/project"
)

// RegisterPrompts registers the catalog prompts.
func RegisterPrompts(s *mcpserver.MCPServer, projectSvc *projectsvc.Service) {
	s.AddPrompt(
		mcpmcp.NewPrompt("describe_project",
			mcpmcp.WithPromptDescription("Draft a short portfolio blurb for one project."),
			mcpmcp.WithArgument("project_id",
				mcpmcp.ArgumentDescription("Numeric project id."),
				mcpmcp.RequiredArgument(),
			),
		),
		describeProjectHandler(projectSvc),
	)
}

func describeProjectHandler(projectSvc *projectsvc.Service) mcpserver.PromptHandlerFunc {
	return func(ctx context.Context, req mcpmcp.GetPromptRequest) (*mcpmcp.GetPromptResult, error) {
		id, err := strconv.ParseInt(req.Params.Arguments["project_id"], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid project_id: %w", err)
		}
		p, err := projectSvc.Get(ctx, id)
		if err != nil {
			return nil, err
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Write a two-sentence portfolio blurb for the project %q.\n", p.Name)
		if p.Description != nil {
			fmt.Fprintf(&b, "Existing description: %s\n", *p.Description)
		}
		if p.ProjectURL != nil {
			fmt.Fprintf(&b, "Project link: %s\n", *p.ProjectURL)
		}

		return mcpmcp.NewGetPromptResult(
			"Portfolio blurb for "+p.Name,
			[]mcpmcp.PromptMessage{
				mcpmcp.NewPromptMessage(
					mcpmcp.RoleUser,
					mcpmcp.TextContent{
						Type: "text",
						Text: b.String(),
					},
				),
			},
		), nil
	}
}
