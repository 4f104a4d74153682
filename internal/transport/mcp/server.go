package mcp

import (
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	projectsvc "github.com/folio-dev/folio/internal/service/project"
)

// Server exposes the project catalog to MCP clients over streamable HTTP.
// Tools are registered in tools.go, prompts in prompts.go.
type Server struct {
	httpSrv *mcpserver.StreamableHTTPServer
}

// New creates the MCP transport server. baseURL is used to build image URLs
// and may be empty.
func New(projectSvc *projectsvc.Service, baseURL string) *Server {
	mcpSrv := mcpserver.NewMCPServer(
		"folio",
		"1.0.0",
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithPromptCapabilities(false),
	)

	RegisterTools(mcpSrv, projectSvc, baseURL)
	RegisterPrompts(mcpSrv, projectSvc)

	return &Server{httpSrv: mcpserver.NewStreamableHTTPServer(mcpSrv)}
}

// Handler returns an http.Handler that serves the MCP endpoint.
func (s *Server) Handler() http.Handler {
	return s.httpSrv
}
