// Package mcp exposes pocketvibe site generation as MCP tools over stdio.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/pocketvibe/pocketvibe/internal/sites"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Enqueuer hands site generation jobs to the task queue.
type Enqueuer interface {
	EnqueueSiteGenerate(ctx context.Context, siteID, prompt string) error
}

// Server wraps an MCP server that exposes site generation tools.
type Server struct {
	store   *sites.Store
	enq     Enqueuer
	baseURL string
	mcp     *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(store *sites.Store, enq Enqueuer, baseURL string) *Server {
	s := &Server{
		store:   store,
		enq:     enq,
		baseURL: baseURL,
	}

	s.mcp = server.NewMCPServer(
		"pocketvibe",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(generateSiteTool, s.handleGenerateSite)
	s.mcp.AddTool(siteStatusTool, s.handleSiteStatus)
	s.mcp.AddTool(listSitesTool, s.handleListSites)
	s.mcp.AddTool(getSiteHTMLTool, s.handleGetSiteHTML)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
