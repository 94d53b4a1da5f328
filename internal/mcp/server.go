// ABOUTME: MCP server setup for the workout sync engine.
// ABOUTME: Wraps the MCP server with the workout operations facade.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/lift/internal/workout"
)

// Server wraps the MCP server with facade access.
type Server struct {
	mcpServer *mcp.Server
	svc       *workout.Service
}

// NewServer creates a new MCP server over the given facade.
func NewServer(svc *workout.Service) (*Server, error) {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "lift",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		svc:       svc,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
