// ABOUTME: MCP resource implementations for the workout sync engine.
// ABOUTME: Provides lift://session/active and lift://sync/status resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerResources() {
	// lift://session/active - The in-progress workout session, if any
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "lift://session/active",
		Name:        "Active Workout Session",
		Description: "The in-progress workout session and its exercise logs",
		MIMEType:    "application/json",
	}, s.handleActiveSessionResource)

	// lift://sync/status - Connectivity and queue health
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "lift://sync/status",
		Name:        "Sync Status",
		Description: "Connectivity, pending queue size, and last sync time",
		MIMEType:    "application/json",
	}, s.handleSyncStatusResource)
}

func (s *Server) handleActiveSessionResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	snap := s.svc.Status()

	result := map[string]interface{}{
		"session": snap.Session,
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      "lift://session/active",
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) handleSyncStatusResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(s.statusOutput(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      "lift://sync/status",
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
