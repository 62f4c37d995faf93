package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// PingInput is the input schema for the ping tool.
type PingInput struct{}

// PingOutput is the output schema for the ping tool.
type PingOutput struct {
	Message  string `json:"message"`
	Revision string `json:"revision,omitempty"`
}

// ReloadInput is the input schema for the reload tool.
type ReloadInput struct{}

// ReloadOutput is the output schema for the reload tool.
type ReloadOutput struct {
	Revision  string `json:"revision"`
	Prompts   int    `json:"prompts"`
	Resources int    `json:"resources"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ping",
		Description: "Check that the server is responsive",
	}, s.handlePing)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reload",
		Description: "Reload prompts and resources from disk",
	}, s.handleReload)
}

// handlePing handles the ping tool invocation.
func (s *Server) handlePing(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ PingInput,
) (*mcp.CallToolResult, PingOutput, error) {
	return nil, PingOutput{
		Message:  "pong",
		Revision: s.ports.Catalog.Revision(),
	}, nil
}

// handleReload handles the reload tool invocation. Registrations are
// refreshed by the catalog's reload listener.
func (s *Server) handleReload(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ReloadInput,
) (*mcp.CallToolResult, ReloadOutput, error) {
	revision, err := s.ports.Catalog.Reload(ctx)
	if err != nil {
		return nil, ReloadOutput{}, err
	}

	return nil, ReloadOutput{
		Revision:  revision,
		Prompts:   len(s.ports.Catalog.Prompts()),
		Resources: len(s.ports.Catalog.Resources()),
	}, nil
}
