package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/file-prompts/internal/core/domain"
)

// syncPrompts must be called with s.mu held.
func (s *Server) syncPrompts() {
	current := s.ports.Catalog.Prompts()

	seen := make(map[string]bool, len(current))
	for i := range current {
		seen[current[i].Name] = true
	}

	var stale []string
	for name := range s.prompts {
		if !seen[name] {
			stale = append(stale, name)
		}
	}
	if len(stale) > 0 {
		s.server.RemovePrompts(stale...)
	}

	for i := range current {
		s.server.AddPrompt(newPrompt(&current[i].Document), s.handlePrompt)
	}
	s.prompts = seen
}

// newPrompt describes doc with its argument schema.
func newPrompt(doc *domain.Document) *mcp.Prompt {
	p := &mcp.Prompt{
		Name:        doc.Name,
		Description: doc.Description,
	}
	for _, arg := range doc.Arguments {
		p.Arguments = append(p.Arguments, &mcp.PromptArgument{
			Name:        arg.Name,
			Description: arg.Description,
			Required:    arg.Required,
		})
	}
	return p
}

// handlePrompt renders the requested prompt from the current catalog, so a
// reload is visible to the next request even before registrations resync.
func (s *Server) handlePrompt(
	_ context.Context,
	req *mcp.GetPromptRequest,
) (*mcp.GetPromptResult, error) {
	name := req.Params.Name

	doc, err := s.ports.Catalog.Prompt(name)
	if err != nil {
		return nil, err
	}

	text, err := doc.Render(req.Params.Arguments)
	if err != nil {
		return nil, fmt.Errorf("prompt %q: %w", name, err)
	}

	return &mcp.GetPromptResult{
		Description: doc.Description,
		Messages: []*mcp.PromptMessage{{
			Role:    "user",
			Content: &mcp.TextContent{Text: text},
		}},
	}, nil
}
