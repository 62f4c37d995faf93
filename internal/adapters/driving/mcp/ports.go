package mcp

import (
	"github.com/custodia-labs/file-prompts/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Catalog provides the loaded prompts and resources.
	Catalog driving.CatalogService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p == nil || p.Catalog == nil {
		return ErrMissingCatalogService
	}
	return nil
}
