package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/file-prompts/internal/core/domain"
)

const (
	// uriScheme prefixes every published resource name.
	uriScheme = "resource://"

	// resourceMIMEType is reported for all resources.
	resourceMIMEType = "text/markdown"
)

// ResourceURI returns the URI under which the named resource is published.
func ResourceURI(name string) string {
	return uriScheme + name
}

// syncResources must be called with s.mu held.
func (s *Server) syncResources() {
	current := s.ports.Catalog.Resources()

	seen := make(map[string]bool, len(current))
	for i := range current {
		seen[ResourceURI(current[i].Name)] = true
	}

	var stale []string
	for uri := range s.resources {
		if !seen[uri] {
			stale = append(stale, uri)
		}
	}
	if len(stale) > 0 {
		s.server.RemoveResources(stale...)
	}

	for i := range current {
		s.server.AddResource(&mcp.Resource{
			URI:         ResourceURI(current[i].Name),
			Name:        current[i].Name,
			Description: current[i].Description,
			MIMEType:    resourceMIMEType,
		}, s.handleResource)
	}
	s.resources = seen
}

// handleResource returns the body of a resource.
func (s *Server) handleResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractResourceName(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.ports.Catalog.Resource(name)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: resourceMIMEType,
			Text:     doc.Content,
		}},
	}, nil
}

// extractResourceName extracts the name from a URI like resource://{name}.
func extractResourceName(uri string) string {
	if !strings.HasPrefix(uri, uriScheme) {
		return ""
	}
	return strings.TrimPrefix(uri, uriScheme)
}
