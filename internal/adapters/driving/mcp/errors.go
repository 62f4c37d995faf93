// Package mcp provides an MCP (Model Context Protocol) server adapter for
// file-prompts. It publishes the loaded prompts and resources to AI assistants
// and keeps the registrations in step with catalog reloads.
package mcp

import "errors"

// ErrMissingCatalogService is returned when the catalog service is not provided.
var ErrMissingCatalogService = errors.New("mcp: catalog service is required")
