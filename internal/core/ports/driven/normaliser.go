package driven

import "github.com/custodia-labs/file-prompts/internal/core/domain"

// DocumentParser turns raw file content into a Document.
// The frontmatter normaliser is the standard implementation.
type DocumentParser interface {
	// ParseDocument parses raw content using the slash and argument
	// settings of policy. Failures match domain.ErrFrontmatter or
	// domain.ErrInvalidName.
	ParseDocument(raw string, policy domain.LoadPolicy) (*domain.Document, error)
}
