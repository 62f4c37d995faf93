package driven

import "github.com/custodia-labs/file-prompts/internal/core/domain"

// DocumentLoader discovers and parses the documents of one directory.
// The filesystem connector is the standard implementation.
type DocumentLoader interface {
	// Load reads every candidate file in directory under policy.
	//
	// Only domain.ErrDirectoryNotFound, domain.ErrNotADirectory and
	// domain.ErrNoValidDocuments are returned; per-file failures are
	// logged and skipped.
	Load(directory string, policy domain.LoadPolicy) (domain.Collection, error)
}
