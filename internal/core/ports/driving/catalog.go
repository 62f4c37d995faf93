package driving

import (
	"context"

	"github.com/custodia-labs/file-prompts/internal/core/domain"
)

// CatalogService exposes the currently loaded prompts and resources.
type CatalogService interface {
	// Reload rescans both directories and atomically replaces the catalog.
	// A prompt load failure leaves the previous catalog in place.
	Reload(ctx context.Context) (revision string, err error)

	// Revision identifies the current snapshot. Empty before the first load.
	Revision() string

	// Prompts returns all prompts sorted by name.
	Prompts() []domain.LoadedDocument

	// Resources returns all resources sorted by name.
	Resources() []domain.LoadedDocument

	// Prompt returns the named prompt or domain.ErrNotFound.
	Prompt(name string) (domain.LoadedDocument, error)

	// Resource returns the named resource or domain.ErrNotFound.
	Resource(name string) (domain.LoadedDocument, error)

	// RenderPrompt substitutes args into the named prompt.
	RenderPrompt(name string, args map[string]string) (string, error)

	// OnReload registers fn to run after every successful reload.
	OnReload(fn func(revision string))
}
