package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/custodia-labs/file-prompts/internal/core/domain"
	"github.com/custodia-labs/file-prompts/internal/core/ports/driven"
	"github.com/custodia-labs/file-prompts/internal/core/ports/driving"
)

// Ensure CatalogService implements the interface.
var _ driving.CatalogService = (*CatalogService)(nil)

// CatalogConfig locates the document directories.
type CatalogConfig struct {
	PromptsDir     string
	PromptPolicy   domain.LoadPolicy
	ResourcesDir   string // empty disables resources
	ResourcePolicy domain.LoadPolicy
}

// DefaultCatalogConfig returns the standard policies for the given directories.
func DefaultCatalogConfig(promptsDir, resourcesDir string) CatalogConfig {
	return CatalogConfig{
		PromptsDir:     promptsDir,
		PromptPolicy:   domain.PromptPolicy(),
		ResourcesDir:   resourcesDir,
		ResourcePolicy: domain.ResourcePolicy(),
	}
}

// snapshot is an immutable view of one load.
type snapshot struct {
	revision  string
	loadedAt  time.Time
	prompts   domain.Collection
	resources domain.Collection
}

// CatalogService holds the loaded prompts and resources.
type CatalogService struct {
	loader driven.DocumentLoader
	cfg    CatalogConfig
	logger *zap.Logger

	loadMu sync.Mutex // serialises Reload

	mu        sync.RWMutex
	current   *snapshot
	listeners []func(revision string)
}

// NewCatalogService creates a catalog backed by loader. Nothing is loaded
// until Reload is called.
func NewCatalogService(loader driven.DocumentLoader, cfg CatalogConfig, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		loader: loader,
		cfg:    cfg,
		logger: logger,
		current: &snapshot{
			prompts:   domain.Collection{},
			resources: domain.Collection{},
		},
	}
}

// Reload rescans both directories.
func (s *CatalogService) Reload(ctx context.Context) (string, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	start := time.Now()
	prompts, err := s.loader.Load(s.cfg.PromptsDir, s.cfg.PromptPolicy)
	if err != nil {
		return "", fmt.Errorf("load prompts: %w", err)
	}

	resources := domain.Collection{}
	if s.cfg.ResourcesDir != "" {
		loaded, err := s.loader.Load(s.cfg.ResourcesDir, s.cfg.ResourcePolicy)
		if err != nil {
			s.logger.Warn("resources unavailable, continuing without them", zap.Error(err))
		} else {
			resources = loaded
		}
	}

	next := &snapshot{
		revision:  uuid.NewString(),
		loadedAt:  time.Now(),
		prompts:   prompts,
		resources: resources,
	}

	s.mu.Lock()
	s.current = next
	listeners := append([]func(string){}, s.listeners...)
	s.mu.Unlock()

	s.logger.Info("catalog loaded",
		zap.String("revision", next.revision),
		zap.Int("prompts", len(prompts)),
		zap.Int("resources", len(resources)),
		zap.Duration("took", time.Since(start)),
	)

	for _, fn := range listeners {
		fn(next.revision)
	}
	return next.revision, nil
}

// OnReload registers fn to run after every successful reload.
func (s *CatalogService) OnReload(fn func(revision string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Revision returns the current snapshot identifier.
func (s *CatalogService) Revision() string {
	return s.snapshot().revision
}

// LoadedAt returns when the current snapshot was built.
func (s *CatalogService) LoadedAt() time.Time {
	return s.snapshot().loadedAt
}

// Prompts returns all prompts sorted by name.
func (s *CatalogService) Prompts() []domain.LoadedDocument {
	return s.snapshot().prompts.Sorted()
}

// Resources returns all resources sorted by name.
func (s *CatalogService) Resources() []domain.LoadedDocument {
	return s.snapshot().resources.Sorted()
}

// Prompt returns the named prompt.
func (s *CatalogService) Prompt(name string) (domain.LoadedDocument, error) {
	doc, ok := s.snapshot().prompts[name]
	if !ok {
		return domain.LoadedDocument{}, fmt.Errorf("prompt %q: %w", name, domain.ErrNotFound)
	}
	return doc, nil
}

// Resource returns the named resource.
func (s *CatalogService) Resource(name string) (domain.LoadedDocument, error) {
	doc, ok := s.snapshot().resources[name]
	if !ok {
		return domain.LoadedDocument{}, fmt.Errorf("resource %q: %w", name, domain.ErrNotFound)
	}
	return doc, nil
}

// RenderPrompt substitutes args into the named prompt's body.
func (s *CatalogService) RenderPrompt(name string, args map[string]string) (string, error) {
	doc, err := s.Prompt(name)
	if err != nil {
		return "", err
	}
	return doc.Render(args)
}

func (s *CatalogService) snapshot() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}
