package mcp

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/file-prompts/internal/core/domain"
	"github.com/custodia-labs/file-prompts/internal/core/ports/driving"
)

// Ensure the mock satisfies the port.
var _ driving.CatalogService = (*mockCatalogService)(nil)

// mockCatalogService is a mock implementation of driving.CatalogService.
type mockCatalogService struct {
	mu        sync.Mutex
	prompts   domain.Collection
	resources domain.Collection
	revision  string
	reloadErr error
	reloads   int
	next      func(m *mockCatalogService)
	listeners []func(string)
}

func newMockCatalog() *mockCatalogService {
	return &mockCatalogService{
		prompts:   domain.Collection{},
		resources: domain.Collection{},
		revision:  "rev-1",
	}
}

func (m *mockCatalogService) Reload(_ context.Context) (string, error) {
	m.mu.Lock()
	if m.reloadErr != nil {
		m.mu.Unlock()
		return "", m.reloadErr
	}
	m.reloads++
	m.revision = fmt.Sprintf("rev-%d", m.reloads+1)
	if m.next != nil {
		m.next(m)
	}
	rev := m.revision
	listeners := append([]func(string){}, m.listeners...)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(rev)
	}
	return rev, nil
}

func (m *mockCatalogService) Revision() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revision
}

func (m *mockCatalogService) Prompts() []domain.LoadedDocument {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prompts.Sorted()
}

func (m *mockCatalogService) Resources() []domain.LoadedDocument {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resources.Sorted()
}

func (m *mockCatalogService) Prompt(name string) (domain.LoadedDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.prompts[name]
	if !ok {
		return domain.LoadedDocument{}, fmt.Errorf("prompt %q: %w", name, domain.ErrNotFound)
	}
	return doc, nil
}

func (m *mockCatalogService) Resource(name string) (domain.LoadedDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.resources[name]
	if !ok {
		return domain.LoadedDocument{}, fmt.Errorf("resource %q: %w", name, domain.ErrNotFound)
	}
	return doc, nil
}

func (m *mockCatalogService) RenderPrompt(name string, args map[string]string) (string, error) {
	doc, err := m.Prompt(name)
	if err != nil {
		return "", err
	}
	return doc.Render(args)
}

func (m *mockCatalogService) OnReload(fn func(string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func testDoc(name, description, content string, args ...domain.Argument) domain.LoadedDocument {
	return domain.LoadedDocument{
		Document: domain.Document{
			Name:        name,
			Description: description,
			Content:     content,
			Arguments:   args,
		},
		SourcePath: "/srv/docs/" + name + ".md",
	}
}
