package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// Version is the MCP server version.
const Version = "0.1.0"

// DefaultName is the implementation name reported to clients.
const DefaultName = "file-prompts"

// Server is the MCP server for file-prompts.
type Server struct {
	ports  *Ports
	server *mcp.Server
	logger *zap.Logger

	mu        sync.Mutex
	prompts   map[string]bool // registered prompt names
	resources map[string]bool // registered resource URIs
}

// Option configures a Server.
type Option func(*options)

type options struct {
	name   string
	logger *zap.Logger
}

// WithName sets the implementation name reported to clients.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithLogger sets the server logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// NewServer creates a new MCP server with the given ports.
// The current catalog contents are registered immediately and re-registered
// after every catalog reload.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	o := options{name: DefaultName, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	impl := &mcp.Implementation{
		Name:    o.name,
		Version: Version,
	}

	s := &Server{
		ports:     ports,
		server:    mcp.NewServer(impl, nil),
		logger:    o.logger,
		prompts:   map[string]bool{},
		resources: map[string]bool{},
	}

	s.registerTools()
	s.Sync()
	ports.Catalog.OnReload(func(string) { s.Sync() })

	return s, nil
}

// Sync brings the registered prompts and resources in line with the catalog.
// Entries that disappeared are removed; all others are (re)added.
func (s *Server) Sync() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.syncPrompts()
	s.syncResources()

	s.logger.Debug("mcp registrations synced",
		zap.String("revision", s.ports.Catalog.Revision()),
		zap.Int("prompts", len(s.prompts)),
		zap.Int("resources", len(s.resources)),
	)
}

// Run starts the MCP server over stdio.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts the MCP server over HTTP on the specified address.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	s.logger.Info("mcp http server listening", zap.String("addr", addr))
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
