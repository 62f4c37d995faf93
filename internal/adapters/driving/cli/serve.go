package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/custodia-labs/file-prompts/internal/adapters/driven/config/file"
	"github.com/custodia-labs/file-prompts/internal/adapters/driving/mcp"
	"github.com/custodia-labs/file-prompts/internal/connectors/filesystem"
	"github.com/custodia-labs/file-prompts/internal/core/services"
	"github.com/custodia-labs/file-prompts/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --http to serve the streamable HTTP transport instead, and --watch to
reload documents automatically when files change.

Examples:
  # Stdio mode (default)
  file-prompts serve --prompts-dir ./prompts

  # HTTP mode with hot reload
  file-prompts serve --http :8080 --watch

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "prompts": {
        "command": "/path/to/file-prompts",
        "args": ["serve", "--config", "/path/to/file-prompts.toml"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("http", "", "HTTP listen address (empty = use stdio)")
	serveCmd.Flags().Bool("watch", false, "reload documents when files change")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("http") {
		cfg.Server.HTTPAddr, _ = cmd.Flags().GetString("http")
	}
	if cmd.Flags().Changed("watch") {
		cfg.Watch.Enabled, _ = cmd.Flags().GetBool("watch")
	}

	ctx := cmd.Context()
	log := logger.L()

	catalog := newCatalog(cfg, log)
	if _, err := catalog.Reload(ctx); err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{Catalog: catalog},
		mcp.WithName(cfg.Server.Name),
		mcp.WithLogger(log),
	)
	if err != nil {
		return err
	}

	if cfg.Watch.Enabled {
		watcher := newWatcher(cfg, catalog, log)
		if err := watcher.Start(ctx); err != nil {
			return fmt.Errorf("starting watcher: %w", err)
		}
		defer watcher.Stop()
	}

	if cfg.Server.HTTPAddr != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://%s\n", cfg.Server.HTTPAddr)
		return server.RunHTTP(ctx, cfg.Server.HTTPAddr)
	}

	return server.Run(ctx)
}

// newWatcher watches the configured directories that exist and reloads the
// catalog on change. A failed reload keeps the previous catalog.
func newWatcher(cfg *file.Config, catalog *services.CatalogService, log *zap.Logger) *filesystem.Watcher {
	var dirs []string
	for _, dir := range []string{cfg.Prompts.Directory, cfg.Resources.Directory} {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs = append(dirs, dir)
		}
	}

	extensions := append(append([]string(nil), cfg.Prompts.Extensions...), cfg.Resources.Extensions...)

	return filesystem.NewWatcher(dirs, extensions, func(ctx context.Context) {
		if _, err := catalog.Reload(ctx); err != nil {
			log.Warn("reload failed, keeping previous documents", zap.Error(err))
		}
	},
		filesystem.WithWatchLogger(log),
		filesystem.WithDebounce(cfg.Watch.Debounce.Duration),
		filesystem.WithMinReloadInterval(cfg.Watch.MinReloadInterval.Duration),
	)
}
