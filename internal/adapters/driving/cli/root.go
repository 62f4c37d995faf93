// Package cli implements the file-prompts command line interface.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/custodia-labs/file-prompts/internal/adapters/driven/config/file"
	"github.com/custodia-labs/file-prompts/internal/connectors/filesystem"
	"github.com/custodia-labs/file-prompts/internal/core/services"
	"github.com/custodia-labs/file-prompts/internal/logger"
	"github.com/custodia-labs/file-prompts/internal/normalisers/frontmatter"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	cfgFile      string
	promptsDir   string
	resourcesDir string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "file-prompts",
	Short: "Serve prompts and resources from Markdown files over MCP",
	Long: `file-prompts loads Markdown documents with a YAML frontmatter header from
a prompts directory and a resources directory, and publishes them to AI
assistants through the Model Context Protocol.

A document looks like:

  ---
  name: greet
  description: Say hello
  arguments:
    - name: subject
      required: true
  ---
  Hello {subject}!`,
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", file.DefaultFileName, "config file path")
	flags.StringVar(&promptsDir, "prompts-dir", "", "prompts directory (overrides config)")
	flags.StringVar(&resourcesDir, "resources-dir", "", "resources directory (overrides config)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command until it completes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig reads the config file and applies command line overrides.
func loadConfig(cmd *cobra.Command) (*file.Config, error) {
	cfg, err := file.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("prompts-dir") {
		cfg.Prompts.Directory = promptsDir
	}
	if flags.Changed("resources-dir") {
		cfg.Resources.Directory = resourcesDir
	}

	logger.SetVerbose(verbose || cfg.Log.Verbose)
	logger.SetOutput(cmd.ErrOrStderr())
	return cfg, nil
}

// newLoader builds the filesystem loader used by every command.
func newLoader(log *zap.Logger, opts ...filesystem.Option) *filesystem.Loader {
	opts = append([]filesystem.Option{filesystem.WithLogger(log)}, opts...)
	return filesystem.NewLoader(frontmatter.New(), opts...)
}

// newCatalog builds a catalog service for cfg.
func newCatalog(cfg *file.Config, log *zap.Logger) *services.CatalogService {
	catalogCfg := services.CatalogConfig{
		PromptsDir:     cfg.Prompts.Directory,
		PromptPolicy:   cfg.PromptPolicy(),
		ResourcesDir:   cfg.Resources.Directory,
		ResourcePolicy: cfg.ResourcePolicy(),
	}
	return services.NewCatalogService(newLoader(log), catalogCfg, log)
}
