package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/file-prompts/internal/core/domain"
	"github.com/custodia-labs/file-prompts/internal/logger"
)

var renderCmd = &cobra.Command{
	Use:   "render <prompt> [key=value...]",
	Short: "Print a prompt with its arguments substituted",
	Long: `Render a prompt the way an MCP client would receive it.

Examples:
  file-prompts render greet subject=world
  file-prompts render review file=main.go focus="error handling"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	values, err := parseAssignments(args[1:])
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	catalog := newCatalog(cfg, logger.L())
	if _, err := catalog.Reload(cmd.Context()); err != nil {
		return err
	}

	text, err := catalog.RenderPrompt(args[0], values)
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return nil
}

// parseAssignments turns key=value pairs into a map. Values may contain '='.
func parseAssignments(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || !domain.ValidArgumentName(key) {
			return nil, fmt.Errorf("%w: expected key=value, got %q", domain.ErrInvalidInput, pair)
		}
		values[key] = value
	}
	return values, nil
}
