package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/file-prompts/internal/adapters/driven/config/file"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write a config file with every setting at its default value to the
path given by --config. Existing files are kept unless --force is set.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	force, _ := cmd.Flags().GetBool("force")

	if _, err := os.Stat(cfgFile); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgFile)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := file.Save(cfgFile, file.Default()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", cfgFile)
	return nil
}
