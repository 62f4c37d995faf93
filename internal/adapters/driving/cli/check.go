package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/file-prompts/internal/connectors/filesystem"
	"github.com/custodia-labs/file-prompts/internal/core/domain"
	"github.com/custodia-labs/file-prompts/internal/logger"
)

// errCheckFailed is returned when --strict is set and files were skipped.
var errCheckFailed = errors.New("check failed: some files were skipped")

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate prompt and resource files",
	Long: `Load the prompts and resources directories and report every document
that was loaded and every file that was skipped, with the reason.

Exits with an error when the prompts directory cannot be loaded. With
--strict, any skipped file is also an error.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().Bool("strict", false, "fail when any file is skipped")
	rootCmd.AddCommand(checkCmd)
}

// skippedFile records one rejected file.
type skippedFile struct {
	file   string
	reason string
}

// checkReport is the outcome of loading one directory.
type checkReport struct {
	kind      domain.DocumentKind
	directory string
	docs      []domain.LoadedDocument
	skipped   []skippedFile
	err       error
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	strict, _ := cmd.Flags().GetBool("strict")

	reports := []*checkReport{
		checkDirectory(cfg.Prompts.Directory, cfg.PromptPolicy()),
		checkDirectory(cfg.Resources.Directory, cfg.ResourcePolicy()),
	}

	out := cmd.OutOrStdout()
	styles := newCheckStyles(isTerminal(out))
	for _, r := range reports {
		r.print(out, styles)
	}

	if err := reports[0].err; err != nil {
		return fmt.Errorf("prompts: %w", err)
	}
	if strict {
		for _, r := range reports {
			if len(r.skipped) > 0 || r.err != nil {
				return errCheckFailed
			}
		}
	}
	return nil
}

// checkDirectory loads dir with policy, collecting skipped files.
func checkDirectory(dir string, policy domain.LoadPolicy) *checkReport {
	report := &checkReport{kind: policy.Kind, directory: dir}

	loader := newLoader(logger.L(), filesystem.WithSkipHandler(func(rel string, err error) {
		report.skipped = append(report.skipped, skippedFile{file: rel, reason: err.Error()})
	}))

	docs, err := loader.Load(dir, policy)
	if err != nil {
		report.err = err
		return report
	}
	report.docs = docs.Sorted()
	return report
}

// checkStyles renders report lines.
type checkStyles struct {
	heading lipgloss.Style
	ok      lipgloss.Style
	bad     lipgloss.Style
	muted   lipgloss.Style
}

func newCheckStyles(colour bool) checkStyles {
	if !colour {
		return checkStyles{
			heading: lipgloss.NewStyle(),
			ok:      lipgloss.NewStyle(),
			bad:     lipgloss.NewStyle(),
			muted:   lipgloss.NewStyle(),
		}
	}
	return checkStyles{
		heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		ok:      lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		bad:     lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
	}
}

func (r *checkReport) print(w io.Writer, s checkStyles) {
	heading := fmt.Sprintf("%ss (%s)", r.kind.Title(), r.directory)
	if r.err != nil {
		fmt.Fprintf(w, "%s\n  %s %s\n\n", s.heading.Render(heading), s.bad.Render("error:"), r.err)
		return
	}

	fmt.Fprintf(w, "%s %s\n", s.heading.Render(heading),
		s.muted.Render(fmt.Sprintf("%d loaded, %d skipped", len(r.docs), len(r.skipped))))

	for i := range r.docs {
		d := &r.docs[i]
		line := fmt.Sprintf("  %s %s", s.ok.Render("ok"), d.Name)
		if args := formatArguments(d.Arguments); args != "" {
			line += " " + s.muted.Render(args)
		}
		fmt.Fprintf(w, "%s  %s\n", line, s.muted.Render(d.Description))
	}
	for _, sk := range r.skipped {
		fmt.Fprintf(w, "  %s %s: %s\n", s.bad.Render("skip"), sk.file, sk.reason)
	}
	fmt.Fprintln(w)
}

// formatArguments renders an argument list such as "[file*, focus]", where
// "*" marks required arguments.
func formatArguments(args []domain.Argument) string {
	if len(args) == 0 {
		return ""
	}
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = a.Name
		if a.Required {
			names[i] += "*"
		}
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
