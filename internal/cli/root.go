package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kip-d/omnifocus-mcp-sub005/internal/osa"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Spawner overrides the interpreter spawner. Nil means the real
	// osascript binary; tests inject scripted fakes.
	Spawner osa.Spawner
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the omnique CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "omnique",
		Short: "omnique - query and mutate OmniFocus tasks from the command line",
		Long: `omnique compiles typed filter documents into OmniFocus automation
scripts and runs them through the osascript interpreter.

Filter documents are written in CUE or YAML and describe which tasks to
match; commands either print the generated script (compile), check the
document (validate), or execute it (query, count, complete, flag,
unflag, drop).`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			configureLogging(opts.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewCountCommand(opts))
	for _, mc := range NewMutationCommands(opts) {
		cmd.AddCommand(mc)
	}

	return cmd
}

// configureLogging installs the process-wide slog handler. Logs go to
// stderr so JSON output on stdout stays parseable.
func configureLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
