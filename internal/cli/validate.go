package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kip-d/omnifocus-mcp-sub005/internal/filter"
)

// ValidationSummary is the data payload for a successful validation.
type ValidationSummary struct {
	Path    string `json:"path"`
	Filters string `json:"filters"`
	Empty   bool   `json:"empty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <filter-doc>",
		Short: "Check a filter document without executing it",
		Long: `Check that a filter document parses and describes a valid filter.

Nothing reaches the interpreter; this is the same validation the
execution path applies before generating any script.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, docPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	doc, err := loadSpec(formatter, docPath)
	if err != nil {
		return err
	}
	spec, err := doc.Spec()
	if err != nil {
		return emitLoadError(formatter, err)
	}

	if err := filter.Validate(spec); err != nil {
		_ = formatter.Error(ErrCodeInvalidFilter, err.Error(), nil)
		return WrapExitError(ExitCommandError, "validation failed", err)
	}

	summary := ValidationSummary{
		Path:    docPath,
		Filters: spec.Describe(),
		Empty:   spec.IsEmpty(),
	}
	if formatter.Format == "json" {
		return formatter.Success(summary)
	}

	fmt.Fprintf(formatter.Writer, "✓ %s is valid\n", docPath)
	fmt.Fprintf(formatter.Writer, "  filters: %s\n", summary.Filters)
	return nil
}
