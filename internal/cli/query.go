package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/kip-d/omnifocus-mcp-sub005/internal/query"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Timeout time.Duration
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <filter-doc>",
		Short: "Run a task query and print the matching tasks",
		Long: `Run a task query described by a filter document.

The document is compiled into an automation script, executed through
the osascript interpreter, and the projected matches are printed as a
JSON array.

Example:
  omnique query overdue.cue
  omnique query --format json --timeout 30s flagged.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "interpreter deadline (default 60s)")

	return cmd
}

func runQuery(opts *QueryOptions, docPath string, cmd *cobra.Command) error {
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

	qopts := doc.Options()
	qopts.Timeout = opts.Timeout
	formatter.VerboseLog("filters: %s", spec.Describe())

	ctx, stop := commandContext(cmd)
	defer stop()

	env := newExecEnv(opts.RootOptions)
	return emitResult(formatter, env.service.Tasks(ctx, spec, qopts))
}

// NewCountCommand creates the count command.
func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "count <filter-doc>",
		Short: "Count matching tasks without fetching them",
		Long: `Count the tasks a filter document matches.

Only the count crosses the interpreter boundary, so this stays cheap
even for filters matching thousands of tasks. Prints {"count": n}.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(opts, args[0], cmd)
		},
	}

	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "interpreter deadline (default 60s)")

	return cmd
}

func runCount(opts *QueryOptions, docPath string, cmd *cobra.Command) error {
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

	formatter.VerboseLog("filters: %s", spec.Describe())

	ctx, stop := commandContext(cmd)
	defer stop()

	env := newExecEnv(opts.RootOptions)
	return emitResult(formatter, env.service.Count(ctx, spec, query.Options{Timeout: opts.Timeout}))
}
