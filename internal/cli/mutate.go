package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kip-d/omnifocus-mcp-sub005/internal/query"
	"github.com/kip-d/omnifocus-mcp-sub005/internal/script"
)

// MutateOptions holds flags for the mutation commands.
type MutateOptions struct {
	*RootOptions
	Timeout time.Duration
}

// mutationCommands maps command names to the action they apply and a
// short description. One cobra command per action keeps the invocation
// explicit: "omnique complete inbox.cue" reads as what it does.
var mutationCommands = []struct {
	use    string
	action script.MutationAction
	short  string
}{
	{"complete", script.ActionComplete, "Mark matching tasks complete"},
	{"flag", script.ActionFlag, "Flag matching tasks"},
	{"unflag", script.ActionUnflag, "Unflag matching tasks"},
	{"drop", script.ActionDrop, "Drop matching tasks"},
}

// NewMutationCommands creates one command per mutation action.
func NewMutationCommands(rootOpts *RootOptions) []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(mutationCommands))
	for _, mc := range mutationCommands {
		cmds = append(cmds, newMutationCommand(rootOpts, mc.use, mc.action, mc.short))
	}
	return cmds
}

func newMutationCommand(rootOpts *RootOptions, use string, action script.MutationAction, short string) *cobra.Command {
	opts := &MutateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   fmt.Sprintf("%s <filter-doc>", use),
		Short: short,
		Long: fmt.Sprintf(`%s.

The filter document selects the tasks; the mutation is applied to every
match in one interpreter call and the result reports how many tasks
changed. Mutations are not cached and evict any cached query results.`, short),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(opts, action, args[0], cmd)
		},
	}

	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "interpreter deadline (default 60s)")

	return cmd
}

func runMutation(opts *MutateOptions, action script.MutationAction, docPath string, cmd *cobra.Command) error {
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

	// An empty filter would mutate every task in the database. Require
	// an explicit filter for mutations.
	if spec.IsEmpty() {
		_ = formatter.Error(ErrCodeBadDocument, "refusing to mutate with an empty filter", nil)
		return NewExitError(ExitCommandError, "refusing to mutate with an empty filter")
	}

	formatter.VerboseLog("action: %s, filters: %s", action, spec.Describe())

	ctx, stop := commandContext(cmd)
	defer stop()

	env := newExecEnv(opts.RootOptions)
	return emitResult(formatter, env.service.Mutate(ctx, spec, action, query.Options{Timeout: opts.Timeout}))
}
