package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kip-d/omnifocus-mcp-sub005/internal/filter"
	"github.com/kip-d/omnifocus-mcp-sub005/internal/omnijs"
	"github.com/kip-d/omnifocus-mcp-sub005/internal/script"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Op     string // operation to compile for
	Output string // output file path
}

// CompiledScript is the data payload for a successful compile.
type CompiledScript struct {
	Source      string `json:"source"`
	ByteLen     int    `json:"byteLen"`
	Description string `json:"description"`
	Kind        string `json:"kind"`
	EmptyFilter bool   `json:"emptyFilter"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <filter-doc>",
		Short: "Compile a filter document to an automation script",
		Long: `Compile a filter document into the automation script that query,
count, or a mutation would execute, and print it without running it.

Useful for inspecting exactly what would cross the interpreter
boundary.

Example:
  omnique compile overdue.cue
  omnique compile --op count flagged.yaml -o flagged.js`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Op, "op", "query", "operation to compile (query|count|complete|flag|unflag|drop)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, docPath string, cmd *cobra.Command) error {
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

	sc, err := assembleFor(opts.Op, spec, doc)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalidFilter, err.Error(), nil)
		return WrapExitError(ExitCommandError, "compilation failed", err)
	}

	formatter.VerboseLog("compiled %s script: %d bytes, filters: %s", sc.Kind, sc.ByteLen, sc.Description)

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(sc.Source), 0o644); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
			return WrapExitError(ExitCommandError, "writing output file", err)
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(CompiledScript{
			Source:      sc.Source,
			ByteLen:     sc.ByteLen,
			Description: sc.Description,
			Kind:        string(sc.Kind),
			EmptyFilter: sc.EmptyFilter,
		})
	}

	if opts.Output != "" {
		fmt.Fprintf(formatter.Writer, "Wrote %d bytes to %s\n", sc.ByteLen, opts.Output)
		return nil
	}
	fmt.Fprintln(formatter.Writer, sc.Source)
	return nil
}

// assembleFor runs the full compile pipeline for the named operation.
func assembleFor(op string, spec filter.FilterSpec, doc *Document) (script.GeneratedScript, error) {
	node, err := filter.BuildAST(spec)
	if err != nil {
		return script.GeneratedScript{}, err
	}
	pred, err := omnijs.Emit(node)
	if err != nil {
		return script.GeneratedScript{}, err
	}
	_, emptyFilter := node.(filter.TrueNode)

	assembler := script.NewAssembler()
	switch op {
	case "query":
		qopts := doc.Options()
		return assembler.AssembleQuery(script.QueryRequest{
			Predicate:   pred,
			EmptyFilter: emptyFilter,
			Description: spec.Describe(),
			Fields:      qopts.Fields,
			Limit:       qopts.Limit,
			Sort:        qopts.Sort,
		})
	case "count":
		return assembler.AssembleCount(script.CountRequest{
			Predicate:   pred,
			EmptyFilter: emptyFilter,
			Description: spec.Describe(),
		})
	case "complete", "flag", "unflag", "drop":
		return assembler.AssembleMutation(script.MutationRequest{
			Predicate:   pred,
			EmptyFilter: emptyFilter,
			Description: spec.Describe(),
			Action:      script.MutationAction(op),
		})
	default:
		return script.GeneratedScript{}, fmt.Errorf("unknown operation %q", op)
	}
}
