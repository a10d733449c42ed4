package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kip-d/omnifocus-mcp-sub005/internal/cache"
	"github.com/kip-d/omnifocus-mcp-sub005/internal/osa"
	"github.com/kip-d/omnifocus-mcp-sub005/internal/query"
)

// ShutdownGrace bounds how long an interrupted command waits for its
// in-flight interpreter call before exiting anyway.
const ShutdownGrace = 5 * time.Second

// execEnv bundles the runtime a single executing command needs.
type execEnv struct {
	service *query.Service
	coord   *osa.Coordinator
}

// newExecEnv wires spawner, engine, cache, and shutdown coordinator
// for one command invocation. CLI commands are one-shot, so the cache
// only matters when a single invocation issues repeated operations,
// but the wiring is identical to a long-lived host's.
func newExecEnv(opts *RootOptions) *execEnv {
	spawner := opts.Spawner
	if spawner == nil {
		spawner = osa.NewOsascriptSpawner()
	}
	pending := osa.NewPendingSet()
	engine := osa.NewEngine(spawner, pending)
	coord := osa.NewCoordinator(pending, ShutdownGrace)
	svc := query.NewService(engine, cache.New(), query.WithCoordinator(coord))
	return &execEnv{service: svc, coord: coord}
}

// commandContext derives the execution context: the command's own
// context, cancelled on SIGINT/SIGTERM. The returned stop func must be
// deferred to unregister the signal handler.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

// emitResult prints an execution Result and maps failures to exit
// codes: validation problems are command errors, everything from the
// interpreter onward is an execution failure.
func emitResult(formatter *OutputFormatter, res osa.Result) error {
	if res.OK() {
		return formatter.SuccessRaw(res.Data)
	}

	details := res.Err.Context
	_ = formatter.Error(string(res.Err.Code), res.Err.Message, detailsOrNil(details))

	code := ExitFailure
	if res.Err.Code == osa.ErrCodeValidation {
		code = ExitCommandError
	}
	return NewExitError(code, res.Err.Error())
}

func detailsOrNil(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// loadSpec loads a document and converts it, emitting formatted errors
// on failure.
func loadSpec(formatter *OutputFormatter, path string) (*Document, error) {
	doc, err := LoadDocument(path)
	if err != nil {
		return nil, emitLoadError(formatter, err)
	}
	return doc, nil
}

func emitLoadError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		_ = formatter.Error(loadErr.Code, loadErr.Message, loadErr.Path)
		return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", loadErr.Code, loadErr.Message), nil)
	}
	_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
	return WrapExitError(ExitCommandError, err.Error(), nil)
}
