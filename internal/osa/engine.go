package osa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kip-d/omnifocus-mcp-sub005/internal/script"
)

// DefaultTimeout bounds a single interpreter call when the caller
// passes no deadline of its own.
const DefaultTimeout = 60 * time.Second

// Engine runs generated scripts in external interpreter subprocesses.
//
// Per call the engine moves through Spawned -> Writing -> AwaitingOutput
// and ends in exactly one of Completed, TimedOut, or ProcessError. The
// pending token is inserted before spawning and removed by defer, so it
// leaves the set on every path, panics included.
//
// Thread-safety: Execute is safe to call from any number of goroutines;
// each call owns its subprocess and shares only the PendingSet.
type Engine struct {
	spawner        Spawner
	pending        *PendingSet
	defaultTimeout time.Duration
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithDefaultTimeout overrides the fallback deadline for calls that
// pass a non-positive timeout.
func WithDefaultTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.defaultTimeout = d
	}
}

// NewEngine creates an Engine. The pending set is an explicit handle,
// owned by the host's lifecycle manager rather than by this package.
func NewEngine(spawner Spawner, pending *PendingSet, opts ...EngineOption) *Engine {
	e := &Engine{
		spawner:        spawner,
		pending:        pending,
		defaultTimeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Pending exposes the engine's pending set handle for lifecycle wiring.
func (e *Engine) Pending() *PendingSet {
	return e.pending
}

type waitOutcome struct {
	stdout string
	stderr string
	err    error
}

// Execute runs one generated script to completion or deadline.
//
// On timeout the child is forcibly terminated and a timeout failure is
// returned; the pending token is removed either way. Completed output
// is parsed as the JSON envelope, distinguishing protocol violations
// (not JSON at all) from errors the script itself reported.
func (e *Engine) Execute(ctx context.Context, sc script.GeneratedScript, timeout time.Duration) Result {
	if timeout <= 0 {
		timeout = e.defaultTimeout
	}

	token := uuid.NewString()
	e.pending.Add(token)
	defer e.pending.Remove(token)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	slog.Debug("spawning interpreter",
		"token", token,
		"kind", sc.Kind,
		"script_bytes", sc.ByteLen,
		"timeout", timeout,
	)

	proc, err := e.spawner.Spawn(ctx)
	if err != nil {
		slog.Error("interpreter spawn failed", "token", token, "error", err)
		return Failure(&ScriptError{
			Code:    ErrCodeProcess,
			Message: fmt.Sprintf("spawn interpreter: %v", err),
		})
	}

	if err := proc.WriteScript(sc.Source); err != nil {
		_ = proc.Kill()
		_, stderr, _ := proc.Wait()
		slog.Error("script write failed", "token", token, "error", err)
		return Failure(&ScriptError{
			Code:    ErrCodeProcess,
			Message: fmt.Sprintf("write script: %v", err),
			Context: strings.TrimSpace(stderr),
		})
	}

	done := make(chan waitOutcome, 1)
	go func() {
		stdout, stderr, werr := proc.Wait()
		done <- waitOutcome{stdout: stdout, stderr: stderr, err: werr}
	}()

	select {
	case <-ctx.Done():
		_ = proc.Kill()
		// Reap the child; the Process contract guarantees Wait
		// unblocks after Kill.
		<-done
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			slog.Warn("interpreter timed out", "token", token, "timeout", timeout)
			return Failure(&ScriptError{
				Code:    ErrCodeTimeout,
				Message: fmt.Sprintf("interpreter exceeded %s deadline", timeout),
			})
		}
		return Failure(&ScriptError{
			Code:    ErrCodeProcess,
			Message: fmt.Sprintf("execution cancelled: %v", ctx.Err()),
		})

	case outcome := <-done:
		if outcome.err != nil {
			slog.Error("interpreter exited abnormally",
				"token", token,
				"error", outcome.err,
				"stderr", strings.TrimSpace(outcome.stderr),
			)
			return Failure(&ScriptError{
				Code:    ErrCodeProcess,
				Message: fmt.Sprintf("interpreter exited abnormally: %v", outcome.err),
				Context: strings.TrimSpace(outcome.stderr),
				Raw:     outcome.stdout,
			})
		}
		result := parseEnvelope(outcome.stdout)
		if result.OK() {
			slog.Debug("interpreter completed", "token", token, "output_bytes", len(outcome.stdout))
		}
		return result
	}
}

// envelope is the subprocess output contract: a single JSON object with
// either a success marker and payload or an error marker.
type envelope struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Context string `json:"context"`
	} `json:"error"`
}

func parseEnvelope(stdout string) Result {
	trimmed := strings.TrimSpace(stdout)
	if trimmed == "" {
		return Failure(&ScriptError{
			Code:    ErrCodeMalformedOutput,
			Message: "interpreter produced no output",
		})
	}

	var env envelope
	if err := json.Unmarshal([]byte(trimmed), &env); err != nil {
		return Failure(&ScriptError{
			Code:    ErrCodeMalformedOutput,
			Message: fmt.Sprintf("interpreter output is not valid JSON: %v", err),
			Raw:     trimmed,
		})
	}

	if !env.OK {
		if env.Error == nil {
			return Failure(&ScriptError{
				Code:    ErrCodeMalformedOutput,
				Message: "failure envelope missing error object",
				Raw:     trimmed,
			})
		}
		return Failure(&ScriptError{
			Code:    ErrCodeScriptReported,
			Message: env.Error.Message,
			Context: env.Error.Context,
		})
	}

	return Success(env.Data)
}
