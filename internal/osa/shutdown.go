package osa

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"
)

// DefaultGracePeriod bounds how long shutdown waits for in-flight
// interpreter calls to finish.
const DefaultGracePeriod = 30 * time.Second

// ErrGraceExpired is returned when shutdown force-completed with
// operations still pending.
var ErrGraceExpired = errors.New("shutdown grace period expired with operations still pending")

// Coordinator implements the host's cooperative shutdown protocol:
// stop accepting new requests, wait for the pending set to drain up to
// a grace period, then complete unconditionally.
type Coordinator struct {
	pending   *PendingSet
	grace     time.Duration
	accepting atomic.Bool
}

// NewCoordinator creates a Coordinator over the shared pending set.
// A non-positive grace period falls back to DefaultGracePeriod.
func NewCoordinator(pending *PendingSet, grace time.Duration) *Coordinator {
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	c := &Coordinator{pending: pending, grace: grace}
	c.accepting.Store(true)
	return c
}

// Accepting reports whether new requests should still be admitted.
// Callers check this before starting work; in-flight calls finish
// regardless.
func (c *Coordinator) Accepting() bool {
	return c.accepting.Load()
}

// Shutdown stops admission and drains the pending set.
//
// Returns nil when the set drained in time, ErrGraceExpired when the
// grace period elapsed first, or ctx's error if the surrounding context
// ended the wait early. In every case the coordinator is finished
// afterwards: the caller exits regardless.
func (c *Coordinator) Shutdown(ctx context.Context) error {
	c.accepting.Store(false)
	slog.Info("shutdown initiated", "pending", c.pending.Len(), "grace", c.grace)

	drainCtx, cancel := context.WithTimeout(ctx, c.grace)
	defer cancel()

	if err := c.pending.Wait(drainCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			slog.Warn("force-completing shutdown", "still_pending", c.pending.Len())
			return ErrGraceExpired
		}
		return err
	}

	slog.Info("shutdown complete, pending set drained")
	return nil
}
