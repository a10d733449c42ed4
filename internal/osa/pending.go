package osa

import (
	"context"
	"sync"
)

// PendingSet tracks one membership token per in-flight interpreter
// call.
//
// The engine inserts on spawn and removes on every terminal state; the
// shutdown Coordinator reads it, request logic never does.
//
// Thread-safety: all methods are safe for concurrent use. Waiters are
// woken through a coalescing signal channel (buffer of one), the same
// shape as a single-slot semaphore: multiple removals between wakeups
// collapse into one signal and the waiter re-checks emptiness.
type PendingSet struct {
	mu     sync.Mutex
	tokens map[string]struct{}
	signal chan struct{}
}

// NewPendingSet creates an empty pending set.
func NewPendingSet() *PendingSet {
	return &PendingSet{
		tokens: make(map[string]struct{}),
		signal: make(chan struct{}, 1),
	}
}

// Add inserts a token.
func (p *PendingSet) Add(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens[token] = struct{}{}
}

// Remove deletes a token and wakes any drain waiter.
func (p *PendingSet) Remove(token string) {
	p.mu.Lock()
	delete(p.tokens, token)
	p.mu.Unlock()

	select {
	case p.signal <- struct{}{}:
	default:
	}
}

// Len returns the number of in-flight tokens.
func (p *PendingSet) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tokens)
}

// Wait blocks until the set is empty or ctx is done, returning ctx's
// error in the latter case.
func (p *PendingSet) Wait(ctx context.Context) error {
	for {
		if p.Len() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.signal:
		}
	}
}
