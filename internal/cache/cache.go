// Package cache is the TTL result store sitting in front of the
// execution engine.
//
// Only successful results are ever stored, so a transient subprocess
// failure cannot poison subsequent identical requests; the next call
// simply recomputes. Entries expire lazily on read and whole key
// classes are invalidated by prefix after mutations.
package cache

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kip-d/omnifocus-mcp-sub005/internal/osa"
)

// Clock abstracts time for TTL comparisons; injectable for tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

type entry struct {
	result     osa.Result
	insertedAt time.Time
	ttl        time.Duration
}

// Cache is an in-memory TTL store keyed by normalized request keys.
//
// Thread-safety: reads and writes are safe under concurrent access.
// No cross-key ordering is promised; key-level freshness is all the
// cache guarantees. Lifetime is the host process's lifetime.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	clock   Clock
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock injects a clock, used by tests to step time manually.
func WithClock(clock Clock) Option {
	return func(c *Cache) {
		c.clock = clock
	}
}

// New creates an empty cache on the system clock.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		clock:   SystemClock(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrCompute returns the cached result for key when one exists and is
// fresh, otherwise invokes compute and stores the outcome if and only
// if it succeeded.
//
// compute runs outside the lock: it spawns a subprocess and may block
// for seconds. Two concurrent misses on the same key may both compute;
// the cache promises freshness, not single-flight.
func (c *Cache) GetOrCompute(key string, ttl time.Duration, compute func() osa.Result) osa.Result {
	if cached, ok := c.lookup(key); ok {
		slog.Debug("cache hit", "key", key)
		return cached
	}
	slog.Debug("cache miss", "key", key)

	result := compute()
	if result.OK() && ttl > 0 {
		c.mu.Lock()
		c.entries[key] = entry{result: result, insertedAt: c.clock.Now(), ttl: ttl}
		c.mu.Unlock()
	}
	return result
}

// lookup returns a fresh entry, deleting it if expired.
func (c *Cache) lookup(key string) (osa.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return osa.Result{}, false
	}
	if c.clock.Now().Sub(e.insertedAt) >= e.ttl {
		delete(c.entries, key)
		return osa.Result{}, false
	}
	return e.result, true
}

// Invalidate removes every entry whose key starts with prefix and
// returns how many were dropped. Any read that starts after Invalidate
// returns is guaranteed to miss those keys.
func (c *Cache) Invalidate(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			removed++
		}
	}
	if removed > 0 {
		slog.Debug("cache invalidated", "prefix", prefix, "removed", removed)
	}
	return removed
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
