// Package query exposes the engine's logical operations: run a task
// query, count matches, or apply a mutation, each taking a FilterSpec
// plus projection/sort/limit options and returning a Result.
//
// This is the seam adapters call. Protocol framing, authentication, and
// human-facing formatting all live above it.
package query

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/kip-d/omnifocus-mcp-sub005/internal/cache"
	"github.com/kip-d/omnifocus-mcp-sub005/internal/canon"
	"github.com/kip-d/omnifocus-mcp-sub005/internal/filter"
	"github.com/kip-d/omnifocus-mcp-sub005/internal/omnijs"
	"github.com/kip-d/omnifocus-mcp-sub005/internal/osa"
	"github.com/kip-d/omnifocus-mcp-sub005/internal/script"
)

// DefaultTTL is how long successful query results stay fresh when the
// caller does not choose a TTL.
const DefaultTTL = 30 * time.Second

// CachePrefix covers every cached task operation. Mutations invalidate
// this whole class so the next read is guaranteed fresh.
const CachePrefix = "tasks:"

const (
	opQuery = "tasks:query"
	opCount = "tasks:count"
)

// Options carries the per-request knobs shared by the operations.
type Options struct {
	// Fields to project; empty means the canonical default set.
	Fields []script.Field
	// Limit caps results. Nil applies the assembler default; zero
	// short-circuits without touching the interpreter.
	Limit *int
	// Sort orders results; nil keeps collection order.
	Sort *script.SortSpec
	// Timeout bounds the interpreter call; non-positive uses the
	// engine default.
	Timeout time.Duration
	// TTL overrides the service cache TTL; non-positive uses the
	// service default.
	TTL time.Duration
}

// Service composes the compiler pipeline, the execution engine, and the
// cache into the three logical operations.
type Service struct {
	engine    *osa.Engine
	cache     *cache.Cache
	assembler *script.Assembler
	coord     *osa.Coordinator
	ttl       time.Duration
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithAssembler overrides the script assembler.
func WithAssembler(a *script.Assembler) ServiceOption {
	return func(s *Service) {
		s.assembler = a
	}
}

// WithCoordinator wires the shutdown coordinator; once it stops
// accepting, new operations fail fast instead of spawning work.
func WithCoordinator(c *osa.Coordinator) ServiceOption {
	return func(s *Service) {
		s.coord = c
	}
}

// WithTTL overrides the default cache TTL.
func WithTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.ttl = ttl
	}
}

// NewService creates a Service over an engine and a cache.
func NewService(engine *osa.Engine, store *cache.Cache, opts ...ServiceOption) *Service {
	s := &Service{
		engine:    engine,
		cache:     store,
		assembler: script.NewAssembler(),
		ttl:       DefaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tasks runs a query and returns the projected matches as a JSON array.
func (s *Service) Tasks(ctx context.Context, spec filter.FilterSpec, opts Options) osa.Result {
	if res, ok := s.admit(); !ok {
		return res
	}

	pred, emptyFilter, err := compilePredicate(spec)
	if err != nil {
		return osa.ValidationFailure(err)
	}

	sc, err := s.assembler.AssembleQuery(script.QueryRequest{
		Predicate:   pred,
		EmptyFilter: emptyFilter,
		Description: spec.Describe(),
		Fields:      opts.Fields,
		Limit:       opts.Limit,
		Sort:        opts.Sort,
	})
	if err != nil {
		return osa.ValidationFailure(err)
	}
	if sc.EmptyResult {
		return osa.Success(json.RawMessage("[]"))
	}

	key, err := canon.Key(opQuery, queryParams(spec, opts))
	if err != nil {
		return osa.ValidationFailure(err)
	}

	slog.Debug("query", "filters", sc.Description, "key", key)
	return s.cache.GetOrCompute(key, s.effectiveTTL(opts), func() osa.Result {
		return s.engine.Execute(ctx, sc, opts.Timeout)
	})
}

// Count runs a counting query and returns {"count": n}.
func (s *Service) Count(ctx context.Context, spec filter.FilterSpec, opts Options) osa.Result {
	if res, ok := s.admit(); !ok {
		return res
	}

	pred, emptyFilter, err := compilePredicate(spec)
	if err != nil {
		return osa.ValidationFailure(err)
	}

	sc, err := s.assembler.AssembleCount(script.CountRequest{
		Predicate:   pred,
		EmptyFilter: emptyFilter,
		Description: spec.Describe(),
	})
	if err != nil {
		return osa.ValidationFailure(err)
	}

	key, err := canon.Key(opCount, specParams(spec))
	if err != nil {
		return osa.ValidationFailure(err)
	}

	slog.Debug("count", "filters", sc.Description, "key", key)
	return s.cache.GetOrCompute(key, s.effectiveTTL(opts), func() osa.Result {
		return s.engine.Execute(ctx, sc, opts.Timeout)
	})
}

// Mutate applies action to every matching task and returns
// {"mutated": n}. Mutations bypass the cache entirely and invalidate
// the whole task prefix after success, so the next read recomputes.
func (s *Service) Mutate(ctx context.Context, spec filter.FilterSpec, action script.MutationAction, opts Options) osa.Result {
	if res, ok := s.admit(); !ok {
		return res
	}

	pred, emptyFilter, err := compilePredicate(spec)
	if err != nil {
		return osa.ValidationFailure(err)
	}

	sc, err := s.assembler.AssembleMutation(script.MutationRequest{
		Predicate:   pred,
		EmptyFilter: emptyFilter,
		Description: spec.Describe(),
		Action:      action,
	})
	if err != nil {
		return osa.ValidationFailure(err)
	}

	slog.Debug("mutate", "action", action, "filters", sc.Description)
	result := s.engine.Execute(ctx, sc, opts.Timeout)
	if result.OK() {
		s.cache.Invalidate(CachePrefix)
	}
	return result
}

// admit checks the shutdown coordinator before any work starts.
func (s *Service) admit() (osa.Result, bool) {
	if s.coord != nil && !s.coord.Accepting() {
		return osa.Failure(&osa.ScriptError{
			Code:    osa.ErrCodeProcess,
			Message: "engine is shutting down, request rejected",
		}), false
	}
	return osa.Result{}, true
}

func (s *Service) effectiveTTL(opts Options) time.Duration {
	if opts.TTL > 0 {
		return opts.TTL
	}
	return s.ttl
}

// compilePredicate runs the spec through BuildAST and emission,
// reporting whether the result is the always-true sentinel.
func compilePredicate(spec filter.FilterSpec) (string, bool, error) {
	node, err := filter.BuildAST(spec)
	if err != nil {
		return "", false, err
	}
	pred, err := omnijs.Emit(node)
	if err != nil {
		return "", false, err
	}
	_, emptyFilter := node.(filter.TrueNode)
	return pred, emptyFilter, nil
}
