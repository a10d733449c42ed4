package script

import (
	"fmt"
	"strings"

	"github.com/kip-d/omnifocus-mcp-sub005/internal/omnijs"
)

// DefaultLimit caps result size when a query names no limit.
const DefaultLimit = 100

// DefaultApplication is the automation target the outer script drives.
const DefaultApplication = "OmniFocus"

// Kind distinguishes the operation a generated script performs.
type Kind string

const (
	KindQuery  Kind = "query"
	KindCount  Kind = "count"
	KindMutate Kind = "mutate"
)

// MutationAction identifies a bulk mutation applied to matching tasks.
type MutationAction string

const (
	ActionComplete MutationAction = "complete"
	ActionFlag     MutationAction = "flag"
	ActionUnflag   MutationAction = "unflag"
	ActionDrop     MutationAction = "drop"
)

// mutationStmts maps each action to the omniJS statement applied per
// task. Closed table, same reasoning as the projection allow-list.
var mutationStmts = map[MutationAction]string{
	ActionComplete: "t.markComplete();",
	ActionFlag:     "t.flagged = true;",
	ActionUnflag:   "t.flagged = false;",
	ActionDrop:     "t.drop(false);",
}

// GeneratedScript is the textual artifact the assembler produces.
//
// It lives for exactly one request: the execution engine consumes it
// immediately and only its result is ever cached.
type GeneratedScript struct {
	// Source is the complete outer-dialect program.
	Source string
	// ByteLen is len(Source).
	ByteLen int
	// Description summarizes the filters the script applies.
	Description string
	// Kind names the operation the script performs.
	Kind Kind
	// EmptyFilter is set when the predicate is the always-true sentinel.
	EmptyFilter bool
	// EmptyResult is set when the script was short-circuited (limit 0)
	// and the caller should not invoke the interpreter at all.
	EmptyResult bool
}

// Assembler builds outer-dialect scripts around omniJS predicates.
type Assembler struct {
	app string
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithApplication overrides the automation target application name.
// Used by tests to point the wrapper at a stub.
func WithApplication(name string) Option {
	return func(a *Assembler) {
		a.app = name
	}
}

// NewAssembler creates an Assembler targeting OmniFocus.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{app: DefaultApplication}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// QueryRequest carries everything AssembleQuery needs.
type QueryRequest struct {
	// Predicate is the emitted omniJS filter expression.
	Predicate string
	// EmptyFilter marks the always-true sentinel predicate.
	EmptyFilter bool
	// Description summarizes the applied filters (metadata only).
	Description string
	// Fields to project; empty substitutes the canonical default set.
	Fields []Field
	// Limit caps the result count. Nil applies DefaultLimit; zero
	// short-circuits to an empty-result script.
	Limit *int
	// Sort orders results; nil leaves collection order.
	Sort *SortSpec
}

// AssembleQuery produces a self-contained query script.
//
// Field projection happens inside the inner script, so payload size
// scales with the requested fields rather than with every property a
// task has.
func (a *Assembler) AssembleQuery(req QueryRequest) (GeneratedScript, error) {
	if req.Predicate == "" {
		return GeneratedScript{}, fmt.Errorf("assemble query: empty predicate")
	}

	limit := DefaultLimit
	if req.Limit != nil {
		if *req.Limit < 0 {
			return GeneratedScript{}, fmt.Errorf("assemble query: negative limit %d", *req.Limit)
		}
		limit = *req.Limit
	}
	if limit == 0 {
		return a.emptyResult(KindQuery, req.Description, req.EmptyFilter, "[]"), nil
	}

	fields, err := normalizeFields(req.Fields)
	if err != nil {
		return GeneratedScript{}, fmt.Errorf("assemble query: %w", err)
	}

	inner, err := a.queryBody(req.Predicate, fields, limit, req.Sort)
	if err != nil {
		return GeneratedScript{}, fmt.Errorf("assemble query: %w", err)
	}

	return a.wrap(KindQuery, inner, req.Description, req.EmptyFilter), nil
}

// CountRequest carries everything AssembleCount needs.
type CountRequest struct {
	Predicate   string
	EmptyFilter bool
	Description string
}

// AssembleCount produces a script counting matching tasks instead of
// materializing them.
func (a *Assembler) AssembleCount(req CountRequest) (GeneratedScript, error) {
	if req.Predicate == "" {
		return GeneratedScript{}, fmt.Errorf("assemble count: empty predicate")
	}
	inner := a.countBody(req.Predicate)
	return a.wrap(KindCount, inner, req.Description, req.EmptyFilter), nil
}

// MutationRequest carries everything AssembleMutation needs.
type MutationRequest struct {
	Predicate   string
	EmptyFilter bool
	Description string
	Action      MutationAction
}

// AssembleMutation produces a script applying one action to every
// matching task and reporting how many were touched.
func (a *Assembler) AssembleMutation(req MutationRequest) (GeneratedScript, error) {
	if req.Predicate == "" {
		return GeneratedScript{}, fmt.Errorf("assemble mutation: empty predicate")
	}
	stmt, ok := mutationStmts[req.Action]
	if !ok {
		return GeneratedScript{}, fmt.Errorf("assemble mutation: unknown action %q", req.Action)
	}
	inner := a.mutationBody(req.Predicate, stmt)
	return a.wrap(KindMutate, inner, req.Description, req.EmptyFilter), nil
}

// queryBody builds the inner omniJS program for a query.
func (a *Assembler) queryBody(predicate string, fields []Field, limit int, sort *SortSpec) (string, error) {
	var b strings.Builder
	b.WriteString("(function () {\n")
	b.WriteString("  try {\n")
	b.WriteString("    var matches = [];\n")
	b.WriteString("    var tasks = flattenedTasks;\n")
	b.WriteString("    for (var i = 0; i < tasks.length; i++) {\n")
	b.WriteString("      var t = tasks[i];\n")
	b.WriteString("      if (!(" + predicate + ")) { continue; }\n")
	b.WriteString("      matches.push(t);\n")
	if sort == nil {
		// No sort means collection order is the result order, so the
		// scan can stop as soon as the limit is reached.
		fmt.Fprintf(&b, "      if (matches.length >= %d) { break; }\n", limit)
	}
	b.WriteString("    }\n")
	if sort != nil {
		if err := emitSortBlock(&b, *sort); err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "    if (matches.length > %d) { matches = matches.slice(0, %d); }\n", limit, limit)
	}
	b.WriteString("    var out = [];\n")
	b.WriteString("    for (var j = 0; j < matches.length; j++) {\n")
	b.WriteString("      var t = matches[j];\n")
	b.WriteString("      out.push({\n")
	for i, f := range fields {
		sep := ","
		if i == len(fields)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "        %s: %s%s\n", omnijs.EncodeString(string(f)), projections[f], sep)
	}
	b.WriteString("      });\n")
	b.WriteString("    }\n")
	b.WriteString("    return JSON.stringify(out);\n")
	b.WriteString("  } catch (err) {\n")
	b.WriteString("    return JSON.stringify({ \"error\": { \"message\": String(err), \"context\": \"query\" } });\n")
	b.WriteString("  }\n")
	b.WriteString("})()")
	return b.String(), nil
}

// countBody builds the inner omniJS program for a count.
func (a *Assembler) countBody(predicate string) string {
	var b strings.Builder
	b.WriteString("(function () {\n")
	b.WriteString("  try {\n")
	b.WriteString("    var count = 0;\n")
	b.WriteString("    var tasks = flattenedTasks;\n")
	b.WriteString("    for (var i = 0; i < tasks.length; i++) {\n")
	b.WriteString("      var t = tasks[i];\n")
	b.WriteString("      if (!(" + predicate + ")) { continue; }\n")
	b.WriteString("      count++;\n")
	b.WriteString("    }\n")
	b.WriteString("    return JSON.stringify({ \"count\": count });\n")
	b.WriteString("  } catch (err) {\n")
	b.WriteString("    return JSON.stringify({ \"error\": { \"message\": String(err), \"context\": \"count\" } });\n")
	b.WriteString("  }\n")
	b.WriteString("})()")
	return b.String()
}

// mutationBody builds the inner omniJS program for a bulk mutation.
// Matches are collected before any mutation runs: mutating a task can
// reorder or shrink flattenedTasks mid-iteration.
func (a *Assembler) mutationBody(predicate, stmt string) string {
	var b strings.Builder
	b.WriteString("(function () {\n")
	b.WriteString("  try {\n")
	b.WriteString("    var matches = [];\n")
	b.WriteString("    var tasks = flattenedTasks;\n")
	b.WriteString("    for (var i = 0; i < tasks.length; i++) {\n")
	b.WriteString("      var t = tasks[i];\n")
	b.WriteString("      if (!(" + predicate + ")) { continue; }\n")
	b.WriteString("      matches.push(t);\n")
	b.WriteString("    }\n")
	b.WriteString("    var mutated = 0;\n")
	b.WriteString("    for (var j = 0; j < matches.length; j++) {\n")
	b.WriteString("      var t = matches[j];\n")
	b.WriteString("      " + stmt + "\n")
	b.WriteString("      mutated++;\n")
	b.WriteString("    }\n")
	b.WriteString("    return JSON.stringify({ \"mutated\": mutated });\n")
	b.WriteString("  } catch (err) {\n")
	b.WriteString("    return JSON.stringify({ \"error\": { \"message\": String(err), \"context\": \"mutate\" } });\n")
	b.WriteString("  }\n")
	b.WriteString("})()")
	return b.String()
}

// wrap embeds the inner omniJS program in the outer JXA wrapper.
//
// The inner program crosses the bridge as one string literal; whatever
// it returns comes back as a string, which the wrapper parses and
// re-serializes into the engine's JSON envelope. Inner-reported errors
// (an object carrying "error") are forwarded as a failed envelope so
// the engine can tell logical failures from protocol violations.
func (a *Assembler) wrap(kind Kind, inner, description string, emptyFilter bool) GeneratedScript {
	var b strings.Builder
	b.WriteString("function run() {\n")
	b.WriteString("  var app = Application(" + omnijs.EncodeString(a.app) + ");\n")
	b.WriteString("  app.includeStandardAdditions = false;\n")
	b.WriteString("  try {\n")
	b.WriteString("    var raw = app.evaluateJavascript(" + omnijs.EncodeString(inner) + ");\n")
	b.WriteString("    var payload = JSON.parse(raw);\n")
	b.WriteString("    if (payload !== null && typeof payload === \"object\" && payload.error) {\n")
	b.WriteString("      return JSON.stringify({ \"ok\": false, \"error\": payload.error });\n")
	b.WriteString("    }\n")
	b.WriteString("    return JSON.stringify({ \"ok\": true, \"data\": payload });\n")
	b.WriteString("  } catch (err) {\n")
	b.WriteString("    return JSON.stringify({ \"ok\": false, \"error\": { \"message\": String(err) } });\n")
	b.WriteString("  }\n")
	b.WriteString("}\n")

	source := b.String()
	return GeneratedScript{
		Source:      source,
		ByteLen:     len(source),
		Description: description,
		Kind:        kind,
		EmptyFilter: emptyFilter,
	}
}

// emptyResult produces the limit-zero short circuit: a trivial script
// whose result is already known, flagged so callers skip execution.
func (a *Assembler) emptyResult(kind Kind, description string, emptyFilter bool, payload string) GeneratedScript {
	source := "function run() {\n" +
		"  return JSON.stringify({ \"ok\": true, \"data\": " + payload + " });\n" +
		"}\n"
	return GeneratedScript{
		Source:      source,
		ByteLen:     len(source),
		Description: description,
		Kind:        kind,
		EmptyFilter: emptyFilter,
		EmptyResult: true,
	}
}
