package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kip-d/omnifocus-mcp-sub005/internal/cache"
	"github.com/kip-d/omnifocus-mcp-sub005/internal/filter"
	"github.com/kip-d/omnifocus-mcp-sub005/internal/omnijs"
	"github.com/kip-d/omnifocus-mcp-sub005/internal/osa"
	"github.com/kip-d/omnifocus-mcp-sub005/internal/query"
	"github.com/kip-d/omnifocus-mcp-sub005/internal/script"
	"github.com/kip-d/omnifocus-mcp-sub005/internal/testutil"
)

// RunScenario executes one scenario file end to end.
//
// The reference evaluator produces the expected payload from the
// fixture; the pipeline then runs the same document through the real
// service wiring with a scripted interpreter returning that payload,
// so validation, codegen, assembly, execution, and envelope parsing
// all participate. The scenario's expected IDs pin both against the
// author's intent.
func RunScenario(t *testing.T, path string) {
	t.Helper()

	sc, err := LoadScenario(path)
	require.NoError(t, err)

	spec, err := sc.Document.Spec()
	require.NoError(t, err)
	require.NoError(t, filter.Validate(spec))

	opts := sc.Document.Options()
	matched := Run(spec, sc.Tasks, opts.Limit, opts.Sort)

	ids := make([]string, len(matched))
	for i, task := range matched {
		ids[i] = task.ID
	}
	if len(sc.Expect.IDs) == 0 {
		assert.Empty(t, ids, "scenario %s: reference evaluation matched unexpectedly", sc.Name)
	} else {
		assert.Equal(t, sc.Expect.IDs, ids, "scenario %s: reference evaluation disagrees", sc.Name)
	}

	payload, err := json.Marshal(Project(matched, opts.Fields))
	require.NoError(t, err)

	spawner := testutil.NewFakeSpawner(
		testutil.NewFakeProcess(testutil.Envelope(string(payload))),
	)
	engine := osa.NewEngine(spawner, osa.NewPendingSet())
	svc := query.NewService(engine, cache.New())

	res := svc.Tasks(context.Background(), spec, opts)
	require.True(t, res.OK(), "scenario %s: pipeline failed: %v", sc.Name, res.Err)
	assert.JSONEq(t, string(payload), string(res.Data), "scenario %s", sc.Name)

	snapshotPredicate(t, sc.Name, spec)
}

// snapshotPredicate pins the emitted predicate for the scenario's
// filter against a golden file keyed by scenario name.
func snapshotPredicate(t *testing.T, name string, spec filter.FilterSpec) {
	t.Helper()

	node, err := filter.BuildAST(spec)
	require.NoError(t, err)
	pred, err := omnijs.Emit(node)
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"))
	g.Assert(t, name, []byte(pred))
}

// Project renders tasks to the JSON payload shape a query script
// returns for the given field list, defaulting like the assembler.
func Project(tasks []Task, fields []script.Field) []map[string]any {
	if len(fields) == 0 {
		fields = script.DefaultFields()
	}

	out := make([]map[string]any, len(tasks))
	for i, task := range tasks {
		row := make(map[string]any, len(fields))
		for _, f := range fields {
			row[string(f)] = fieldValue(task, f)
		}
		out[i] = row
	}
	return out
}

func fieldValue(task Task, f script.Field) any {
	switch f {
	case script.FieldID:
		return task.ID
	case script.FieldName:
		return task.Name
	case script.FieldNote:
		return task.Note
	case script.FieldCompleted:
		return task.Completed
	case script.FieldFlagged:
		return task.Flagged
	case script.FieldDueDate:
		return isoOrNil(task.DueDate)
	case script.FieldDeferDate:
		return isoOrNil(task.DeferDate)
	case script.FieldProject:
		if task.Project == "" {
			return nil
		}
		return task.Project
	case script.FieldTags:
		if task.Tags == nil {
			return []string{}
		}
		return task.Tags
	default:
		panic(fmt.Sprintf("fixture has no value for field %q", f))
	}
}

// isoOrNil matches Date.prototype.toISOString: UTC with millisecond
// precision, or null for an unset date.
func isoOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
