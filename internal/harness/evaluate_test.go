package harness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kip-d/omnifocus-mcp-sub005/internal/filter"
	"github.com/kip-d/omnifocus-mcp-sub005/internal/script"
)

func datePtr(t time.Time) *time.Time { return &t }
func boolPtr(b bool) *bool           { return &b }
func intPtr(n int) *int              { return &n }

func TestMatches_StrictDateBounds(t *testing.T) {
	after := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	before := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	spec := filter.FilterSpec{DueDate: &filter.DateRange{After: &after, Before: &before}}

	// A date equal to a bound does not match.
	assert.False(t, Matches(spec, Task{ID: "a", DueDate: &after}))
	assert.False(t, Matches(spec, Task{ID: "b", DueDate: &before}))
	assert.True(t, Matches(spec, Task{ID: "c", DueDate: datePtr(after.Add(time.Second))}))
	assert.False(t, Matches(spec, Task{ID: "d"}))
}

func TestMatches_ContainsIsCaseInsensitive(t *testing.T) {
	spec := filter.FilterSpec{Name: &filter.StringMatch{Value: "REPORT", Mode: filter.MatchContains}}
	assert.True(t, Matches(spec, Task{Name: "Quarterly report draft"}))
	assert.False(t, Matches(spec, Task{Name: "Unrelated"}))
	assert.False(t, Matches(spec, Task{Name: ""}))
}

func TestMatches_EqualsIsExact(t *testing.T) {
	spec := filter.FilterSpec{Project: &filter.StringMatch{Value: "Launch", Mode: filter.MatchEquals}}
	assert.True(t, Matches(spec, Task{Project: "Launch"}))
	assert.False(t, Matches(spec, Task{Project: "launch"}))
	assert.False(t, Matches(spec, Task{}))
}

func TestMatches_TagOps(t *testing.T) {
	task := Task{Tags: []string{"work", "deep"}}

	any := filter.FilterSpec{Tags: &filter.TagFilter{Op: filter.SetAny, Tags: []string{"deep", "urgent"}}}
	assert.True(t, Matches(any, task))

	all := filter.FilterSpec{Tags: &filter.TagFilter{Op: filter.SetAll, Tags: []string{"work", "urgent"}}}
	assert.False(t, Matches(all, task))

	none := filter.FilterSpec{Tags: &filter.TagFilter{Op: filter.SetNone, Tags: []string{"urgent"}}}
	assert.True(t, Matches(none, task))
	assert.False(t, Matches(none, Task{Tags: []string{"urgent"}}))
}

func TestMatches_SearchSpansNameAndNote(t *testing.T) {
	spec := filter.FilterSpec{Search: "budget"}
	assert.True(t, Matches(spec, Task{Name: "Budget review"}))
	assert.True(t, Matches(spec, Task{Name: "Misc", Note: "ask about the budget"}))
	assert.False(t, Matches(spec, Task{Name: "Misc", Note: "nothing here"}))
}

func TestRun_LimitAndOrder(t *testing.T) {
	tasks := []Task{
		{ID: "t1", Name: "c", Flagged: true},
		{ID: "t2", Name: "a", Flagged: true},
		{ID: "t3", Name: "b", Flagged: true},
		{ID: "t4", Name: "d"},
	}
	spec := filter.FilterSpec{Flagged: boolPtr(true)}

	// No sort: collection order.
	got := Run(spec, tasks, nil, nil)
	require.Len(t, got, 3)
	assert.Equal(t, "t1", got[0].ID)

	// Sorted by name with a limit.
	got = Run(spec, tasks, intPtr(2), &script.SortSpec{Key: script.SortByName})
	require.Len(t, got, 2)
	assert.Equal(t, "t2", got[0].ID)
	assert.Equal(t, "t3", got[1].ID)

	// Limit zero yields nothing.
	assert.Empty(t, Run(spec, tasks, intPtr(0), nil))
}

func TestRun_SortNullsLast(t *testing.T) {
	early := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	tasks := []Task{
		{ID: "t1"},
		{ID: "t2", DueDate: &late},
		{ID: "t3", DueDate: &early},
	}

	got := Run(filter.FilterSpec{}, tasks, nil, &script.SortSpec{Key: script.SortByDueDate})
	require.Len(t, got, 3)
	assert.Equal(t, []string{"t3", "t2", "t1"}, []string{got[0].ID, got[1].ID, got[2].ID})

	// Descending flips dated tasks but keeps the undated one last.
	got = Run(filter.FilterSpec{}, tasks, nil, &script.SortSpec{Key: script.SortByDueDate, Descending: true})
	assert.Equal(t, []string{"t2", "t3", "t1"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestProject_DefaultsAndNulls(t *testing.T) {
	due := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	rows := Project([]Task{{ID: "t1", Name: "X", DueDate: &due}, {ID: "t2", Name: "Y"}}, nil)
	require.Len(t, rows, 2)

	assert.Equal(t, "t1", rows[0]["id"])
	assert.Equal(t, "2026-05-01T12:00:00.000Z", rows[0]["dueDate"])
	assert.Nil(t, rows[1]["dueDate"])
	// Default projection carries exactly the canonical field set.
	assert.Len(t, rows[0], len(script.DefaultFields()))
}
