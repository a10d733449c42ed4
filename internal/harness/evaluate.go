package harness

import (
	"sort"
	"strings"
	"time"

	"github.com/kip-d/omnifocus-mcp-sub005/internal/filter"
	"github.com/kip-d/omnifocus-mcp-sub005/internal/script"
)

// Matches applies a filter to a fixture task with the same semantics
// the generated scripts have. It is written directly against the
// FilterSpec, independent of the AST and emitter, so a codegen bug and
// an evaluator bug would have to agree to slip through.
func Matches(spec filter.FilterSpec, task Task) bool {
	if spec.Completed != nil && task.Completed != *spec.Completed {
		return false
	}
	if spec.Flagged != nil && task.Flagged != *spec.Flagged {
		return false
	}
	if !matchString(spec.Name, task.Name) {
		return false
	}
	if !matchString(spec.Note, task.Note) {
		return false
	}
	if !matchString(spec.Project, task.Project) {
		return false
	}
	if !matchTags(spec.Tags, task.Tags) {
		return false
	}
	if !matchRange(spec.DueDate, task.DueDate) {
		return false
	}
	if !matchRange(spec.DeferDate, task.DeferDate) {
		return false
	}
	if spec.Search != "" {
		term := strings.ToLower(spec.Search)
		if !strings.Contains(strings.ToLower(task.Name), term) &&
			!strings.Contains(strings.ToLower(task.Note), term) {
			return false
		}
	}
	return true
}

func matchString(m *filter.StringMatch, value string) bool {
	if m == nil {
		return true
	}
	switch m.Mode {
	case filter.MatchEquals:
		return value == m.Value
	case filter.MatchContains:
		// An absent value (null in the script dialect) matches nothing.
		if value == "" {
			return false
		}
		return strings.Contains(strings.ToLower(value), strings.ToLower(m.Value))
	default:
		return false
	}
}

func matchTags(t *filter.TagFilter, tags []string) bool {
	if t == nil {
		return true
	}
	has := make(map[string]bool, len(tags))
	for _, tag := range tags {
		has[tag] = true
	}
	switch t.Op {
	case filter.SetAny:
		for _, want := range t.Tags {
			if has[want] {
				return true
			}
		}
		return false
	case filter.SetNone:
		for _, want := range t.Tags {
			if has[want] {
				return false
			}
		}
		return true
	case filter.SetAll:
		for _, want := range t.Tags {
			if !has[want] {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// matchRange applies strict bounds: a date equal to a bound does not
// match, and an unset date never matches a range.
func matchRange(r *filter.DateRange, date *time.Time) bool {
	if r == nil {
		return true
	}
	if date == nil {
		return false
	}
	if r.After != nil && !date.After(*r.After) {
		return false
	}
	if r.Before != nil && !date.Before(*r.Before) {
		return false
	}
	return true
}

// Run evaluates a filter over the fixture the way a generated query
// script would: filter in collection order, sort if requested, then
// limit.
func Run(spec filter.FilterSpec, tasks []Task, limit *int, sortSpec *script.SortSpec) []Task {
	want := script.DefaultLimit
	if limit != nil {
		want = *limit
	}
	if want == 0 {
		return nil
	}

	var matched []Task
	for _, task := range tasks {
		if Matches(spec, task) {
			matched = append(matched, task)
		}
	}

	if sortSpec != nil {
		sortTasks(matched, *sortSpec)
	}
	if len(matched) > want {
		matched = matched[:want]
	}
	return matched
}

// sortTasks mirrors the script comparator: requested key first with
// nulls always last, then ID ascending as the tiebreak.
func sortTasks(tasks []Task, spec script.SortSpec) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, aNull := sortValue(tasks[i], spec.Key)
		b, bNull := sortValue(tasks[j], spec.Key)
		switch {
		case aNull && bNull:
			return tasks[i].ID < tasks[j].ID
		case aNull:
			return false
		case bNull:
			return true
		case a != b:
			if spec.Descending {
				return a > b
			}
			return a < b
		default:
			return tasks[i].ID < tasks[j].ID
		}
	})
}

// sortValue extracts a comparable key. Dates compare as epoch
// milliseconds and flags as 0/1, matching the script expressions, but
// name needs its own ordering so everything is mapped into a string.
func sortValue(task Task, key script.SortKey) (string, bool) {
	switch key {
	case script.SortByName:
		return task.Name, false
	case script.SortByDueDate:
		return millisKey(task.DueDate)
	case script.SortByDeferDate:
		return millisKey(task.DeferDate)
	case script.SortByFlagged:
		if task.Flagged {
			return "1", false
		}
		return "0", false
	default:
		return "", true
	}
}

func millisKey(t *time.Time) (string, bool) {
	if t == nil {
		return "", true
	}
	// Fixed width keeps lexicographic order equal to numeric order.
	return t.UTC().Format("20060102150405.000"), false
}
