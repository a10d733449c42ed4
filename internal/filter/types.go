package filter

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// MatchMode controls how a string field is compared.
type MatchMode string

const (
	// MatchContains is a case-insensitive substring match.
	MatchContains MatchMode = "contains"
	// MatchEquals is an exact, case-sensitive match.
	MatchEquals MatchMode = "equals"
)

// SetOp controls how a tag-set filter is evaluated.
type SetOp string

const (
	// SetAny matches tasks carrying at least one of the listed tags.
	SetAny SetOp = "any"
	// SetAll matches tasks carrying every listed tag.
	SetAll SetOp = "all"
	// SetNone matches tasks carrying none of the listed tags.
	SetNone SetOp = "none"
)

// StringMatch describes a filter on a string-valued task property.
type StringMatch struct {
	Value string
	Mode  MatchMode
}

// TagFilter describes a set-membership filter on task tags.
type TagFilter struct {
	Tags []string
	Op   SetOp
}

// DateRange describes a bounded filter on a date-valued task property.
// A nil bound is open. When both bounds are set, After must not exceed
// Before; Validate enforces this.
//
// Matching is strict: a task date equal to a bound does not match.
type DateRange struct {
	After  *time.Time
	Before *time.Time
}

// FilterSpec is an immutable, typed description of a task query.
//
// Nil pointer fields are unset and contribute nothing to the query. An
// entirely empty spec is valid and matches every task.
//
// At most one operator applies per field by construction: each field
// carries exactly one mode/op, and BuildAST emits exactly one leaf node
// per populated field.
type FilterSpec struct {
	Completed *bool
	Flagged   *bool

	Name    *StringMatch
	Note    *StringMatch
	Project *StringMatch

	Tags *TagFilter

	DueDate   *DateRange
	DeferDate *DateRange

	// Search is a free-text term matched case-insensitively against
	// both the task name and note.
	Search string
}

// IsEmpty reports whether no field of the spec is populated.
func (s FilterSpec) IsEmpty() bool {
	return s.Completed == nil &&
		s.Flagged == nil &&
		s.Name == nil &&
		s.Note == nil &&
		s.Project == nil &&
		s.Tags == nil &&
		s.DueDate == nil &&
		s.DeferDate == nil &&
		s.Search == ""
}

// Describe returns a short human-readable summary of the populated
// fields, suitable for logging and script metadata. The summary lists
// fields in declaration order so equal specs describe identically.
func (s FilterSpec) Describe() string {
	if s.IsEmpty() {
		return "all tasks"
	}

	var parts []string
	if s.Completed != nil {
		parts = append(parts, fmt.Sprintf("completed=%t", *s.Completed))
	}
	if s.Flagged != nil {
		parts = append(parts, fmt.Sprintf("flagged=%t", *s.Flagged))
	}
	if s.Name != nil {
		parts = append(parts, fmt.Sprintf("name %s %q", s.Name.Mode, s.Name.Value))
	}
	if s.Note != nil {
		parts = append(parts, fmt.Sprintf("note %s %q", s.Note.Mode, s.Note.Value))
	}
	if s.Project != nil {
		parts = append(parts, fmt.Sprintf("project %s %q", s.Project.Mode, s.Project.Value))
	}
	if s.Tags != nil {
		tags := make([]string, len(s.Tags.Tags))
		copy(tags, s.Tags.Tags)
		sort.Strings(tags)
		parts = append(parts, fmt.Sprintf("tags %s [%s]", s.Tags.Op, strings.Join(tags, ", ")))
	}
	if s.DueDate != nil {
		parts = append(parts, describeRange("due", *s.DueDate))
	}
	if s.DeferDate != nil {
		parts = append(parts, describeRange("defer", *s.DeferDate))
	}
	if s.Search != "" {
		parts = append(parts, fmt.Sprintf("search %q", s.Search))
	}

	return strings.Join(parts, ", ")
}

func describeRange(field string, r DateRange) string {
	switch {
	case r.After != nil && r.Before != nil:
		return fmt.Sprintf("%s between %s and %s",
			field, r.After.Format(time.RFC3339), r.Before.Format(time.RFC3339))
	case r.After != nil:
		return fmt.Sprintf("%s after %s", field, r.After.Format(time.RFC3339))
	case r.Before != nil:
		return fmt.Sprintf("%s before %s", field, r.Before.Format(time.RFC3339))
	default:
		return field + " any"
	}
}
