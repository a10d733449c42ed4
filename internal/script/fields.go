package script

import "fmt"

// Field identifies one task property available for projection.
//
// Fields form a closed allow-list: each maps to a fixed omniJS value
// expression in projections, so requested field names never reach the
// generated source as raw text.
type Field string

const (
	FieldID               Field = "id"
	FieldName             Field = "name"
	FieldNote             Field = "note"
	FieldCompleted        Field = "completed"
	FieldFlagged          Field = "flagged"
	FieldDueDate          Field = "dueDate"
	FieldDeferDate        Field = "deferDate"
	FieldProject          Field = "project"
	FieldTags             Field = "tags"
	FieldEstimatedMinutes Field = "estimatedMinutes"
)

// projections maps each field to the omniJS expression producing its
// JSON-safe value for the task variable "t". Dates serialize to ISO
// strings, tags to name arrays, so JSON.stringify never sees a live
// OmniFocus object.
var projections = map[Field]string{
	FieldID:               "t.id.primaryKey",
	FieldName:             "t.name",
	FieldNote:             "t.note",
	FieldCompleted:        "t.completed",
	FieldFlagged:          "t.flagged",
	FieldDueDate:          "(t.dueDate ? t.dueDate.toISOString() : null)",
	FieldDeferDate:        "(t.deferDate ? t.deferDate.toISOString() : null)",
	FieldProject:          "(t.containingProject ? t.containingProject.name : null)",
	FieldTags:             "t.tags.map(function (tag) { return tag.name; })",
	FieldEstimatedMinutes: "t.estimatedMinutes",
}

// DefaultFields is the canonical projection used when a request names no
// fields at all.
func DefaultFields() []Field {
	return []Field{FieldID, FieldName, FieldCompleted, FieldFlagged, FieldDueDate}
}

// normalizeFields substitutes the default set for an empty request and
// drops duplicates while preserving first-occurrence order. Unknown
// fields are rejected.
func normalizeFields(fields []Field) ([]Field, error) {
	if len(fields) == 0 {
		return DefaultFields(), nil
	}
	seen := make(map[Field]bool, len(fields))
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if _, ok := projections[f]; !ok {
			return nil, fmt.Errorf("unknown projection field %q", f)
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out, nil
}
