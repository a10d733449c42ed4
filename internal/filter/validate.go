package filter

import (
	"errors"
	"fmt"
)

// ValidationError reports a structurally invalid FilterSpec.
//
// Validation is always local and synchronous: a spec that fails
// validation never reaches code generation, let alone the interpreter.
type ValidationError struct {
	// Field names the offending spec field (e.g. "dueDate").
	Field string
	// Message describes the violation.
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid filter: field %q: %s", e.Field, e.Message)
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate checks a FilterSpec for structural violations.
//
// Pure function, no side effects. Returns nil for a valid spec,
// otherwise a *ValidationError naming the first offending field.
func Validate(spec FilterSpec) error {
	if err := validateMatch("name", spec.Name); err != nil {
		return err
	}
	if err := validateMatch("note", spec.Note); err != nil {
		return err
	}
	if err := validateMatch("project", spec.Project); err != nil {
		return err
	}
	if err := validateTags(spec.Tags); err != nil {
		return err
	}
	if err := validateRange("dueDate", spec.DueDate); err != nil {
		return err
	}
	if err := validateRange("deferDate", spec.DeferDate); err != nil {
		return err
	}
	return nil
}

func validateMatch(field string, m *StringMatch) error {
	if m == nil {
		return nil
	}
	switch m.Mode {
	case MatchContains, MatchEquals:
	default:
		return &ValidationError{Field: field, Message: fmt.Sprintf("unknown match mode %q", m.Mode)}
	}
	if m.Value == "" {
		return &ValidationError{Field: field, Message: "match value must not be empty"}
	}
	return nil
}

func validateTags(t *TagFilter) error {
	if t == nil {
		return nil
	}
	switch t.Op {
	case SetAny, SetAll, SetNone:
	default:
		return &ValidationError{Field: "tags", Message: fmt.Sprintf("unknown set operator %q", t.Op)}
	}
	if len(t.Tags) == 0 {
		return &ValidationError{Field: "tags", Message: "tag list must not be empty"}
	}
	for _, tag := range t.Tags {
		if tag == "" {
			return &ValidationError{Field: "tags", Message: "tag names must not be empty"}
		}
	}
	return nil
}

func validateRange(field string, r *DateRange) error {
	if r == nil {
		return nil
	}
	if r.After == nil && r.Before == nil {
		return &ValidationError{Field: field, Message: "date range needs at least one bound"}
	}
	if r.After != nil && r.Before != nil && r.After.After(*r.Before) {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("after bound %s exceeds before bound %s",
				r.After.Format("2006-01-02"), r.Before.Format("2006-01-02")),
		}
	}
	return nil
}
