package filter

import (
	"strings"
	"time"
)

// Property identifies a task property a filter leaf applies to.
//
// This is a closed enum: code generation resolves properties through a
// fixed accessor table keyed by these values, so no user-supplied text
// can ever name a property.
type Property string

const (
	PropCompleted Property = "completed"
	PropFlagged   Property = "flagged"
	PropName      Property = "name"
	PropNote      Property = "note"
	PropProject   Property = "project"
	PropTags      Property = "tags"
	PropDueDate   Property = "dueDate"
	PropDeferDate Property = "deferDate"
)

// CombineOp joins the children of a CombinedNode.
type CombineOp string

const (
	CombineAnd CombineOp = "and"
	CombineOr  CombineOp = "or"
)

// Node represents one node of the filter tree.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and enables
// exhaustive type switches in the code emitter.
//
// Node kinds:
//   - TrueNode: sentinel always-true filter (empty spec)
//   - BoolNode: boolean property comparison
//   - StringNode: string property match (contains/equals)
//   - SetNode: tag-set membership (any/all/none)
//   - DateRangeNode: bounded date comparison
//   - CombinedNode: AND/OR over an ordered child list
//
// Trees are built once per request and never mutated. Nodes hold no
// back-references, so cycles are impossible by construction.
//
// Arbitrary boolean composition is deliberately limited: BuildAST only
// produces leaves under a single implicit AND. NOT, and OR across
// different fields, are not expressible through FilterSpec (the sole
// internal OR is the search term's name-or-note expansion).
type Node interface {
	filterNode() // Marker method - seals interface to this package
}

// TrueNode is the sentinel always-true filter. An empty FilterSpec
// builds to a TrueNode rather than nil, so downstream code never
// special-cases "no filter".
type TrueNode struct{}

func (TrueNode) filterNode() {}

// BoolNode matches a boolean task property against a literal.
type BoolNode struct {
	Property Property
	Value    bool
}

func (BoolNode) filterNode() {}

// StringNode matches a string task property against a literal value.
// Contains matches are case-insensitive; the value is lower-cased here,
// once, so emission never re-folds it.
type StringNode struct {
	Property Property
	Value    string
	Mode     MatchMode
}

func (StringNode) filterNode() {}

// SetNode matches the task's tag set against a list of tag names.
// Names keep the order given in the spec; deterministic key ordering
// for caching is handled by canonical serialization, not here.
type SetNode struct {
	Property Property
	Values   []string
	Op       SetOp
}

func (SetNode) filterNode() {}

// DateRangeNode matches a date task property strictly between bounds.
// A nil bound is open.
type DateRangeNode struct {
	Property Property
	After    *time.Time
	Before   *time.Time
}

func (DateRangeNode) filterNode() {}

// CombinedNode joins child nodes with a logical operator. Children keep
// their insertion order; emission joins them in that order.
type CombinedNode struct {
	Op       CombineOp
	Children []Node
}

func (CombinedNode) filterNode() {}

// BuildAST converts a FilterSpec into its filter tree.
//
// Pure function, no side effects, no I/O. Each populated spec field
// yields exactly one leaf; multiple leaves are combined under an
// implicit top-level AND. Leaves are emitted in spec declaration order,
// so structurally equal specs always build identical trees.
//
// An empty spec yields TrueNode. A structurally invalid spec yields a
// *ValidationError and no tree.
func BuildAST(spec FilterSpec) (Node, error) {
	if err := Validate(spec); err != nil {
		return nil, err
	}
	if spec.IsEmpty() {
		return TrueNode{}, nil
	}

	var leaves []Node

	if spec.Completed != nil {
		leaves = append(leaves, BoolNode{Property: PropCompleted, Value: *spec.Completed})
	}
	if spec.Flagged != nil {
		leaves = append(leaves, BoolNode{Property: PropFlagged, Value: *spec.Flagged})
	}
	if spec.Name != nil {
		leaves = append(leaves, stringLeaf(PropName, *spec.Name))
	}
	if spec.Note != nil {
		leaves = append(leaves, stringLeaf(PropNote, *spec.Note))
	}
	if spec.Project != nil {
		leaves = append(leaves, stringLeaf(PropProject, *spec.Project))
	}
	if spec.Tags != nil {
		values := make([]string, len(spec.Tags.Tags))
		copy(values, spec.Tags.Tags)
		leaves = append(leaves, SetNode{Property: PropTags, Values: values, Op: spec.Tags.Op})
	}
	if spec.DueDate != nil {
		leaves = append(leaves, DateRangeNode{Property: PropDueDate, After: spec.DueDate.After, Before: spec.DueDate.Before})
	}
	if spec.DeferDate != nil {
		leaves = append(leaves, DateRangeNode{Property: PropDeferDate, After: spec.DeferDate.After, Before: spec.DeferDate.Before})
	}
	if spec.Search != "" {
		// Free text matches name or note. This is the only OR the
		// builder ever produces, and it stays within one spec field.
		term := spec.Search
		leaves = append(leaves, CombinedNode{
			Op: CombineOr,
			Children: []Node{
				StringNode{Property: PropName, Value: strings.ToLower(term), Mode: MatchContains},
				StringNode{Property: PropNote, Value: strings.ToLower(term), Mode: MatchContains},
			},
		})
	}

	if len(leaves) == 1 {
		return leaves[0], nil
	}
	return CombinedNode{Op: CombineAnd, Children: leaves}, nil
}

func stringLeaf(prop Property, m StringMatch) StringNode {
	value := m.Value
	if m.Mode == MatchContains {
		value = strings.ToLower(value)
	}
	return StringNode{Property: prop, Value: value, Mode: m.Mode}
}
