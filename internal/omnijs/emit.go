package omnijs

import (
	"fmt"
	"strings"

	"github.com/kip-d/omnifocus-mcp-sub005/internal/filter"
)

// Emit converts a filter tree into one omniJS boolean expression over
// the task variable.
//
// Emission is recursive and deterministic: equal trees produce
// byte-identical text. Each leaf kind has one fixed template; combined
// nodes join their children with the dialect's logical operator and
// parenthesize to fix precedence.
func Emit(node filter.Node) (string, error) {
	if node == nil {
		return "", fmt.Errorf("cannot emit nil filter node")
	}

	switch n := node.(type) {
	case filter.TrueNode:
		return "true", nil
	case filter.BoolNode:
		return emitBool(n)
	case filter.StringNode:
		return emitString(n)
	case filter.SetNode:
		return emitSet(n)
	case filter.DateRangeNode:
		return emitDateRange(n)
	case filter.CombinedNode:
		return emitCombined(n)
	default:
		return "", fmt.Errorf("unsupported filter node type: %T", node)
	}
}

func emitBool(n filter.BoolNode) (string, error) {
	expr, err := accessor(n.Property)
	if err != nil {
		return "", err
	}
	if n.Value {
		return expr + " === true", nil
	}
	return expr + " === false", nil
}

func emitString(n filter.StringNode) (string, error) {
	expr, err := accessor(n.Property)
	if err != nil {
		return "", err
	}
	lit := EncodeString(n.Value)
	switch n.Mode {
	case filter.MatchEquals:
		return fmt.Sprintf("%s === %s", expr, lit), nil
	case filter.MatchContains:
		// Null guard first: name/note/project may be null, and the
		// contains value was lower-cased when the tree was built.
		return fmt.Sprintf("(%s !== null && String(%s).toLowerCase().indexOf(%s) !== -1)",
			expr, expr, lit), nil
	default:
		return "", fmt.Errorf("unsupported match mode %q", n.Mode)
	}
}

func emitSet(n filter.SetNode) (string, error) {
	expr, err := accessor(n.Property)
	if err != nil {
		return "", err
	}
	names := EncodeStringList(n.Values)
	switch n.Op {
	case filter.SetAny:
		return fmt.Sprintf("%s.some(function (tag) { return %s.indexOf(tag.name) !== -1; })",
			expr, names), nil
	case filter.SetNone:
		return fmt.Sprintf("!%s.some(function (tag) { return %s.indexOf(tag.name) !== -1; })",
			expr, names), nil
	case filter.SetAll:
		return fmt.Sprintf("%s.every(function (name) { return %s.some(function (tag) { return tag.name === name; }); })",
			names, expr), nil
	default:
		return "", fmt.Errorf("unsupported set operator %q", n.Op)
	}
}

func emitDateRange(n filter.DateRangeNode) (string, error) {
	expr, err := accessor(n.Property)
	if err != nil {
		return "", err
	}
	if n.After == nil && n.Before == nil {
		return "", fmt.Errorf("date range on %q has no bounds", n.Property)
	}

	// Strict bounds: a date equal to a bound does not match.
	parts := []string{expr + " !== null"}
	if n.After != nil {
		parts = append(parts, fmt.Sprintf("%s > %s", expr, EncodeDate(*n.After)))
	}
	if n.Before != nil {
		parts = append(parts, fmt.Sprintf("%s < %s", expr, EncodeDate(*n.Before)))
	}
	return "(" + strings.Join(parts, " && ") + ")", nil
}

func emitCombined(n filter.CombinedNode) (string, error) {
	if len(n.Children) == 0 {
		// Vacuous truth for AND, vacuous falsity for OR.
		if n.Op == filter.CombineOr {
			return "false", nil
		}
		return "true", nil
	}

	var op string
	switch n.Op {
	case filter.CombineAnd:
		op = " && "
	case filter.CombineOr:
		op = " || "
	default:
		return "", fmt.Errorf("unsupported combine operator %q", n.Op)
	}

	parts := make([]string, len(n.Children))
	for i, child := range n.Children {
		emitted, err := Emit(child)
		if err != nil {
			return "", err
		}
		parts[i] = emitted
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, op) + ")", nil
}
