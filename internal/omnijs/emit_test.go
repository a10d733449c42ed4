package omnijs

import (
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kip-d/omnifocus-mcp-sub005/internal/filter"
)

func boolPtr(b bool) *bool { return &b }

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestEmit_TrueNode(t *testing.T) {
	out, err := Emit(filter.TrueNode{})
	require.NoError(t, err)
	assert.Equal(t, "true", out)
}

func TestEmit_BoolNode(t *testing.T) {
	out, err := Emit(filter.BoolNode{Property: filter.PropCompleted, Value: true})
	require.NoError(t, err)
	assert.Equal(t, "t.completed === true", out)

	out, err = Emit(filter.BoolNode{Property: filter.PropFlagged, Value: false})
	require.NoError(t, err)
	assert.Equal(t, "t.flagged === false", out)
}

func TestEmit_StringNode(t *testing.T) {
	out, err := Emit(filter.StringNode{Property: filter.PropName, Value: "Exact Title", Mode: filter.MatchEquals})
	require.NoError(t, err)
	assert.Equal(t, `t.name === "Exact Title"`, out)

	out, err = Emit(filter.StringNode{Property: filter.PropNote, Value: "receipt", Mode: filter.MatchContains})
	require.NoError(t, err)
	assert.Equal(t, `(t.note !== null && String(t.note).toLowerCase().indexOf("receipt") !== -1)`, out)
}

func TestEmit_SetNode(t *testing.T) {
	node := filter.SetNode{Property: filter.PropTags, Values: []string{"errand", "home"}, Op: filter.SetAny}
	out, err := Emit(node)
	require.NoError(t, err)
	assert.Equal(t, `t.tags.some(function (tag) { return ["errand", "home"].indexOf(tag.name) !== -1; })`, out)

	node.Op = filter.SetNone
	out, err = Emit(node)
	require.NoError(t, err)
	assert.Equal(t, `!t.tags.some(function (tag) { return ["errand", "home"].indexOf(tag.name) !== -1; })`, out)

	node.Op = filter.SetAll
	out, err = Emit(node)
	require.NoError(t, err)
	assert.Equal(t, `["errand", "home"].every(function (name) { return t.tags.some(function (tag) { return tag.name === name; }); })`, out)
}

func TestEmit_DateRangeNode(t *testing.T) {
	node := filter.DateRangeNode{
		Property: filter.PropDueDate,
		After:    datePtr(2025, time.November, 9),
		Before:   datePtr(2025, time.November, 16),
	}
	out, err := Emit(node)
	require.NoError(t, err)
	assert.Equal(t,
		`(t.dueDate !== null && t.dueDate > new Date("2025-11-09T00:00:00.000Z") && t.dueDate < new Date("2025-11-16T00:00:00.000Z"))`,
		out)

	// Open bound on either side.
	node.Before = nil
	out, err = Emit(node)
	require.NoError(t, err)
	assert.Equal(t, `(t.dueDate !== null && t.dueDate > new Date("2025-11-09T00:00:00.000Z"))`, out)
}

func TestEmit_CombinedParenthesizes(t *testing.T) {
	node := filter.CombinedNode{
		Op: filter.CombineAnd,
		Children: []filter.Node{
			filter.BoolNode{Property: filter.PropCompleted, Value: false},
			filter.CombinedNode{
				Op: filter.CombineOr,
				Children: []filter.Node{
					filter.BoolNode{Property: filter.PropFlagged, Value: true},
					filter.StringNode{Property: filter.PropName, Value: "urgent", Mode: filter.MatchContains},
				},
			},
		},
	}

	out, err := Emit(node)
	require.NoError(t, err)
	assert.Equal(t,
		`(t.completed === false && (t.flagged === true || (t.name !== null && String(t.name).toLowerCase().indexOf("urgent") !== -1)))`,
		out)
}

func TestEmit_EmptyCombined(t *testing.T) {
	out, err := Emit(filter.CombinedNode{Op: filter.CombineAnd})
	require.NoError(t, err)
	assert.Equal(t, "true", out)

	out, err = Emit(filter.CombinedNode{Op: filter.CombineOr})
	require.NoError(t, err)
	assert.Equal(t, "false", out)
}

func TestEmit_NilNode(t *testing.T) {
	_, err := Emit(nil)
	require.Error(t, err)
}

// Structurally equal specs must emit byte-identical predicates no
// matter how they were assembled.
func TestEmit_Idempotent(t *testing.T) {
	specA := filter.FilterSpec{}
	specA.Tags = &filter.TagFilter{Tags: []string{"errand"}, Op: filter.SetAny}
	specA.Completed = boolPtr(false)
	specA.Name = &filter.StringMatch{Value: "Report", Mode: filter.MatchContains}

	specB := filter.FilterSpec{
		Completed: boolPtr(false),
		Name:      &filter.StringMatch{Value: "Report", Mode: filter.MatchContains},
		Tags:      &filter.TagFilter{Tags: []string{"errand"}, Op: filter.SetAny},
	}

	emitted := func(spec filter.FilterSpec) string {
		node, err := filter.BuildAST(spec)
		require.NoError(t, err)
		out, err := Emit(node)
		require.NoError(t, err)
		return out
	}

	assert.Equal(t, emitted(specA), emitted(specB))
}

// No string value may alter emitted control structure; its only effect
// is on the literal comparison value.
func TestEmit_InjectionSafety(t *testing.T) {
	hostile := []string{
		`"); while (true) {} ("`,
		"line\nbreak",
		`back\slash`,
		"quote\"inside",
		"separator attack",
		"ctrl\x01char",
	}

	for _, value := range hostile {
		node := filter.StringNode{Property: filter.PropName, Value: value, Mode: filter.MatchEquals}
		out, err := Emit(node)
		require.NoError(t, err)

		// The expression is exactly accessor === literal; everything
		// hostile stays inside the one string literal.
		require.True(t, strings.HasPrefix(out, `t.name === "`), "unexpected shape: %s", out)
		require.True(t, strings.HasSuffix(out, `"`), "unexpected shape: %s", out)
		lit := strings.TrimPrefix(out, "t.name === ")
		assert.Equal(t, EncodeString(value), lit)
		assert.NotContains(t, lit[1:len(lit)-1], "\n")
		assert.NotContains(t, lit[1:len(lit)-1], " ")
	}
}

func TestEmit_CompositePredicateGolden(t *testing.T) {
	spec := filter.FilterSpec{
		Completed: boolPtr(false),
		Flagged:   boolPtr(true),
		Name:      &filter.StringMatch{Value: "Report", Mode: filter.MatchContains},
		Tags:      &filter.TagFilter{Tags: []string{"errand", "home"}, Op: filter.SetAny},
		DueDate: &filter.DateRange{
			After:  datePtr(2025, time.November, 9),
			Before: datePtr(2025, time.November, 16),
		},
	}

	node, err := filter.BuildAST(spec)
	require.NoError(t, err)
	out, err := Emit(node)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "composite_predicate", []byte(out))
}
