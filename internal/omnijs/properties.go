package omnijs

import (
	"fmt"

	"github.com/kip-d/omnifocus-mcp-sub005/internal/filter"
)

// TaskVar is the iteration variable every emitted predicate reads from.
const TaskVar = "t"

// accessors is the fixed allow-list of task property expressions.
// Emission resolves every property reference through this table; the
// filter spec can never contribute a property name of its own.
var accessors = map[filter.Property]string{
	filter.PropCompleted: TaskVar + ".completed",
	filter.PropFlagged:   TaskVar + ".flagged",
	filter.PropName:      TaskVar + ".name",
	filter.PropNote:      TaskVar + ".note",
	filter.PropProject:   "(" + TaskVar + ".containingProject ? " + TaskVar + ".containingProject.name : null)",
	filter.PropTags:      TaskVar + ".tags",
	filter.PropDueDate:   TaskVar + ".dueDate",
	filter.PropDeferDate: TaskVar + ".deferDate",
}

// accessor resolves a property to its omniJS expression.
func accessor(p filter.Property) (string, error) {
	expr, ok := accessors[p]
	if !ok {
		return "", fmt.Errorf("property %q is not in the omniJS accessor allow-list", p)
	}
	return expr, nil
}
