package script

import (
	"fmt"
	"strings"
)

// SortKey identifies the primary sort property of a query.
type SortKey string

const (
	SortByName      SortKey = "name"
	SortByDueDate   SortKey = "dueDate"
	SortByDeferDate SortKey = "deferDate"
	SortByFlagged   SortKey = "flagged"
)

// SortSpec describes the requested result ordering.
type SortSpec struct {
	Key        SortKey
	Descending bool
}

// sortKeyExprs maps sort keys to omniJS expressions extracting a
// comparable value from a task variable. Dates compare as epoch
// milliseconds, flags as 0/1; name compares as a plain string.
var sortKeyExprs = map[SortKey]string{
	SortByName:      "%s.name",
	SortByDueDate:   "(%s.dueDate ? %s.dueDate.getTime() : null)",
	SortByDeferDate: "(%s.deferDate ? %s.deferDate.getTime() : null)",
	SortByFlagged:   "(%s.flagged ? 1 : 0)",
}

func sortKeyExpr(key SortKey, taskVar string) (string, error) {
	tmpl, ok := sortKeyExprs[key]
	if !ok {
		return "", fmt.Errorf("unknown sort key %q", key)
	}
	args := make([]any, strings.Count(tmpl, "%s"))
	for i := range args {
		args[i] = taskVar
	}
	return fmt.Sprintf(tmpl, args...), nil
}

// emitSortBlock writes the comparator over the collected match array.
//
// The comparator is a stable multi-key ordering: the requested key
// first (nulls always last, regardless of direction), then the task
// identifier ascending as a deterministic tiebreak, so repeated
// identical queries return identical ordering.
func emitSortBlock(b *strings.Builder, sort SortSpec) error {
	aExpr, err := sortKeyExpr(sort.Key, "a")
	if err != nil {
		return err
	}
	bExpr, err := sortKeyExpr(sort.Key, "b")
	if err != nil {
		return err
	}

	b.WriteString("    matches.sort(function (a, b) {\n")
	b.WriteString("      var av = " + aExpr + ";\n")
	b.WriteString("      var bv = " + bExpr + ";\n")
	b.WriteString("      var cmp = 0;\n")
	b.WriteString("      if (av === null && bv !== null) { cmp = 1; }\n")
	b.WriteString("      else if (av !== null && bv === null) { cmp = -1; }\n")
	b.WriteString("      else if (av !== null && bv !== null) {\n")
	b.WriteString("        if (av < bv) { cmp = -1; } else if (av > bv) { cmp = 1; }\n")
	b.WriteString("      }\n")
	if sort.Descending {
		b.WriteString("      if (av !== null && bv !== null) { cmp = -cmp; }\n")
	}
	b.WriteString("      if (cmp !== 0) { return cmp; }\n")
	b.WriteString("      var aid = a.id.primaryKey;\n")
	b.WriteString("      var bid = b.id.primaryKey;\n")
	b.WriteString("      if (aid < bid) { return -1; }\n")
	b.WriteString("      if (aid > bid) { return 1; }\n")
	b.WriteString("      return 0;\n")
	b.WriteString("    });\n")
	return nil
}
