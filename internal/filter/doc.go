// Package filter defines the typed task-filter specification (FilterSpec)
// and its internal tree representation (Node).
//
// FilterSpec is the user-facing query description: boolean flags, string
// matches, tag-set membership, date ranges, and a free-text search term.
// It carries no knowledge of the scripting dialects that eventually
// evaluate it.
//
// BuildAST converts a FilterSpec into an immutable Node tree. The tree is
// the only structure downstream code generation ever walks; no component
// after this package looks at FilterSpec again.
package filter
