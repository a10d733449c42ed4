// Package omnijs emits omniJS predicate expressions from filter trees.
//
// omniJS is the fast bulk-iteration dialect inside OmniFocus: scripts in
// it can walk flattenedTasks and read task properties directly. Emitted
// predicates are single JavaScript expressions over a task variable "t",
// suitable for embedding in a larger omniJS script body.
//
// Every hole in every expression template is filled either from a closed
// enum (property accessors, operators) or through the literal encoders in
// this package. User-supplied text can only ever become a string or date
// literal; it can never alter the emitted control structure.
package omnijs
