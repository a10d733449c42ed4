// Package script assembles complete, self-contained automation scripts
// around emitted omniJS predicates.
//
// Two incompatible execution contexts are involved. The outer dialect is
// JXA (JavaScript for Automation): it can only talk to OmniFocus through
// method calls on the application object, and its single way into the
// fast bulk-iteration context is the opaque evaluateJavascript call,
// which takes source text and returns a string. The inner dialect is
// omniJS, where flattenedTasks and direct property access are available.
//
// The assembler therefore works as a strict two-stage pipeline: it first
// builds the full inner script body (iterate, filter, project, sort,
// limit, serialize), then embeds that body in the outer wrapper as a
// single encoded string literal. The inner script is fully self-contained
// and shares no state with the outer one; the only thing crossing the
// bridge is a JSON string.
package script
