// Package harness provides conformance testing for the query pipeline.
//
// A scenario pairs a filter document with a fixture task dataset and
// the IDs the filter should match. The harness runs the same document
// through two independent paths and requires them to agree:
//
//   - a reference evaluator applying the filter semantics directly to
//     the fixture tasks in Go, and
//   - the full pipeline (validate, build, emit, assemble, execute)
//     against a scripted interpreter fed the reference answer.
//
// It also snapshots the emitted predicate per scenario with goldie, so
// an accidental template change shows up as a golden diff naming the
// scenario rather than as a behavioral surprise on a live database.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: due_window
//	description: "Due-date range keeps only tasks strictly inside"
//	document:
//	  filter:
//	    dueDate: { after: "2026-01-10T00:00:00Z", before: "2026-01-20T00:00:00Z" }
//	  fields: [id, name]
//	tasks:
//	  - id: t1
//	    name: "Write report"
//	    dueDate: 2026-01-12T09:00:00Z
//	expect:
//	  ids: [t1]
//
// Fixture tasks omit unset dates; expectations list IDs in the order
// the pipeline returns them.
package harness
