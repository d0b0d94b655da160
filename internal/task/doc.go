// Package task holds the in-memory task store and its dependency checks.
//
// A [Store] owns every live [Task] together with a monotonic id allocator:
// ids are handed out in increasing order and never reissued, even after a
// task is deleted. [Store.Clear] is the only operation that rewinds the
// allocator.
//
// # Invariants
//
// After every successful call:
//   - every id listed in a task's dependencies resolves to a live task
//   - the dependency graph (edge A -> B means "A depends on B") is acyclic,
//     self-loops included
//   - ids are unique
//   - at most Capacity tasks were accepted through Add (bulk Replace and
//     Import are not capped)
//
// A call that fails leaves the store exactly as it was.
//
// # Errors
//
// Failures are reported with typed errors that callers inspect with
// errors.As: [ValidationError], [NotFoundError], [CapacityError] and
// [CircularDependencyError].
//
// # Status Values
//
//   - "open": created, not started
//   - "in_progress": being worked on
//   - "blocked": waiting on something
//   - "completed": done
//
// Any status may follow any other.
package task
