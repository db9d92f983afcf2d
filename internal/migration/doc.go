// Package migration moves services from a source to a target configuration.
//
// An Orchestrator runs each migration task in its own goroutine using one of
// four strategies:
//
//   - Immediate switches every service in order and records failures.
//   - Gradual switches fixed-size batches with a pause in between.
//   - Canary switches the canary services first and rolls them back if one
//     of them fails.
//   - BlueGreen optionally validates the target before switching.
//
// Tasks are kept in a TaskRegistry until they are cleaned up. Completed and
// failed tasks can be rolled back to their source configuration.
//
// A Planner produces an advisory Plan for a migration without executing it:
// an estimated duration, compatibility results, risks and recommendations.
package migration
