// Package dependency builds and analyzes the dependency graph of the services
// drover migrates.
//
// The graph is rebuilt from a Provider on every analysis; nothing is cached
// between calls. All analysis functions are pure and need no locking.
//
// # Core Concepts
//
// Graph: service name → ordered list of the services it depends on. The
// reverse relation (dependents) is computed on demand.
//
// Provider: the pluggable collaborator that lists the known services and
// infers the dependencies of each one.
//
// # Operations
//
//   - Levels: 1 + the highest level of a service's dependencies
//   - DetectCycles: depth-first search reporting every back edge as a cycle
//   - CriticalPaths: services with two or more dependents, by fan-in
//   - IsolatedServices: services with neither dependencies nor dependents
//   - Recommend: prioritized recommendations derived from a Report
//   - Impact: transitive impact scope, risk and strategy for one service
//
// # Usage Example
//
//	g := dependency.New()
//	g.AddService("authentication-service")
//	g.AddService("billing-service", "authentication-service")
//	g.AddService("orders-service", "authentication-service", "billing-service")
//
//	report := dependency.NewReport(g, dependency.DefaultRootService, nil)
//	impact := dependency.Impact(g, "billing-service", dependency.DefaultRootService)
//	// impact.ImpactScope == ["orders-service"]
//
// # Cycles
//
// Cycles are reported rather than rejected. Level computation stays
// terminating on cyclic graphs but its numbers are then a heuristic, and the
// rotation a cycle is reported in depends on traversal order.
package dependency
