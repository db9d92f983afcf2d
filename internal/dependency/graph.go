// internal/dependency/graph.go
package dependency

import (
	"drover/pkg/logging"
)

// Provider supplies the services known to the system and, for each of them,
// the names of the services it depends on. It is the pluggable inference
// collaborator: the graph never hard-codes which service depends on which.
type Provider interface {
	// ServiceNames returns every known service name, in a stable order.
	ServiceNames() []string
	// DependenciesOf returns the dependencies of name. Unknown names return nil.
	DependenciesOf(name string) []string
}

// Graph maps every service to the ordered list of services it depends on.
//
// A Graph is built fresh for every analysis and is not safe for concurrent
// mutation. Dependency names that are not themselves services of the graph
// are kept as declared but treated as look-up misses by every query.
type Graph struct {
	order []string
	deps  map[string][]string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{deps: make(map[string][]string)}
}

// Build asks the provider for every known service and its dependencies.
func Build(p Provider) *Graph {
	return BuildFor(p, p.ServiceNames())
}

// BuildFor builds a graph restricted to names. Providers returning nothing for
// a name leave it without dependencies.
func BuildFor(p Provider, names []string) *Graph {
	g := New()
	for _, name := range names {
		g.AddService(name, p.DependenciesOf(name)...)
	}

	for _, name := range g.order {
		for _, dep := range g.deps[name] {
			if !g.Has(dep) {
				logging.Debug("Analyzer", "Ignoring unknown dependency %s of %s", dep, name)
			}
		}
	}
	return g
}

// AddService adds (or replaces) a service with its dependency list. Empty
// and repeated dependency names are dropped.
func (g *Graph) AddService(name string, dependsOn ...string) {
	if g.deps == nil {
		g.deps = make(map[string][]string)
	}
	if _, exists := g.deps[name]; !exists {
		g.order = append(g.order, name)
	}

	seen := make(map[string]bool, len(dependsOn))
	deps := make([]string, 0, len(dependsOn))
	for _, dep := range dependsOn {
		if dep == "" || seen[dep] {
			continue
		}
		seen[dep] = true
		deps = append(deps, dep)
	}
	g.deps[name] = deps
}

// Has reports whether name is a service of the graph.
func (g *Graph) Has(name string) bool {
	_, ok := g.deps[name]
	return ok
}

// Len returns the number of services.
func (g *Graph) Len() int {
	return len(g.order)
}

// Services returns the service names in insertion order.
func (g *Graph) Services() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Dependencies returns the known direct dependencies of name.
func (g *Graph) Dependencies(name string) []string {
	declared, ok := g.deps[name]
	if !ok {
		return nil
	}
	res := make([]string, 0, len(declared))
	for _, dep := range declared {
		if g.Has(dep) {
			res = append(res, dep)
		}
	}
	return res
}

// Dependents returns all services that have a direct dependency on name, in
// service order. The reverse index is computed on every call.
func (g *Graph) Dependents(name string) []string {
	if !g.Has(name) {
		return nil
	}
	var res []string
	for _, svc := range g.order {
		for _, dep := range g.deps[svc] {
			if dep == name {
				res = append(res, svc)
				break
			}
		}
	}
	return res
}

// FanOut is the number of known direct dependencies of name.
func (g *Graph) FanOut(name string) int {
	return len(g.Dependencies(name))
}

// FanIn is the number of services that declare name as a dependency.
func (g *Graph) FanIn(name string) int {
	return len(g.Dependents(name))
}

// EdgeCount returns the number of dependency edges between known services.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, svc := range g.order {
		n += g.FanOut(svc)
	}
	return n
}
