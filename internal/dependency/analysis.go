package dependency

import "sort"

// DefaultRootService is the designated root authentication service. Every
// other service is assumed to reach it eventually, so it is always treated as
// a Core critical path and a Critical migration risk.
const DefaultRootService = "authentication-service"

// Levels computes the dependency level of every service: 1 for a service
// without dependencies, otherwise 1 + the highest level among its
// dependencies.
//
// Levels are memoized. A service reached again while it is still being
// visited (that is, through a cycle) contributes level 0 instead of recursing,
// which guarantees termination. For cyclic graphs the resulting numbers depend
// on traversal order and must not be read as a topological depth.
func Levels(g *Graph) map[string]int {
	levels := make(map[string]int, g.Len())
	visiting := make(map[string]bool)

	var visit func(name string) int
	visit = func(name string) int {
		if level, ok := levels[name]; ok {
			return level
		}
		if visiting[name] {
			return 0
		}
		visiting[name] = true

		highest := 0
		for _, dep := range g.Dependencies(name) {
			if level := visit(dep); level > highest {
				highest = level
			}
		}

		delete(visiting, name)
		levels[name] = highest + 1
		return highest + 1
	}

	for _, name := range g.Services() {
		visit(name)
	}
	return levels
}

// CircularDependency is one cycle found in the graph. Services lists the
// cycle in traversal order without repeating the starting service at the end.
type CircularDependency struct {
	Services []string `json:"services" yaml:"services"`
	Severity Severity `json:"severity" yaml:"severity"`
}

// cycleSeverity grades a cycle by length: short cycles are the tightest
// coupling and the hardest to migrate around.
func cycleSeverity(length int) Severity {
	switch {
	case length <= 2:
		return SeverityHigh
	case length <= 4:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// DetectCycles runs a depth-first search over the graph and reports every
// back edge as a cycle. Each service is explored once, so one set of edges is
// reported once, but the rotation a cycle is reported in depends on where the
// search entered it.
func DetectCycles(g *Graph) []CircularDependency {
	visited := make(map[string]bool, g.Len())
	onStack := make(map[string]bool)
	var path []string
	var cycles []CircularDependency

	var dfs func(name string)
	dfs = func(name string) {
		visited[name] = true
		onStack[name] = true
		path = append(path, name)

		for _, dep := range g.Dependencies(name) {
			if !visited[dep] {
				dfs(dep)
				continue
			}
			if onStack[dep] {
				start := indexOf(path, dep)
				cycle := make([]string, len(path)-start)
				copy(cycle, path[start:])
				cycles = append(cycles, CircularDependency{
					Services: cycle,
					Severity: cycleSeverity(len(cycle)),
				})
			}
		}

		path = path[:len(path)-1]
		onStack[name] = false
	}

	for _, name := range g.Services() {
		if !visited[name] {
			dfs(name)
		}
	}
	return cycles
}

func indexOf(items []string, target string) int {
	for i, item := range items {
		if item == target {
			return i
		}
	}
	return -1
}

// PathType classifies a critical service.
type PathType string

const (
	// PathCore is the designated root authentication service.
	PathCore PathType = "core"
	// PathHub is a service with five or more dependents.
	PathHub PathType = "hub"
	// PathBridge is any other service with at least two dependents.
	PathBridge PathType = "bridge"
)

// hubThreshold is the fan-in at which a critical service becomes a hub.
const hubThreshold = 5

// CriticalPath is a service whose migration affects several dependents.
type CriticalPath struct {
	Service     string   `json:"service" yaml:"service"`
	Dependents  []string `json:"dependents" yaml:"dependents"`
	ImpactScore int      `json:"impactScore" yaml:"impactScore"`
	PathType    PathType `json:"pathType" yaml:"pathType"`
}

// CriticalPaths returns every service with a fan-in of at least two, sorted by
// impact score (the fan-in) in descending order. Ties keep service order.
func CriticalPaths(g *Graph, rootService string) []CriticalPath {
	counts := make(map[string]int)
	dependents := make(map[string][]string)
	for _, svc := range g.Services() {
		for _, dep := range g.Dependencies(svc) {
			counts[dep]++
			dependents[dep] = append(dependents[dep], svc)
		}
	}

	var paths []CriticalPath
	for _, svc := range g.Services() {
		count := counts[svc]
		if count < 2 {
			continue
		}
		pathType := PathBridge
		switch {
		case svc == rootService:
			pathType = PathCore
		case count >= hubThreshold:
			pathType = PathHub
		}
		paths = append(paths, CriticalPath{
			Service:     svc,
			Dependents:  dependents[svc],
			ImpactScore: count,
			PathType:    pathType,
		})
	}

	sort.SliceStable(paths, func(i, j int) bool {
		return paths[i].ImpactScore > paths[j].ImpactScore
	})
	return paths
}

// IsolatedServices returns the services that neither declare dependencies nor
// are depended upon.
func IsolatedServices(g *Graph) []string {
	referenced := make(map[string]bool)
	for _, svc := range g.Services() {
		for _, dep := range g.Dependencies(svc) {
			referenced[dep] = true
		}
	}

	var isolated []string
	for _, svc := range g.Services() {
		if g.FanOut(svc) == 0 && !referenced[svc] {
			isolated = append(isolated, svc)
		}
	}
	return isolated
}
