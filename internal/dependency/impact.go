package dependency

import "time"

// Recommended deployment strategies for a migration, by impact.
const (
	StrategyBlueGreen = "blue-green deployment"
	StrategyCanary    = "canary deployment"
	StrategyRolling   = "rolling update"
	StrategyStaged    = "staged deployment"
	StrategyStandard  = "standard deployment"
)

// ImpactAnalysis describes what migrating a single service touches.
type ImpactAnalysis struct {
	Service             string        `json:"service" yaml:"service"`
	DirectDependencies  []string      `json:"directDependencies" yaml:"directDependencies"`
	Dependents          []string      `json:"dependents" yaml:"dependents"`
	ImpactScope         []string      `json:"impactScope" yaml:"impactScope"`
	RiskLevel           Severity      `json:"riskLevel" yaml:"riskLevel"`
	EstimatedDowntime   time.Duration `json:"estimatedDowntime" yaml:"estimatedDowntime"`
	RecommendedStrategy string        `json:"recommendedStrategy" yaml:"recommendedStrategy"`
}

var baseDowntime = map[Severity]time.Duration{
	SeverityCritical: 300 * time.Second,
	SeverityHigh:     180 * time.Second,
	SeverityMedium:   60 * time.Second,
	SeverityLow:      30 * time.Second,
}

// Impact analyzes the migration impact of service on g. A service that is not
// part of the graph has no dependencies, no dependents and an empty scope.
func Impact(g *Graph, service, rootService string) *ImpactAnalysis {
	deps := g.Dependencies(service)
	dependents := g.Dependents(service)

	risk := impactRisk(service == rootService, len(deps)+len(dependents))

	return &ImpactAnalysis{
		Service:             service,
		DirectDependencies:  deps,
		Dependents:          dependents,
		ImpactScope:         impactScope(g, service),
		RiskLevel:           risk,
		EstimatedDowntime:   estimateDowntime(risk, len(dependents)),
		RecommendedStrategy: recommendStrategy(risk, len(dependents)),
	}
}

// impactScope walks "depends on me" edges breadth-first from service and
// returns every service reached, excluding service itself.
func impactScope(g *Graph, service string) []string {
	visited := map[string]bool{service: true}
	queue := []string{service}
	var scope []string

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, dependent := range g.Dependents(current) {
			if visited[dependent] {
				continue
			}
			visited[dependent] = true
			scope = append(scope, dependent)
			queue = append(queue, dependent)
		}
	}
	return scope
}

func impactRisk(isRoot bool, connections int) Severity {
	if isRoot {
		return SeverityCritical
	}
	switch {
	case connections == 0:
		return SeverityLow
	case connections <= 2:
		return SeverityMedium
	case connections <= 5:
		return SeverityHigh
	default:
		return SeverityCritical
	}
}

// estimateDowntime scales the base downtime of the risk level by 10% per
// dependent.
func estimateDowntime(risk Severity, dependents int) time.Duration {
	return baseDowntime[risk] * time.Duration(10+dependents) / 10
}

func recommendStrategy(risk Severity, dependents int) string {
	switch risk {
	case SeverityCritical:
		return StrategyBlueGreen
	case SeverityHigh:
		return StrategyCanary
	case SeverityMedium:
		if dependents <= 2 {
			return StrategyRolling
		}
		return StrategyStaged
	default:
		return StrategyStandard
	}
}
