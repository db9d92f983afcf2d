package dependency

import (
	"fmt"
	"strings"
)

// Category groups recommendations by the kind of problem they address.
type Category string

const (
	CategoryDependencyIssue          Category = "dependency_issue"
	CategoryArchitectureOptimization Category = "architecture_optimization"
	CategoryServiceUtilization       Category = "service_utilization"
)

// Recommendation is a prioritized, human-actionable suggestion derived from
// an analysis report.
type Recommendation struct {
	Category         Category `json:"category" yaml:"category"`
	Priority         Severity `json:"priority" yaml:"priority"`
	Title            string   `json:"title" yaml:"title"`
	Description      string   `json:"description" yaml:"description"`
	Actions          []string `json:"actions" yaml:"actions"`
	AffectedServices []string `json:"affectedServices" yaml:"affectedServices"`
}

const (
	// deepChainFanOut is the fan-out above which a service is reported as the
	// head of a deep dependency chain. Services at the threshold are listed.
	deepChainFanOut = 3
	// couplingAverage is the graph-wide average fan-out above which coupling
	// should be reduced.
	couplingAverage = 2.5
	// couplingFanOut is the fan-out above which a service is listed in the
	// coupling recommendation.
	couplingFanOut = 2
)

// Recommend evaluates every rule against the report and returns the
// recommendations in rule order. Rules are independent: several may fire and
// overlapping service lists are not de-duplicated.
func Recommend(r *Report) []Recommendation {
	var recs []Recommendation

	if len(r.CircularDependencies) > 0 {
		services := cycleMembers(r.CircularDependencies)
		recs = append(recs, Recommendation{
			Category: CategoryDependencyIssue,
			Priority: SeverityCritical,
			Title:    "Resolve circular dependencies",
			Description: fmt.Sprintf("%d circular dependencies involve %d services; cyclic services cannot be migrated in a safe order",
				len(r.CircularDependencies), len(services)),
			Actions: []string{
				"Introduce an interface or event boundary to break each cycle",
				"Move shared functionality into a separate service both sides depend on",
				"Migrate the services of a cycle together using a blue-green strategy",
			},
			AffectedServices: services,
		})
	}

	if r.MaxFanOut > deepChainFanOut {
		services := r.servicesWhere(func(s ServiceSummary) bool { return s.FanOut >= deepChainFanOut })
		recs = append(recs, Recommendation{
			Category: CategoryArchitectureOptimization,
			Priority: SeverityHigh,
			Title:    "Shorten deep dependency chains",
			Description: fmt.Sprintf("A service depends on %d others directly; %d services have a fan-out of %d or more",
				r.MaxFanOut, len(services), deepChainFanOut),
			Actions: []string{
				"Split services with many direct dependencies along their responsibilities",
				"Aggregate related downstream calls behind a facade service",
			},
			AffectedServices: services,
		})
	}

	if len(r.IsolatedServices) > 0 {
		recs = append(recs, Recommendation{
			Category: CategoryServiceUtilization,
			Priority: SeverityMedium,
			Title:    "Review isolated services",
			Description: fmt.Sprintf("%d services have no dependencies and no dependents: %s",
				len(r.IsolatedServices), strings.Join(r.IsolatedServices, ", ")),
			Actions: []string{
				"Confirm the services are still in use",
				"Decommission or merge services that are no longer needed",
			},
			AffectedServices: append([]string(nil), r.IsolatedServices...),
		})
	}

	if r.AverageFanOut > couplingAverage {
		services := r.servicesWhere(func(s ServiceSummary) bool { return s.FanOut > couplingFanOut })
		recs = append(recs, Recommendation{
			Category:    CategoryArchitectureOptimization,
			Priority:    SeverityMedium,
			Title:       "Reduce coupling",
			Description: fmt.Sprintf("Average fan-out is %.2f, above the %.1f guideline", r.AverageFanOut, couplingAverage),
			Actions: []string{
				"Replace synchronous calls with asynchronous events where possible",
				"Cache data from stable dependencies instead of calling them per request",
			},
			AffectedServices: services,
		})
	}

	return recs
}

// cycleMembers returns every distinct service of the cycles, in order of
// first appearance.
func cycleMembers(cycles []CircularDependency) []string {
	seen := make(map[string]bool)
	var members []string
	for _, cycle := range cycles {
		for _, svc := range cycle.Services {
			if !seen[svc] {
				seen[svc] = true
				members = append(members, svc)
			}
		}
	}
	return members
}
