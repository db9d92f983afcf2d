package dependency

import (
	"context"
	"time"

	"drover/internal/api"
	"drover/pkg/logging"
)

// statusSource is implemented by providers that also expose service metadata.
type statusSource interface {
	ServiceInfo(name string) (api.ServiceInfo, bool)
}

// Analyzer answers structural questions about the services of a provider.
// It keeps no graph between calls: every operation rebuilds the graph from
// the provider, so analyses never observe stale state.
type Analyzer struct {
	provider    Provider
	rootService string
}

// NewAnalyzer creates an analyzer over provider. An empty rootService selects
// DefaultRootService.
func NewAnalyzer(provider Provider, rootService string) *Analyzer {
	if rootService == "" {
		rootService = DefaultRootService
	}
	return &Analyzer{
		provider:    provider,
		rootService: rootService,
	}
}

// RootService returns the designated root authentication service.
func (a *Analyzer) RootService() string {
	return a.rootService
}

// Graph builds a fresh dependency graph from the provider.
func (a *Analyzer) Graph() *Graph {
	return Build(a.provider)
}

// Analyze builds the graph and produces the full analysis report including
// recommendations.
func (a *Analyzer) Analyze(ctx context.Context) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	g := a.Graph()

	var status func(string) string
	if src, ok := a.provider.(statusSource); ok {
		status = func(name string) string {
			info, found := src.ServiceInfo(name)
			if !found {
				return ""
			}
			return info.Status
		}
	}

	report := NewReport(g, a.rootService, status)
	logging.Debug("Analyzer", "Analyzed %d services and %d dependencies in %s (cycles: %d, critical: %d, isolated: %d)",
		report.TotalServices, report.TotalDependencies, time.Since(start),
		len(report.CircularDependencies), len(report.CriticalPaths), len(report.IsolatedServices))
	return report, nil
}

// AnalyzeImpact computes the migration impact of a single service. Unknown
// services are reported as api.NotFoundError.
func (a *Analyzer) AnalyzeImpact(ctx context.Context, service string) (*ImpactAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g := a.Graph()
	if !g.Has(service) {
		return nil, api.NewServiceNotFoundError(service)
	}

	impact := Impact(g, service, a.rootService)
	logging.Debug("Analyzer", "Impact of %s: risk %s, %d dependents, scope %d",
		service, impact.RiskLevel, len(impact.Dependents), len(impact.ImpactScope))
	return impact, nil
}

// AnalyzeImpacts computes the impact of several services against one graph.
// Unknown services are skipped.
func (a *Analyzer) AnalyzeImpacts(ctx context.Context, services []string) (map[string]*ImpactAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g := a.Graph()
	out := make(map[string]*ImpactAnalysis, len(services))
	for _, svc := range services {
		if !g.Has(svc) {
			continue
		}
		out[svc] = Impact(g, svc, a.rootService)
	}
	return out, nil
}
