package dependency

import (
	"context"
	"fmt"
	"testing"
	"time"

	"drover/internal/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chainGraph() *Graph {
	return buildGraph(map[string][]string{
		"billing-service":   {"authentication-service"},
		"orders-service":    {"authentication-service", "billing-service"},
		"reporting-service": {"orders-service"},
		"analytics-service": {"reporting-service"},
	}, "authentication-service", "billing-service", "orders-service",
		"reporting-service", "analytics-service", "standalone-service")
}

func TestImpact(t *testing.T) {
	g := chainGraph()

	tests := []struct {
		service   string
		deps      []string
		dependent []string
		scope     []string
		risk      Severity
		downtime  time.Duration
		strategy  string
	}{
		{
			service:   "authentication-service",
			deps:      []string{},
			dependent: []string{"billing-service", "orders-service"},
			scope:     []string{"billing-service", "orders-service", "reporting-service", "analytics-service"},
			risk:      SeverityCritical,
			downtime:  360 * time.Second,
			strategy:  StrategyBlueGreen,
		},
		{
			service:   "billing-service",
			deps:      []string{"authentication-service"},
			dependent: []string{"orders-service"},
			scope:     []string{"orders-service", "reporting-service", "analytics-service"},
			risk:      SeverityMedium,
			downtime:  66 * time.Second,
			strategy:  StrategyRolling,
		},
		{
			service:   "orders-service",
			deps:      []string{"authentication-service", "billing-service"},
			dependent: []string{"reporting-service"},
			scope:     []string{"reporting-service", "analytics-service"},
			risk:      SeverityHigh,
			downtime:  198 * time.Second,
			strategy:  StrategyCanary,
		},
		{
			service:  "standalone-service",
			deps:     []string{},
			risk:     SeverityLow,
			downtime: 30 * time.Second,
			strategy: StrategyStandard,
		},
	}

	for _, tt := range tests {
		t.Run(tt.service, func(t *testing.T) {
			impact := Impact(g, tt.service, DefaultRootService)
			assert.Equal(t, tt.service, impact.Service)
			assert.Equal(t, tt.deps, impact.DirectDependencies)
			assert.Equal(t, tt.dependent, impact.Dependents)
			assert.Equal(t, tt.scope, impact.ImpactScope)
			assert.Equal(t, tt.risk, impact.RiskLevel)
			assert.Equal(t, tt.downtime, impact.EstimatedDowntime)
			assert.Equal(t, tt.strategy, impact.RecommendedStrategy)
		})
	}
}

func TestImpact_RootServiceAlwaysCritical(t *testing.T) {
	g := buildGraph(nil, "authentication-service")

	impact := Impact(g, "authentication-service", DefaultRootService)

	assert.Equal(t, SeverityCritical, impact.RiskLevel)
	assert.Equal(t, 300*time.Second, impact.EstimatedDowntime)
	assert.Equal(t, StrategyBlueGreen, impact.RecommendedStrategy)
	assert.Empty(t, impact.ImpactScope)
}

func TestImpact_ManyConnectionsIsCritical(t *testing.T) {
	edges := map[string][]string{}
	order := []string{"cache-service"}
	for i := 0; i < 6; i++ {
		name := fmt.Sprintf("svc-%d", i)
		edges[name] = []string{"cache-service"}
		order = append(order, name)
	}

	impact := Impact(buildGraph(edges, order...), "cache-service", DefaultRootService)

	assert.Equal(t, SeverityCritical, impact.RiskLevel)
	assert.Equal(t, 480*time.Second, impact.EstimatedDowntime)
	assert.Len(t, impact.ImpactScope, 6)
}

func TestImpact_TerminatesOnCycles(t *testing.T) {
	g := buildGraph(map[string][]string{"a": {"b"}, "b": {"a"}, "c": {"b"}}, "a", "b", "c")

	impact := Impact(g, "a", DefaultRootService)

	assert.Equal(t, []string{"b", "c"}, impact.ImpactScope)
}

func TestAnalyzer_Analyze(t *testing.T) {
	p := &mapProvider{
		names: []string{"authentication-service", "billing-service", "orders-service", "legacy-service"},
		deps: map[string][]string{
			"billing-service": {"authentication-service"},
			"orders-service":  {"authentication-service", "billing-service"},
		},
		info: map[string]api.ServiceInfo{
			"authentication-service": {Name: "authentication-service", Status: api.StatusActive},
			"legacy-service":         {Name: "legacy-service", Status: api.StatusInactive},
		},
	}
	a := NewAnalyzer(p, "")
	assert.Equal(t, DefaultRootService, a.RootService())

	report, err := a.Analyze(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, report.TotalServices)
	assert.Equal(t, 3, report.TotalDependencies)
	assert.Equal(t, 3, report.MaxDepth)
	assert.Equal(t, 2, report.MaxFanOut)
	assert.InDelta(t, 0.75, report.AverageFanOut, 0.0001)
	assert.False(t, report.HasCycles())
	assert.Equal(t, []string{"legacy-service"}, report.IsolatedServices)
	require.Len(t, report.CriticalPaths, 1)
	assert.Equal(t, PathCore, report.CriticalPaths[0].PathType)

	auth, ok := serviceRow(report, "authentication-service")
	require.True(t, ok)
	assert.Equal(t, api.StatusActive, auth.Status)
	assert.Equal(t, 2, auth.FanIn)

	orders, ok := serviceRow(report, "orders-service")
	require.True(t, ok)
	assert.Equal(t, "", orders.Status)
	assert.Equal(t, 3, orders.Level)

	_, ok = serviceRow(report, "missing")
	assert.False(t, ok)
}

func TestAnalyzer_RebuildsGraphEveryCall(t *testing.T) {
	p := &mapProvider{
		names: []string{"a", "b"},
		deps:  map[string][]string{},
	}
	a := NewAnalyzer(p, "a")

	first, err := a.Analyze(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, first.TotalDependencies)

	p.deps["b"] = []string{"a"}
	second, err := a.Analyze(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, second.TotalDependencies)
}

func TestAnalyzer_AnalyzeImpact(t *testing.T) {
	p := &mapProvider{
		names: []string{"authentication-service", "billing-service", "orders-service", "reporting-service"},
		deps: map[string][]string{
			"billing-service":   {"authentication-service"},
			"orders-service":    {"authentication-service"},
			"reporting-service": {"authentication-service"},
		},
	}
	a := NewAnalyzer(p, DefaultRootService)

	impact, err := a.AnalyzeImpact(context.Background(), "authentication-service")
	require.NoError(t, err)
	assert.Equal(t, SeverityCritical, impact.RiskLevel)
	assert.Len(t, impact.Dependents, 3)

	_, err = a.AnalyzeImpact(context.Background(), "ghost-service")
	assert.True(t, api.IsNotFound(err))

	impacts, err := a.AnalyzeImpacts(context.Background(), []string{"billing-service", "ghost-service"})
	require.NoError(t, err)
	assert.Len(t, impacts, 1)
	assert.Equal(t, SeverityMedium, impacts["billing-service"].RiskLevel)
}

func TestAnalyzer_CancelledContext(t *testing.T) {
	a := NewAnalyzer(&mapProvider{}, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Analyze(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = a.AnalyzeImpact(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func serviceRow(r *Report, name string) (ServiceSummary, bool) {
	for _, s := range r.Services {
		if s.Name == name {
			return s, true
		}
	}
	return ServiceSummary{}, false
}
