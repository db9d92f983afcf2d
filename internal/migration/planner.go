package migration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"drover/internal/api"
	"drover/internal/dependency"
	"drover/pkg/logging"
)

// RiskType classifies a migration risk.
type RiskType string

const (
	RiskConfigurationMismatch RiskType = "configuration_mismatch"
	RiskEndpointChange        RiskType = "endpoint_change"
	RiskLargeScaleDeployment  RiskType = "large_scale_deployment"
	RiskServiceDependency     RiskType = "service_dependency"
	RiskDataLoss              RiskType = "data_loss_risk"
)

// RiskSeverity grades a migration risk.
type RiskSeverity string

const (
	RiskInfo     RiskSeverity = "info"
	RiskWarning  RiskSeverity = "warning"
	RiskCritical RiskSeverity = "critical"
)

// Risk is one identified hazard of a planned migration.
type Risk struct {
	Type             RiskType     `json:"type" yaml:"type"`
	Severity         RiskSeverity `json:"severity" yaml:"severity"`
	Description      string       `json:"description" yaml:"description"`
	AffectedServices []string     `json:"affectedServices" yaml:"affectedServices"`
	Mitigation       string       `json:"mitigation" yaml:"mitigation"`
}

// Plan is the advisory pre-flight view of a migration. It is never executed.
type Plan struct {
	Services          []string              `json:"services" yaml:"services"`
	Strategy          Strategy              `json:"-" yaml:"-"`
	EstimatedDuration time.Duration         `json:"estimatedDuration" yaml:"estimatedDuration"`
	Compatibility     []CompatibilityResult `json:"compatibility" yaml:"compatibility"`
	Risks             []Risk                `json:"risks" yaml:"risks"`
	Recommendations   []string              `json:"recommendations" yaml:"recommendations"`
}

// Compatible reports whether every service passed the pre-flight checks.
func (p *Plan) Compatible() bool {
	for _, result := range p.Compatibility {
		if !result.Compatible {
			return false
		}
	}
	return true
}

// PlanRequest describes the migration to plan.
type PlanRequest struct {
	Services []string
	Strategy Strategy
	Source   api.ServiceConfig
	Target   api.ServiceConfig
}

const (
	DefaultPerServiceTime      = 30 * time.Second
	DefaultLargeScaleThreshold = 50
	DefaultScaleHintThreshold  = 10
)

// PlannerConfig tunes the planner's estimates and thresholds.
type PlannerConfig struct {
	// PerServiceTime is the estimated time to migrate one service.
	PerServiceTime time.Duration

	// LargeScaleThreshold is the service count above which a migration is
	// flagged as a large scale deployment.
	LargeScaleThreshold int

	// ScaleHintThreshold is the service count above which splitting the
	// migration is recommended.
	ScaleHintThreshold int
}

func (c PlannerConfig) withDefaults() PlannerConfig {
	if c.PerServiceTime <= 0 {
		c.PerServiceTime = DefaultPerServiceTime
	}
	if c.LargeScaleThreshold <= 0 {
		c.LargeScaleThreshold = DefaultLargeScaleThreshold
	}
	if c.ScaleHintThreshold <= 0 {
		c.ScaleHintThreshold = DefaultScaleHintThreshold
	}
	return c
}

// Planner produces migration plans. It holds no state between calls, so
// identical inputs give identical plans.
type Planner struct {
	lister   api.ServiceLister
	analyzer *dependency.Analyzer
	config   PlannerConfig
}

// NewPlanner creates a planner. lister and analyzer are optional: without a
// lister the directory checks are skipped, without an analyzer the
// dependency-based risks are.
func NewPlanner(lister api.ServiceLister, analyzer *dependency.Analyzer, cfg PlannerConfig) *Planner {
	return &Planner{
		lister:   lister,
		analyzer: analyzer,
		config:   cfg.withDefaults(),
	}
}

// Plan builds the plan for req without executing anything.
func (p *Planner) Plan(ctx context.Context, req PlanRequest) (*Plan, error) {
	if len(req.Services) == 0 {
		return nil, api.NewValidationError("services", "at least one service is required")
	}
	if req.Strategy == nil {
		return nil, api.NewValidationError("strategy", "a migration strategy is required")
	}
	if err := req.Strategy.validate(req.Services); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	risks, err := p.identifyRisks(ctx, req)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		Services:          append([]string(nil), req.Services...),
		Strategy:          req.Strategy,
		EstimatedDuration: p.EstimateDuration(req.Strategy, len(req.Services)),
		Compatibility:     CheckCompatibility(p.lister, req.Services, req.Target),
		Risks:             risks,
	}
	plan.Recommendations = p.recommend(plan)

	logging.Debug("Planner", "Planned %d services with %s: estimated %s, %d risks",
		len(plan.Services), req.Strategy.Name(), plan.EstimatedDuration, len(plan.Risks))
	return plan, nil
}

// EstimateDuration estimates how long migrating n services with strategy
// takes.
func (p *Planner) EstimateDuration(strategy Strategy, n int) time.Duration {
	immediate := p.config.PerServiceTime * time.Duration(n)

	switch s := strategy.(type) {
	case Gradual:
		batches := 0
		if s.BatchSize > 0 {
			batches = (n + s.BatchSize - 1) / s.BatchSize
		}
		return time.Duration(batches)*s.DelayBetweenBatches + immediate
	case Canary, BlueGreen:
		return 2 * immediate
	default:
		return immediate
	}
}

func (p *Planner) identifyRisks(ctx context.Context, req PlanRequest) ([]Risk, error) {
	var risks []Risk
	all := append([]string(nil), req.Services...)

	if req.Source.AppID != req.Target.AppID {
		risks = append(risks, Risk{
			Type:     RiskConfigurationMismatch,
			Severity: RiskCritical,
			Description: fmt.Sprintf("App id changes from %q to %q; clients bound to the old app id lose access",
				req.Source.AppID, req.Target.AppID),
			AffectedServices: all,
			Mitigation:       "Register the new app id with every client before switching and keep the old one valid until the migration completes",
		})
	}

	if req.Source.BaseURL != req.Target.BaseURL {
		risks = append(risks, Risk{
			Type:             RiskEndpointChange,
			Severity:         RiskWarning,
			Description:      fmt.Sprintf("Base URL changes from %q to %q", req.Source.BaseURL, req.Target.BaseURL),
			AffectedServices: all,
			Mitigation:       "Redirect the old endpoint to the new one and update callers before removing it",
		})
	}

	if len(req.Services) > p.config.LargeScaleThreshold {
		risks = append(risks, Risk{
			Type:     RiskLargeScaleDeployment,
			Severity: RiskWarning,
			Description: fmt.Sprintf("%d services are migrated at once (threshold %d)",
				len(req.Services), p.config.LargeScaleThreshold),
			AffectedServices: all,
			Mitigation:       "Use a gradual or canary strategy and monitor error rates between batches",
		})
	}

	if p.analyzer == nil {
		return risks, nil
	}

	impacts, err := p.analyzer.AnalyzeImpacts(ctx, req.Services)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze migration impact: %w", err)
	}

	inMigration := make(map[string]bool, len(req.Services))
	for _, svc := range req.Services {
		inMigration[svc] = true
	}

	var exposed, external, critical []string
	seenExternal := make(map[string]bool)
	for _, svc := range req.Services {
		impact, ok := impacts[svc]
		if !ok {
			continue
		}
		if impact.RiskLevel == dependency.SeverityCritical {
			critical = append(critical, svc)
		}
		outside := false
		for _, dependent := range impact.Dependents {
			if inMigration[dependent] {
				continue
			}
			outside = true
			if !seenExternal[dependent] {
				seenExternal[dependent] = true
				external = append(external, dependent)
			}
		}
		if outside {
			exposed = append(exposed, svc)
		}
	}

	if len(exposed) > 0 {
		risks = append(risks, Risk{
			Type:     RiskServiceDependency,
			Severity: RiskWarning,
			Description: fmt.Sprintf("%d migrated services are depended on by services outside the migration: %s",
				len(exposed), strings.Join(external, ", ")),
			AffectedServices: exposed,
			Mitigation:       "Keep the source configuration reachable for dependents until they are migrated as well",
		})
	}

	if _, immediate := req.Strategy.(Immediate); immediate && len(critical) > 0 {
		risks = append(risks, Risk{
			Type:             RiskDataLoss,
			Severity:         RiskWarning,
			Description:      fmt.Sprintf("Critical services are switched without a fallback: %s", strings.Join(critical, ", ")),
			AffectedServices: critical,
			Mitigation:       "Use a blue-green or canary strategy for critical services",
		})
	}

	return risks, nil
}

func (p *Planner) recommend(plan *Plan) []string {
	var recs []string

	switch s := plan.Strategy.(type) {
	case Immediate:
		recs = append(recs,
			"Schedule the migration in a maintenance window: every service switches at once",
			"Check service health right after the switch")
	case Gradual:
		recs = append(recs,
			"Monitor each batch before the next one starts",
			fmt.Sprintf("Make sure %s between batches is long enough to observe error rates", s.DelayBetweenBatches))
	case Canary:
		recs = append(recs,
			"Define success criteria for the canary services before starting",
			"Watch the canary services closely; a failed canary rolls back the others automatically")
	case BlueGreen:
		recs = append(recs, "Keep the source environment available until the switch is verified")
		if !s.ValidateBeforeSwitch {
			recs = append(recs, "Enable validation before the switch")
		}
	}

	if n := len(plan.Services); n > p.config.ScaleHintThreshold {
		recs = append(recs, fmt.Sprintf("Split the %d services into batches of at most %d", n, p.config.ScaleHintThreshold))
	}

	incompatible := 0
	for _, result := range plan.Compatibility {
		if !result.Compatible {
			incompatible++
		}
	}
	if incompatible > 0 {
		recs = append(recs, fmt.Sprintf("Resolve the compatibility issues of %d services before starting", incompatible))
	}

	return recs
}
