package formatting

import (
	"time"

	"drover/internal/api"
	"drover/internal/dependency"
	"drover/internal/migration"
)

// ImpactView is the serialized form of a dependency.ImpactAnalysis.
type ImpactView struct {
	Service                  string   `json:"service" yaml:"service"`
	RiskLevel                string   `json:"riskLevel" yaml:"riskLevel"`
	DirectDependencies       []string `json:"directDependencies" yaml:"directDependencies"`
	Dependents               []string `json:"dependents" yaml:"dependents"`
	ImpactScope              []string `json:"impactScope" yaml:"impactScope"`
	EstimatedDowntime        string   `json:"estimatedDowntime" yaml:"estimatedDowntime"`
	EstimatedDowntimeSeconds int64    `json:"estimatedDowntimeSeconds" yaml:"estimatedDowntimeSeconds"`
	RecommendedStrategy      string   `json:"recommendedStrategy" yaml:"recommendedStrategy"`
}

// NewImpactView converts impact.
func NewImpactView(impact *dependency.ImpactAnalysis) ImpactView {
	return ImpactView{
		Service:                  impact.Service,
		RiskLevel:                impact.RiskLevel.String(),
		DirectDependencies:       nonNil(impact.DirectDependencies),
		Dependents:               nonNil(impact.Dependents),
		ImpactScope:              nonNil(impact.ImpactScope),
		EstimatedDowntime:        impact.EstimatedDowntime.String(),
		EstimatedDowntimeSeconds: int64(impact.EstimatedDowntime / time.Second),
		RecommendedStrategy:      impact.RecommendedStrategy,
	}
}

// PlanView is the serialized form of a migration.Plan.
type PlanView struct {
	Services                 []string                        `json:"services" yaml:"services"`
	Strategy                 string                          `json:"strategy" yaml:"strategy"`
	StrategyDetails          string                          `json:"strategyDetails" yaml:"strategyDetails"`
	EstimatedDuration        string                          `json:"estimatedDuration" yaml:"estimatedDuration"`
	EstimatedDurationSeconds int64                           `json:"estimatedDurationSeconds" yaml:"estimatedDurationSeconds"`
	Compatible               bool                            `json:"compatible" yaml:"compatible"`
	Compatibility            []migration.CompatibilityResult `json:"compatibility" yaml:"compatibility"`
	Risks                    []migration.Risk                `json:"risks" yaml:"risks"`
	Recommendations          []string                        `json:"recommendations" yaml:"recommendations"`
}

// NewPlanView converts plan.
func NewPlanView(plan *migration.Plan) PlanView {
	view := PlanView{
		Services:                 nonNil(plan.Services),
		EstimatedDuration:        plan.EstimatedDuration.String(),
		EstimatedDurationSeconds: int64(plan.EstimatedDuration / time.Second),
		Compatible:               plan.Compatible(),
		Compatibility:            plan.Compatibility,
		Risks:                    plan.Risks,
		Recommendations:          nonNil(plan.Recommendations),
	}
	if plan.Strategy != nil {
		view.Strategy = plan.Strategy.Name()
		view.StrategyDetails = plan.Strategy.String()
	}
	if view.Compatibility == nil {
		view.Compatibility = []migration.CompatibilityResult{}
	}
	if view.Risks == nil {
		view.Risks = []migration.Risk{}
	}
	return view
}

// TaskView is the serialized form of a migration.Task.
type TaskView struct {
	ID                 string                    `json:"id" yaml:"id"`
	Strategy           string                    `json:"strategy" yaml:"strategy"`
	Services           []string                  `json:"services" yaml:"services"`
	Phase              migration.Phase           `json:"phase" yaml:"phase"`
	Progress           float64                   `json:"progress" yaml:"progress"`
	Error              string                    `json:"error,omitempty" yaml:"error,omitempty"`
	Source             api.ServiceConfig         `json:"source" yaml:"source"`
	Target             api.ServiceConfig         `json:"target" yaml:"target"`
	StartedAt          time.Time                 `json:"startedAt" yaml:"startedAt"`
	EndedAt            *time.Time                `json:"endedAt,omitempty" yaml:"endedAt,omitempty"`
	Duration           string                    `json:"duration" yaml:"duration"`
	SuccessfulServices []string                  `json:"successfulServices" yaml:"successfulServices"`
	FailedServices     []migration.FailedService `json:"failedServices" yaml:"failedServices"`
}

// NewTaskView converts task. now is used for the duration of running tasks.
func NewTaskView(task migration.Task, now time.Time) TaskView {
	view := TaskView{
		ID:                 task.ID,
		Services:           nonNil(task.Services),
		Phase:              task.Status.Phase,
		Progress:           task.Status.Progress,
		Error:              task.Status.Error,
		Source:             task.Source,
		Target:             task.Target,
		StartedAt:          task.StartedAt,
		Duration:           task.Duration(now).Round(time.Millisecond).String(),
		SuccessfulServices: nonNil(task.SuccessfulServices),
		FailedServices:     task.FailedServices,
	}
	if task.Strategy != nil {
		view.Strategy = task.Strategy.Name()
	}
	if !task.EndedAt.IsZero() {
		ended := task.EndedAt
		view.EndedAt = &ended
	}
	if view.FailedServices == nil {
		view.FailedServices = []migration.FailedService{}
	}
	return view
}

func impactViews(impacts []*dependency.ImpactAnalysis) []ImpactView {
	views := make([]ImpactView, 0, len(impacts))
	for _, impact := range impacts {
		views = append(views, NewImpactView(impact))
	}
	return views
}

func taskViews(tasks []migration.Task, now time.Time) []TaskView {
	views := make([]TaskView, 0, len(tasks))
	for _, task := range tasks {
		views = append(views, NewTaskView(task, now))
	}
	return views
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
