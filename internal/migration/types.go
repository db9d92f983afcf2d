package migration

import (
	"fmt"
	"time"

	"drover/internal/api"
)

// Phase is the lifecycle position of a migration task.
type Phase string

const (
	PhasePreparing  Phase = "preparing"
	PhaseInProgress Phase = "in_progress"
	PhaseCompleted  Phase = "completed"
	PhaseFailed     Phase = "failed"
	PhaseRolledBack Phase = "rolled_back"
)

// Status is the current state of a task. Progress is only meaningful while
// the task is in progress; Error only when it failed.
type Status struct {
	Phase    Phase   `json:"phase" yaml:"phase"`
	Progress float64 `json:"progress" yaml:"progress"`
	Error    string  `json:"error,omitempty" yaml:"error,omitempty"`
}

// IsTerminal reports whether the task will not change phase on its own.
func (s Status) IsTerminal() bool {
	switch s.Phase {
	case PhaseCompleted, PhaseFailed, PhaseRolledBack:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	switch s.Phase {
	case PhaseInProgress:
		return fmt.Sprintf("%s (%.0f%%)", s.Phase, s.Progress)
	case PhaseFailed:
		return fmt.Sprintf("%s: %s", s.Phase, s.Error)
	default:
		return string(s.Phase)
	}
}

// FailedService records a service whose migration failed.
type FailedService struct {
	Service string `json:"service" yaml:"service"`
	Error   string `json:"error" yaml:"error"`
}

// Task is a migration of a set of services from a source to a target
// configuration.
type Task struct {
	ID                 string            `json:"id" yaml:"id"`
	Strategy           Strategy          `json:"-" yaml:"-"`
	Services           []string          `json:"services" yaml:"services"`
	Source             api.ServiceConfig `json:"source" yaml:"source"`
	Target             api.ServiceConfig `json:"target" yaml:"target"`
	Status             Status            `json:"status" yaml:"status"`
	StartedAt          time.Time         `json:"startedAt" yaml:"startedAt"`
	EndedAt            time.Time         `json:"endedAt,omitempty" yaml:"endedAt,omitempty"`
	SuccessfulServices []string          `json:"successfulServices" yaml:"successfulServices"`
	FailedServices     []FailedService   `json:"failedServices" yaml:"failedServices"`
}

// Duration returns how long the task ran, or has been running.
func (t Task) Duration(now time.Time) time.Duration {
	if t.EndedAt.IsZero() {
		return now.Sub(t.StartedAt)
	}
	return t.EndedAt.Sub(t.StartedAt)
}

func (t Task) clone() Task {
	out := t
	out.Services = append([]string(nil), t.Services...)
	out.Source = t.Source.Clone()
	out.Target = t.Target.Clone()
	out.SuccessfulServices = append([]string(nil), t.SuccessfulServices...)
	out.FailedServices = append([]FailedService(nil), t.FailedServices...)
	return out
}

// StartRequest describes a migration to start.
type StartRequest struct {
	// TaskID identifies the task. A random id is generated when empty.
	TaskID   string
	Strategy Strategy
	Services []string
	Source   api.ServiceConfig
	Target   api.ServiceConfig
}
