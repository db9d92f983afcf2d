package migration

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Task outcomes recorded by Metrics.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeCancelled = "cancelled"
)

// Metrics collects orchestrator metrics. A nil *Metrics records nothing.
type Metrics struct {
	tasksStarted      *prometheus.CounterVec
	tasksFinished     *prometheus.CounterVec
	serviceMigrations *prometheus.CounterVec
	taskDuration      prometheus.Histogram
	rollbacks         prometheus.Counter
	activeTasks       prometheus.Gauge
}

// NewMetrics creates the orchestrator metrics and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		tasksStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drover_migration_tasks_started_total",
				Help: "Number of migration tasks started by strategy.",
			},
			[]string{"strategy"},
		),
		tasksFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drover_migration_tasks_finished_total",
				Help: "Number of migration tasks finished by strategy and outcome.",
			},
			[]string{"strategy", "outcome"},
		),
		serviceMigrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "drover_migration_services_total",
				Help: "Number of per-service migrations by result.",
			},
			[]string{"result"},
		),
		taskDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "drover_migration_task_duration_seconds",
				Help:    "Time taken to execute a migration task.",
				Buckets: prometheus.DefBuckets,
			},
		),
		rollbacks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "drover_migration_rollbacks_total",
				Help: "Number of services restored to their source configuration.",
			},
		),
		activeTasks: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "drover_migration_active_tasks",
				Help: "Number of migration tasks currently executing.",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.tasksStarted,
			m.tasksFinished,
			m.serviceMigrations,
			m.taskDuration,
			m.rollbacks,
			m.activeTasks,
		)
	}
	return m
}

func (m *Metrics) taskStarted(strategy string) {
	if m == nil {
		return
	}
	m.tasksStarted.WithLabelValues(strategy).Inc()
	m.activeTasks.Inc()
}

func (m *Metrics) taskExited() {
	if m == nil {
		return
	}
	m.activeTasks.Dec()
}

func (m *Metrics) taskFinished(strategy, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.tasksFinished.WithLabelValues(strategy, outcome).Inc()
	m.taskDuration.Observe(d.Seconds())
}

func (m *Metrics) serviceMigrated(ok bool) {
	if m == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.serviceMigrations.WithLabelValues(result).Inc()
}

func (m *Metrics) serviceRestored() {
	if m == nil {
		return
	}
	m.rollbacks.Inc()
}
