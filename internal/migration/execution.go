package migration

import (
	"context"

	"drover/internal/api"
	"drover/pkg/logging"
)

// Execution is the handle of a started migration.
type Execution struct {
	id     string
	done   chan struct{}
	cancel context.CancelFunc
	orch   *Orchestrator
}

// ID returns the task id.
func (e *Execution) ID() string {
	return e.id
}

// Done is closed when the migration goroutine has exited.
func (e *Execution) Done() <-chan struct{} {
	return e.done
}

// Wait blocks until the migration has finished or ctx is done and returns
// the final task.
func (e *Execution) Wait(ctx context.Context) (Task, error) {
	select {
	case <-e.done:
		return e.orch.Get(e.id)
	case <-ctx.Done():
		return Task{}, ctx.Err()
	}
}

// Cancel cancels the migration. It is a no-op once the task is terminal.
func (e *Execution) Cancel() {
	if err := e.orch.Cancel(e.id); err != nil {
		logging.Debug("Orchestrator", "Cancel of %s ignored: %v", e.id, err)
	}
}

// runner executes the per-service steps of one task on behalf of a strategy.
// Only field mutations take the registry lock; the steps themselves run
// without it. The runner writes to the task it was started with, never to
// whatever task currently holds the id.
type runner struct {
	orch     *Orchestrator
	task     *Task
	taskID   string
	services []string
	source   api.ServiceConfig
	target   api.ServiceConfig
}

// migrateEach migrates services in order, updating progress after each one.
func (r *runner) migrateEach(ctx context.Context, services []string) error {
	for i, svc := range services {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.migrateOne(svc)
		r.setProgress(i+1, len(services))
	}
	return nil
}

// migrateOne moves one service to the target configuration and records the
// result on the task.
func (r *runner) migrateOne(service string) bool {
	err := r.orch.switchService(service, r.target)

	r.orch.registry.mutate(r.task, func(t *Task) {
		if err != nil {
			t.FailedServices = append(t.FailedServices, FailedService{Service: service, Error: err.Error()})
		} else {
			t.SuccessfulServices = append(t.SuccessfulServices, service)
		}
	})
	r.orch.metrics.serviceMigrated(err == nil)

	if err != nil {
		logging.Warn("Orchestrator", "Task %s: %v", r.taskID, err)
		return false
	}
	logging.Debug("Orchestrator", "Task %s: migrated %s", r.taskID, service)
	return true
}

// rollBack restores services to the source configuration and removes them
// from the task's successful list. Restore failures are logged only.
func (r *runner) rollBack(services []string) {
	for _, svc := range services {
		if err := r.orch.switchService(svc, r.source); err != nil {
			logging.Error("Orchestrator", err, "Task %s: failed to roll back %s", r.taskID, svc)
		} else {
			r.orch.metrics.serviceRestored()
			logging.Info("Orchestrator", "Task %s: rolled back %s", r.taskID, svc)
		}
	}

	rolledBack := make(map[string]bool, len(services))
	for _, svc := range services {
		rolledBack[svc] = true
	}
	r.orch.registry.mutate(r.task, func(t *Task) {
		kept := t.SuccessfulServices[:0]
		for _, svc := range t.SuccessfulServices {
			if !rolledBack[svc] {
				kept = append(kept, svc)
			}
		}
		t.SuccessfulServices = kept
	})
}

// setProgress records done of total services as a percentage. Terminal
// tasks are left untouched.
func (r *runner) setProgress(done, total int) {
	if total == 0 {
		return
	}
	progress := float64(done) * 100 / float64(total)
	r.orch.registry.mutate(r.task, func(t *Task) {
		if !t.Status.IsTerminal() {
			t.Status = Status{Phase: PhaseInProgress, Progress: progress}
		}
	})
}

func (r *runner) validate(ctx context.Context) error {
	return r.orch.validator.Validate(ctx, r.services, r.target)
}
