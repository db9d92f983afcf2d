package migration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"drover/internal/api"
	"drover/pkg/logging"
)

const cancelledByUser = "cancelled by user"

// Config holds the configuration for the orchestrator.
type Config struct {
	// Registry holds the tasks. A new registry is created when nil.
	Registry *TaskRegistry

	// Registrar performs the register and unregister calls. Required.
	Registrar api.Registrar

	// Validator runs before a validated blue-green switch. When nil every
	// validation passes.
	Validator Validator

	// Metrics is optional.
	Metrics *Metrics

	// Now overrides the clock used for task timestamps.
	Now func() time.Time
}

// Orchestrator starts migrations in the background and tracks them in its
// task registry. Multiple migrations may run at once; the services of one
// migration are handled sequentially.
type Orchestrator struct {
	registry  *TaskRegistry
	registrar api.Registrar
	validator Validator
	metrics   *Metrics
	now       func() time.Time

	// executions holds the handles of running migrations.
	executions map[string]*Execution

	// rollbacks holds the tasks with a rollback in progress.
	rollbacks map[*Task]bool

	mu sync.Mutex
}

// New creates a new orchestrator.
func New(cfg Config) *Orchestrator {
	if cfg.Registry == nil {
		cfg.Registry = NewTaskRegistry()
	}
	if cfg.Validator == nil {
		cfg.Validator = ValidatorFunc(func(context.Context, []string, api.ServiceConfig) error { return nil })
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Orchestrator{
		registry:   cfg.Registry,
		registrar:  cfg.Registrar,
		validator:  cfg.Validator,
		metrics:    cfg.Metrics,
		now:        cfg.Now,
		executions: make(map[string]*Execution),
		rollbacks:  make(map[*Task]bool),
	}
}

// Registry returns the orchestrator's task registry.
func (o *Orchestrator) Registry() *TaskRegistry {
	return o.registry
}

// Start validates the request, registers the task and runs the migration in
// the background. It returns as soon as the task is registered. Invalid
// requests are rejected with api.ValidationError and register nothing.
//
// The migration does not stop when ctx is cancelled; use Cancel or the
// returned Execution for that.
func (o *Orchestrator) Start(ctx context.Context, req StartRequest) (*Execution, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if o.registrar == nil {
		return nil, fmt.Errorf("orchestrator has no registrar")
	}

	id := req.TaskID
	if id == "" {
		id = uuid.NewString()
	}

	task := &Task{
		ID:        id,
		Strategy:  req.Strategy,
		Services:  append([]string(nil), req.Services...),
		Source:    req.Source.Clone(),
		Target:    req.Target.Clone(),
		Status:    Status{Phase: PhasePreparing},
		StartedAt: o.now(),
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	exec := &Execution{
		id:     id,
		done:   make(chan struct{}),
		cancel: cancel,
		orch:   o,
	}

	// Registering the task and its handle together lets Cancel always find
	// the handle of a registered task. An id is only reused once the
	// goroutine of its previous task has exited.
	o.mu.Lock()
	if _, live := o.executions[id]; live {
		o.mu.Unlock()
		cancel()
		return nil, api.NewValidationError("taskId", "migration task %s is still finishing", id)
	}
	if err := o.registry.add(task); err != nil {
		o.mu.Unlock()
		cancel()
		return nil, err
	}
	o.executions[id] = exec
	o.mu.Unlock()

	o.metrics.taskStarted(req.Strategy.Name())
	logging.Info("Orchestrator", "Starting migration task %s: %d services, strategy %s",
		id, len(task.Services), req.Strategy)

	r := &runner{
		orch:     o,
		task:     task,
		taskID:   id,
		services: task.Services,
		source:   task.Source,
		target:   task.Target,
	}
	go o.execute(runCtx, exec, req.Strategy, r)

	return exec, nil
}

func validateRequest(req StartRequest) error {
	if len(req.Services) == 0 {
		return api.NewValidationError("services", "at least one service is required")
	}
	if req.Strategy == nil {
		return api.NewValidationError("strategy", "a migration strategy is required")
	}

	seen := make(map[string]bool, len(req.Services))
	for _, svc := range req.Services {
		if svc == "" {
			return api.NewValidationError("services", "service names must not be empty")
		}
		if seen[svc] {
			return api.NewValidationError("services", "service %s is listed more than once", svc)
		}
		seen[svc] = true
	}

	return req.Strategy.validate(req.Services)
}

func (o *Orchestrator) execute(ctx context.Context, exec *Execution, strategy Strategy, r *runner) {
	defer func() {
		exec.cancel()

		o.mu.Lock()
		if o.executions[exec.id] == exec {
			delete(o.executions, exec.id)
		}
		o.mu.Unlock()

		o.metrics.taskExited()
		close(exec.done)
	}()

	o.registry.mutate(r.task, func(t *Task) {
		if !t.Status.IsTerminal() {
			t.Status = Status{Phase: PhaseInProgress}
		}
	})

	err := strategy.run(ctx, r)
	o.finish(r.task, strategy, err)
}

// finish moves the task to its terminal phase. A task that is already
// terminal, because it was cancelled, keeps its status.
func (o *Orchestrator) finish(task *Task, strategy Strategy, runErr error) {
	var (
		outcome  string
		final    Status
		duration time.Duration
		skipped  bool
	)
	id := task.ID

	o.registry.mutate(task, func(t *Task) {
		if t.Status.IsTerminal() {
			skipped = true
			return
		}

		switch {
		case runErr != nil && errors.Is(runErr, context.Canceled):
			final = Status{Phase: PhaseFailed, Progress: t.Status.Progress, Error: "migration interrupted"}
			outcome = OutcomeCancelled
		case runErr != nil:
			final = Status{Phase: PhaseFailed, Progress: t.Status.Progress, Error: runErr.Error()}
			outcome = OutcomeFailed
		case len(t.FailedServices) > 0:
			final = Status{
				Phase:    PhaseFailed,
				Progress: t.Status.Progress,
				Error:    fmt.Sprintf("%d of %d services failed to migrate", len(t.FailedServices), len(t.Services)),
			}
			outcome = OutcomeFailed
		default:
			final = Status{Phase: PhaseCompleted, Progress: 100}
			outcome = OutcomeCompleted
		}

		t.Status = final
		t.EndedAt = o.now()
		duration = t.EndedAt.Sub(t.StartedAt)
	})
	if skipped {
		logging.Debug("Orchestrator", "Migration task %s already finished", id)
		return
	}

	o.metrics.taskFinished(strategy.Name(), outcome, duration)
	if final.Phase == PhaseCompleted {
		logging.Info("Orchestrator", "Migration task %s completed in %s", id, duration)
	} else {
		logging.Warn("Orchestrator", "Migration task %s failed after %s: %s", id, duration, final.Error)
	}
}

// switchService unregisters service and registers it again under cfg.
func (o *Orchestrator) switchService(service string, cfg api.ServiceConfig) error {
	if err := o.registrar.Unregister(service); err != nil {
		return api.NewRegistrationError(service, api.OpUnregister, err)
	}
	if err := o.registrar.RegisterUnderConfig([]string{service}, cfg); err != nil {
		return api.NewRegistrationError(service, api.OpRegister, err)
	}
	return nil
}

// Cancel marks a running task as failed and stops it from dispatching
// further services. A service step already in flight still completes.
func (o *Orchestrator) Cancel(taskID string) error {
	var (
		strategy Strategy
		duration time.Duration
	)
	err := o.registry.update(taskID, func(t *Task) error {
		if t.Status.IsTerminal() {
			return api.NewValidationError("task", "migration task %s already finished (%s)", taskID, t.Status.Phase)
		}
		t.Status = Status{Phase: PhaseFailed, Progress: t.Status.Progress, Error: cancelledByUser}
		t.EndedAt = o.now()
		strategy = t.Strategy
		duration = t.EndedAt.Sub(t.StartedAt)
		return nil
	})
	if err != nil {
		return err
	}

	o.mu.Lock()
	exec := o.executions[taskID]
	o.mu.Unlock()
	if exec != nil {
		exec.cancel()
	}

	o.metrics.taskFinished(strategy.Name(), OutcomeCancelled, duration)
	logging.Info("Orchestrator", "Cancelled migration task %s", taskID)
	return nil
}

// Get returns a snapshot of the task.
func (o *Orchestrator) Get(taskID string) (Task, error) {
	task, ok := o.registry.Get(taskID)
	if !ok {
		return Task{}, api.NewTaskNotFoundError(taskID)
	}
	return task, nil
}

// List returns snapshots of all tasks.
func (o *Orchestrator) List() []Task {
	return o.registry.List()
}

// Active returns snapshots of the tasks that have not finished.
func (o *Orchestrator) Active() []Task {
	return o.registry.Active()
}

// Cleanup removes finished tasks and returns how many were removed.
func (o *Orchestrator) Cleanup() int {
	removed := o.registry.RemoveTerminal()
	if removed > 0 {
		logging.Debug("Orchestrator", "Removed %d finished migration tasks", removed)
	}
	return removed
}

// Rollback restores every successfully migrated service of a finished task
// to the task's source configuration and marks it rolled back. When a
// service cannot be restored the task keeps its status and the error lists
// the failures. Only one rollback of a task runs at a time.
func (o *Orchestrator) Rollback(ctx context.Context, taskID string) (Task, error) {
	ptr, ok := o.registry.lookup(taskID)
	if !ok {
		return Task{}, api.NewTaskNotFoundError(taskID)
	}

	o.mu.Lock()
	if o.rollbacks[ptr] {
		o.mu.Unlock()
		return Task{}, api.NewValidationError("task", "rollback of migration task %s is already in progress", taskID)
	}
	o.rollbacks[ptr] = true
	exec := o.executions[taskID]
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		delete(o.rollbacks, ptr)
		o.mu.Unlock()
	}()

	task := o.registry.snapshot(ptr)
	switch {
	case task.Status.Phase == PhaseRolledBack:
		return Task{}, api.NewValidationError("task", "migration task %s is already rolled back", taskID)
	case !task.Status.IsTerminal():
		return Task{}, api.NewValidationError("task", "migration task %s is still running", taskID)
	}

	if exec != nil {
		// A cancelled task may still be finishing its in-flight step.
		select {
		case <-exec.done:
		case <-ctx.Done():
			return Task{}, ctx.Err()
		}
		task = o.registry.snapshot(ptr)
	}

	var errs []error
	for _, svc := range task.SuccessfulServices {
		if err := ctx.Err(); err != nil {
			return Task{}, err
		}
		if err := o.switchService(svc, task.Source); err != nil {
			errs = append(errs, err)
			continue
		}
		o.metrics.serviceRestored()
	}
	if len(errs) > 0 {
		return Task{}, fmt.Errorf("rollback of migration task %s incomplete: %w", taskID, errors.Join(errs...))
	}

	o.registry.mutate(ptr, func(t *Task) {
		t.Status = Status{Phase: PhaseRolledBack}
		t.EndedAt = o.now()
	})

	logging.Info("Orchestrator", "Rolled back %d services of migration task %s", len(task.SuccessfulServices), taskID)
	return o.registry.snapshot(ptr), nil
}

// Shutdown interrupts every running migration and waits for them to exit or
// for ctx to be done.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.mu.Lock()
	running := make([]*Execution, 0, len(o.executions))
	for _, exec := range o.executions {
		running = append(running, exec)
	}
	o.mu.Unlock()

	if len(running) == 0 {
		return nil
	}
	logging.Info("Orchestrator", "Shutting down %d running migrations", len(running))

	g, gctx := errgroup.WithContext(ctx)
	for _, exec := range running {
		exec := exec
		exec.cancel()
		g.Go(func() error {
			select {
			case <-exec.done:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}
	return g.Wait()
}
