package migration

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drover/internal/api"
	"drover/internal/services"
)

var (
	sourceConfig = api.ServiceConfig{AppID: "payments", BaseURL: "https://old.example.com"}
	targetConfig = api.ServiceConfig{AppID: "payments", BaseURL: "https://new.example.com", Timeout: 10 * time.Second}
)

// fakeRegistrar records every call and can fail or block selected services.
type fakeRegistrar struct {
	mu             sync.Mutex
	calls          []string
	failRegister   map[string]bool
	failUnregister map[string]bool
	onUnregister   func(name string)
}

func newFakeRegistrar() *fakeRegistrar {
	return &fakeRegistrar{
		failRegister:   map[string]bool{},
		failUnregister: map[string]bool{},
	}
}

func (f *fakeRegistrar) Unregister(name string) error {
	if f.onUnregister != nil {
		f.onUnregister(name)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "unregister "+name)
	if f.failUnregister[name] {
		return errors.New("directory unavailable")
	}
	return nil
}

func (f *fakeRegistrar) RegisterUnderConfig(names []string, cfg api.ServiceConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, name := range names {
		f.calls = append(f.calls, fmt.Sprintf("register %s %s", name, cfg.BaseURL))
		if f.failRegister[name] {
			return errors.New("registration rejected")
		}
	}
	return nil
}

func (f *fakeRegistrar) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// seededDirectory returns a directory holding names under sourceConfig.
func seededDirectory(t *testing.T, names ...string) *services.Directory {
	t.Helper()
	dir := services.NewDirectory()
	for _, name := range names {
		require.NoError(t, dir.Add(api.ServiceInfo{Name: name}, sourceConfig))
	}
	return dir
}

func startAndWait(t *testing.T, o *Orchestrator, req StartRequest) Task {
	t.Helper()
	exec, err := o.Start(context.Background(), req)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	task, err := exec.Wait(ctx)
	require.NoError(t, err)
	return task
}

func TestStart_Validation(t *testing.T) {
	tests := []struct {
		name  string
		req   StartRequest
		field string
	}{
		{
			name:  "empty service list",
			req:   StartRequest{Strategy: Immediate{}},
			field: "services",
		},
		{
			name:  "missing strategy",
			req:   StartRequest{Services: []string{"a"}},
			field: "strategy",
		},
		{
			name:  "duplicate service",
			req:   StartRequest{Strategy: Immediate{}, Services: []string{"a", "b", "a"}},
			field: "services",
		},
		{
			name:  "gradual batch size below one",
			req:   StartRequest{Strategy: Gradual{BatchSize: 0}, Services: []string{"a"}},
			field: "batchSize",
		},
		{
			name:  "canaries outside the migration",
			req:   StartRequest{Strategy: Canary{CanaryServices: []string{"x"}}, Services: []string{"a"}},
			field: "canaryServices",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := New(Config{Registrar: newFakeRegistrar()})

			exec, err := o.Start(context.Background(), tt.req)
			require.Error(t, err)
			assert.Nil(t, exec)

			var verr *api.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Zero(t, o.Registry().Len(), "no task may be registered")
		})
	}
}

func TestStart_DuplicateTaskID(t *testing.T) {
	o := New(Config{Registrar: newFakeRegistrar()})
	req := StartRequest{TaskID: "task-1", Strategy: Immediate{}, Services: []string{"a"}}

	startAndWait(t, o, req)

	_, err := o.Start(context.Background(), req)
	assert.True(t, api.IsValidation(err))
	assert.Equal(t, 1, o.Registry().Len())
}

func TestStart_GeneratesTaskID(t *testing.T) {
	o := New(Config{Registrar: newFakeRegistrar()})

	exec, err := o.Start(context.Background(), StartRequest{Strategy: Immediate{}, Services: []string{"a"}})
	require.NoError(t, err)
	assert.Len(t, exec.ID(), 36)

	<-exec.Done()
	task, err := o.Get(exec.ID())
	require.NoError(t, err)
	assert.Equal(t, exec.ID(), task.ID)
}

func TestImmediate_AllSucceed(t *testing.T) {
	dir := seededDirectory(t, "a", "b", "c")
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	var tick int
	var clockMu sync.Mutex
	o := New(Config{
		Registrar: dir,
		Now: func() time.Time {
			clockMu.Lock()
			defer clockMu.Unlock()
			tick++
			return start.Add(time.Duration(tick) * time.Second)
		},
	})

	task := startAndWait(t, o, StartRequest{
		Strategy: Immediate{},
		Services: []string{"a", "b", "c"},
		Source:   sourceConfig,
		Target:   targetConfig,
	})

	assert.Equal(t, Status{Phase: PhaseCompleted, Progress: 100}, task.Status)
	assert.Equal(t, []string{"a", "b", "c"}, task.SuccessfulServices)
	assert.Empty(t, task.FailedServices)
	assert.True(t, task.EndedAt.After(task.StartedAt))

	for _, name := range []string{"a", "b", "c"} {
		cfg, ok := dir.Config(name)
		require.True(t, ok)
		assert.Equal(t, targetConfig.BaseURL, cfg.BaseURL)
	}
}

func TestImmediate_FailuresAreLocal(t *testing.T) {
	reg := newFakeRegistrar()
	reg.failRegister["b"] = true
	o := New(Config{Registrar: reg})

	task := startAndWait(t, o, StartRequest{
		Strategy: Immediate{},
		Services: []string{"a", "b", "c"},
		Target:   targetConfig,
	})

	assert.Equal(t, PhaseFailed, task.Status.Phase)
	assert.Equal(t, "1 of 3 services failed to migrate", task.Status.Error)
	assert.Equal(t, []string{"a", "c"}, task.SuccessfulServices)
	require.Len(t, task.FailedServices, 1)
	assert.Equal(t, "b", task.FailedServices[0].Service)
	assert.Equal(t, "failed to register service b: registration rejected", task.FailedServices[0].Error)
}

func TestMigrateService_UnregisterFailureSkipsRegister(t *testing.T) {
	reg := newFakeRegistrar()
	reg.failUnregister["a"] = true
	o := New(Config{Registrar: reg})

	task := startAndWait(t, o, StartRequest{Strategy: Immediate{}, Services: []string{"a"}, Target: targetConfig})

	assert.Equal(t, []string{"unregister a"}, reg.Calls())
	require.Len(t, task.FailedServices, 1)
	assert.Contains(t, task.FailedServices[0].Error, "failed to unregister service a")
}

func TestGradual_ReportsProgressPerBatch(t *testing.T) {
	reg := newFakeRegistrar()
	o := New(Config{Registrar: reg})

	progress := map[string]Status{}
	reg.onUnregister = func(name string) {
		task, ok := o.Registry().Get("gradual-1")
		if ok {
			progress[name] = task.Status
		}
	}

	task := startAndWait(t, o, StartRequest{
		TaskID:   "gradual-1",
		Strategy: Gradual{BatchSize: 2, DelayBetweenBatches: time.Millisecond},
		Services: []string{"a", "b", "c", "d", "e"},
		Target:   targetConfig,
	})

	assert.Equal(t, PhaseCompleted, task.Status.Phase)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, task.SuccessfulServices)

	assert.Equal(t, Status{Phase: PhaseInProgress}, progress["a"])
	assert.Equal(t, Status{Phase: PhaseInProgress}, progress["b"], "progress only moves after a whole batch")
	assert.Equal(t, Status{Phase: PhaseInProgress, Progress: 40}, progress["c"])
	assert.Equal(t, Status{Phase: PhaseInProgress, Progress: 80}, progress["e"])
}

func TestCanary_FailureRollsBackCanaries(t *testing.T) {
	dir := seededDirectory(t, "c1", "c2", "c3", "rest")
	require.NoError(t, dir.InjectFault(api.OpRegister, "c3", services.ErrInjectedFault))
	o := New(Config{Registrar: dir})

	task := startAndWait(t, o, StartRequest{
		Strategy: Canary{CanaryServices: []string{"c1", "c2", "c3"}},
		Services: []string{"rest", "c1", "c2", "c3"},
		Source:   sourceConfig,
		Target:   targetConfig,
	})

	assert.Equal(t, PhaseFailed, task.Status.Phase)
	assert.Contains(t, task.Status.Error, "canary c3 failed")
	assert.Empty(t, task.SuccessfulServices, "rolled back canaries must not be reported as migrated")
	require.Len(t, task.FailedServices, 1)
	assert.Equal(t, "c3", task.FailedServices[0].Service)

	for _, name := range []string{"c1", "c2", "rest"} {
		cfg, ok := dir.Config(name)
		require.True(t, ok, "%s should be registered", name)
		assert.Equal(t, sourceConfig.BaseURL, cfg.BaseURL, "%s should run under the source config", name)
	}
}

func TestCanary_MigratesCanariesFirst(t *testing.T) {
	reg := newFakeRegistrar()
	o := New(Config{Registrar: reg})

	task := startAndWait(t, o, StartRequest{
		Strategy: Canary{CanaryServices: []string{"c", "ghost"}},
		Services: []string{"a", "b", "c"},
		Target:   targetConfig,
	})

	assert.Equal(t, PhaseCompleted, task.Status.Phase)
	assert.Equal(t, []string{"c", "a", "b"}, task.SuccessfulServices)
	assert.Equal(t, "unregister c", reg.Calls()[0])
}

func TestBlueGreen(t *testing.T) {
	t.Run("validation failure migrates nothing", func(t *testing.T) {
		reg := newFakeRegistrar()
		o := New(Config{
			Registrar: reg,
			Validator: ValidatorFunc(func(context.Context, []string, api.ServiceConfig) error {
				return errors.New("green environment unhealthy")
			}),
		})

		task := startAndWait(t, o, StartRequest{
			Strategy: BlueGreen{ValidateBeforeSwitch: true},
			Services: []string{"a", "b"},
			Target:   targetConfig,
		})

		assert.Equal(t, PhaseFailed, task.Status.Phase)
		assert.Equal(t, "pre-switch validation failed: green environment unhealthy", task.Status.Error)
		assert.Empty(t, reg.Calls())
	})

	t.Run("validator skipped when not requested", func(t *testing.T) {
		called := false
		o := New(Config{
			Registrar: newFakeRegistrar(),
			Validator: ValidatorFunc(func(context.Context, []string, api.ServiceConfig) error {
				called = true
				return errors.New("unexpected")
			}),
		})

		task := startAndWait(t, o, StartRequest{Strategy: BlueGreen{}, Services: []string{"a"}, Target: targetConfig})

		assert.Equal(t, PhaseCompleted, task.Status.Phase)
		assert.False(t, called)
	})

	t.Run("compatibility validator", func(t *testing.T) {
		dir := seededDirectory(t, "a")
		o := New(Config{Registrar: dir, Validator: NewCompatibilityValidator(dir)})

		task := startAndWait(t, o, StartRequest{
			Strategy: BlueGreen{ValidateBeforeSwitch: true},
			Services: []string{"a"},
			Target:   api.ServiceConfig{AppID: "payments", BaseURL: "not a url"},
		})

		assert.Equal(t, PhaseFailed, task.Status.Phase)
		assert.Contains(t, task.Status.Error, "not an absolute URL")
	})
}

// blockingRegistrar blocks the first unregister of service a until released.
// Other services pass through.
func blockingRegistrar() (*fakeRegistrar, chan struct{}, chan struct{}) {
	reg := newFakeRegistrar()
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	reg.onUnregister = func(name string) {
		if name != "a" {
			return
		}
		once.Do(func() {
			close(entered)
			<-release
		})
	}
	return reg, entered, release
}

func TestCancel(t *testing.T) {
	reg, entered, release := blockingRegistrar()
	o := New(Config{Registrar: reg})

	exec, err := o.Start(context.Background(), StartRequest{
		TaskID:   "task-1",
		Strategy: Immediate{},
		Services: []string{"a", "b", "c"},
		Target:   targetConfig,
	})
	require.NoError(t, err)
	<-entered

	require.NoError(t, o.Cancel("task-1"))

	task, err := o.Get("task-1")
	require.NoError(t, err)
	assert.Equal(t, PhaseFailed, task.Status.Phase)
	assert.Equal(t, "cancelled by user", task.Status.Error)
	assert.False(t, task.EndedAt.IsZero())

	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	task, err = exec.Wait(ctx)
	require.NoError(t, err)

	assert.Equal(t, "cancelled by user", task.Status.Error, "finishing must not overwrite a cancelled task")
	assert.Equal(t, []string{"a"}, task.SuccessfulServices, "the in-flight service completes")
	assert.Equal(t, []string{"unregister a", "register a https://new.example.com"}, reg.Calls())

	assert.True(t, api.IsValidation(o.Cancel("task-1")), "cancelling a finished task is rejected")
	assert.True(t, api.IsNotFound(o.Cancel("unknown")))
}

func TestExecutionCancel(t *testing.T) {
	reg, entered, release := blockingRegistrar()
	o := New(Config{Registrar: reg})

	exec, err := o.Start(context.Background(), StartRequest{Strategy: Immediate{}, Services: []string{"a", "b"}})
	require.NoError(t, err)
	<-entered

	exec.Cancel()
	close(release)
	<-exec.Done()

	task, err := o.Get(exec.ID())
	require.NoError(t, err)
	assert.Equal(t, "cancelled by user", task.Status.Error)

	// A second cancel on a finished task is a no-op.
	exec.Cancel()
}

func TestWait_ContextDone(t *testing.T) {
	reg, entered, release := blockingRegistrar()
	defer close(release)
	o := New(Config{Registrar: reg})

	exec, err := o.Start(context.Background(), StartRequest{Strategy: Immediate{}, Services: []string{"a"}})
	require.NoError(t, err)
	<-entered

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = exec.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStart_IgnoresCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	o := New(Config{Registrar: newFakeRegistrar()})

	exec, err := o.Start(ctx, StartRequest{Strategy: Immediate{}, Services: []string{"a", "b"}})
	require.NoError(t, err)
	cancel()

	<-exec.Done()
	task, err := o.Get(exec.ID())
	require.NoError(t, err)
	assert.Equal(t, PhaseCompleted, task.Status.Phase)
}

func TestCleanup_RemovesOnlyTerminalTasks(t *testing.T) {
	reg, entered, release := blockingRegistrar()
	o := New(Config{Registrar: reg})

	running, err := o.Start(context.Background(), StartRequest{TaskID: "running", Strategy: Immediate{}, Services: []string{"a"}})
	require.NoError(t, err)
	<-entered

	startAndWait(t, o, StartRequest{TaskID: "done", Strategy: Immediate{}, Services: []string{"b"}})

	assert.Len(t, o.List(), 2)
	require.Len(t, o.Active(), 1)
	assert.Equal(t, "running", o.Active()[0].ID)

	assert.Equal(t, 1, o.Cleanup())

	_, err = o.Get("done")
	assert.True(t, api.IsNotFound(err))
	_, err = o.Get("running")
	assert.NoError(t, err)

	close(release)
	<-running.Done()
	assert.Equal(t, 1, o.Cleanup())
	assert.Empty(t, o.List())
}

func TestStart_ReusedIDWaitsForPreviousExecution(t *testing.T) {
	reg, entered, release := blockingRegistrar()
	o := New(Config{Registrar: reg})

	first, err := o.Start(context.Background(), StartRequest{TaskID: "t", Strategy: Immediate{}, Services: []string{"a", "b"}})
	require.NoError(t, err)
	<-entered

	require.NoError(t, o.Cancel("t"))
	assert.Equal(t, 1, o.Cleanup())

	_, err = o.Start(context.Background(), StartRequest{TaskID: "t", Strategy: Immediate{}, Services: []string{"c"}})
	require.Error(t, err)
	assert.True(t, api.IsValidation(err), "the id is still held by a running goroutine")

	close(release)
	<-first.Done()

	second, err := o.Start(context.Background(), StartRequest{
		TaskID:   "t",
		Strategy: Gradual{BatchSize: 1, DelayBetweenBatches: time.Hour},
		Services: []string{"c", "d"},
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		task, _ := o.Get("t")
		return len(task.SuccessfulServices) == 1
	}, 5*time.Second, 5*time.Millisecond)

	task, err := o.Get("t")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, task.SuccessfulServices)
	assert.Empty(t, task.FailedServices)
	assert.Equal(t, PhaseInProgress, task.Status.Phase)

	require.NoError(t, o.Cancel("t"))
	select {
	case <-second.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("second migration kept running after Cancel")
	}

	task, err = o.Get("t")
	require.NoError(t, err)
	assert.Equal(t, cancelledByUser, task.Status.Error)
	assert.Equal(t, []string{"c"}, task.SuccessfulServices)
}

func TestRollback(t *testing.T) {
	dir := seededDirectory(t, "a", "b", "c")
	require.NoError(t, dir.InjectFault(api.OpRegister, "b", services.ErrInjectedFault))
	o := New(Config{Registrar: dir})

	task := startAndWait(t, o, StartRequest{
		TaskID:   "task-1",
		Strategy: Immediate{},
		Services: []string{"a", "b", "c"},
		Source:   sourceConfig,
		Target:   targetConfig,
	})
	require.Equal(t, PhaseFailed, task.Status.Phase)
	require.Equal(t, []string{"a", "c"}, task.SuccessfulServices)

	rolledBack, err := o.Rollback(context.Background(), "task-1")
	require.NoError(t, err)
	assert.Equal(t, PhaseRolledBack, rolledBack.Status.Phase)

	for _, name := range []string{"a", "c"} {
		cfg, ok := dir.Config(name)
		require.True(t, ok)
		assert.Equal(t, sourceConfig.BaseURL, cfg.BaseURL)
	}

	_, err = o.Rollback(context.Background(), "task-1")
	assert.True(t, api.IsValidation(err))

	_, err = o.Rollback(context.Background(), "unknown")
	assert.True(t, api.IsNotFound(err))
}

func TestRollback_OneAtATime(t *testing.T) {
	reg := newFakeRegistrar()
	o := New(Config{Registrar: reg})

	startAndWait(t, o, StartRequest{TaskID: "task-1", Strategy: Immediate{}, Services: []string{"a"}, Source: sourceConfig, Target: targetConfig})

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	reg.onUnregister = func(string) {
		once.Do(func() {
			close(entered)
			<-release
		})
	}

	type result struct {
		task Task
		err  error
	}
	done := make(chan result, 1)
	go func() {
		task, err := o.Rollback(context.Background(), "task-1")
		done <- result{task, err}
	}()
	<-entered

	_, err := o.Rollback(context.Background(), "task-1")
	require.Error(t, err)
	assert.True(t, api.IsValidation(err))

	close(release)
	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, PhaseRolledBack, res.task.Status.Phase)

	unregisters := 0
	for _, call := range reg.Calls() {
		if call == "unregister a" {
			unregisters++
		}
	}
	assert.Equal(t, 2, unregisters, "one migration and one restore")
}

func TestRollback_RunningTaskRejected(t *testing.T) {
	reg, entered, release := blockingRegistrar()
	defer close(release)
	o := New(Config{Registrar: reg})

	_, err := o.Start(context.Background(), StartRequest{TaskID: "running", Strategy: Immediate{}, Services: []string{"a"}})
	require.NoError(t, err)
	<-entered

	_, err = o.Rollback(context.Background(), "running")
	assert.True(t, api.IsValidation(err))
}

func TestRollback_ReportsRestoreFailures(t *testing.T) {
	dir := seededDirectory(t, "a")
	o := New(Config{Registrar: dir})

	startAndWait(t, o, StartRequest{TaskID: "task-1", Strategy: Immediate{}, Services: []string{"a"}, Target: targetConfig})
	require.NoError(t, dir.InjectFault(api.OpUnregister, "a", services.ErrInjectedFault))

	_, err := o.Rollback(context.Background(), "task-1")
	require.Error(t, err)
	assert.True(t, api.IsRegistration(err))

	task, err := o.Get("task-1")
	require.NoError(t, err)
	assert.Equal(t, PhaseCompleted, task.Status.Phase, "a failed rollback keeps the status")
}

func TestShutdown(t *testing.T) {
	o := New(Config{Registrar: newFakeRegistrar()})

	exec, err := o.Start(context.Background(), StartRequest{
		Strategy: Gradual{BatchSize: 1, DelayBetweenBatches: time.Hour},
		Services: []string{"a", "b"},
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		task, _ := o.Get(exec.ID())
		return len(task.SuccessfulServices) == 1
	}, 5*time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, o.Shutdown(ctx))

	task, err := o.Get(exec.ID())
	require.NoError(t, err)
	assert.Equal(t, PhaseFailed, task.Status.Phase)
	assert.Equal(t, "migration interrupted", task.Status.Error)
	assert.Equal(t, []string{"a"}, task.SuccessfulServices)

	assert.NoError(t, o.Shutdown(ctx), "nothing left to shut down")
}

func TestConcurrentMigrations(t *testing.T) {
	dir := seededDirectory(t, "a", "b", "c", "d", "e", "f")
	o := New(Config{Registrar: dir})

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			exec, err := o.Start(context.Background(), StartRequest{
				Strategy: Immediate{},
				Services: []string{string(rune('a' + i))},
				Target:   targetConfig,
			})
			if !assert.NoError(t, err) {
				return
			}
			<-exec.Done()
		}(i)
	}
	wg.Wait()

	assert.Len(t, o.List(), 6)
	assert.Empty(t, o.Active())
	for _, task := range o.List() {
		assert.Equal(t, PhaseCompleted, task.Status.Phase)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	fake := newFakeRegistrar()
	fake.failRegister["b"] = true
	o := New(Config{Registrar: fake, Metrics: m})

	startAndWait(t, o, StartRequest{Strategy: Immediate{}, Services: []string{"a", "b"}})
	startAndWait(t, o, StartRequest{Strategy: Gradual{BatchSize: 1}, Services: []string{"c"}})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.tasksStarted.WithLabelValues(StrategyImmediate)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tasksStarted.WithLabelValues(StrategyGradual)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tasksFinished.WithLabelValues(StrategyImmediate, OutcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tasksFinished.WithLabelValues(StrategyGradual, OutcomeCompleted)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.serviceMigrations.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.serviceMigrations.WithLabelValues("failure")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.activeTasks))
	assert.Equal(t, 1, testutil.CollectAndCount(m.taskDuration))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.taskStarted(StrategyImmediate)
	m.taskExited()
	m.taskFinished(StrategyImmediate, OutcomeCompleted, time.Second)
	m.serviceMigrated(true)
	m.serviceRestored()
}
