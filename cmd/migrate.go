package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"drover/internal/api"
	"drover/internal/catalog"
	"drover/internal/formatting"
	"drover/internal/migration"
	"drover/internal/services"
	"drover/pkg/logging"

	"github.com/briandowns/spinner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	migrateFlags    migrationFlags
	migrateTaskID   string
	migrateRollback bool
	migrateMetrics  bool
	migrateQuiet    bool
	migrateSplit    int
)

// MigrationFailedError is returned when a migration ran but did not complete.
type MigrationFailedError struct {
	TaskID string
	Status migration.Status
}

func (e *MigrationFailedError) Error() string {
	return fmt.Sprintf("migration %s %s", e.TaskID, e.Status)
}

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate [SERVICE...]",
	Short: "Migrate services to a new configuration",
	Long: `Migrate switches services from the catalog's source configuration to the
target configuration using the chosen strategy and reports the result.

Services are migrated against an in-memory service directory seeded from the
catalog. The catalog's faults section makes registrations of individual
services fail, which allows rehearsing failures and rollbacks.

Strategies:
  immediate   - migrate every service in order
  gradual     - migrate batches of --batch-size services, waiting --delay in between
  canary      - migrate the --canary services first, roll them back if one fails
  blue-green  - optionally --validate the target, then switch every service

With --split the services are divided into groups of at most that many
services, each migrated as its own task. The tasks run side by side and are
listed together at the end.

Press Ctrl+C to cancel a running migration.

Examples:
  drover migrate billing-service --target-base-url https://api.example.com
  drover migrate --all --strategy gradual --batch-size 2 --delay 5s
  drover migrate --all --strategy canary --canary billing-service --rollback
  drover migrate --all --split 10`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateFlags.register(migrateCmd)

	migrateCmd.Flags().StringVar(&migrateTaskID, "task-id", "", "Id of the migration task (default: random)")
	migrateCmd.Flags().BoolVar(&migrateRollback, "rollback", false, "Roll successfully migrated services back when the migration fails")
	migrateCmd.Flags().BoolVar(&migrateMetrics, "metrics", false, "Print the migration metrics after the migration")
	migrateCmd.Flags().BoolVarP(&migrateQuiet, "quiet", "q", false, "Do not show progress")
	migrateCmd.Flags().IntVar(&migrateSplit, "split", 0, "Migrate the services as separate tasks of at most this many services (0: one task)")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}

	strategy, err := migrateFlags.buildStrategy(cmd, env.config.Migration)
	if err != nil {
		return err
	}

	source := env.store.SourceConfig()
	directory, err := newDirectory(env.store, source)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	orch := migration.New(migration.Config{
		Registrar: directory,
		Validator: migration.NewCompatibilityValidator(directory),
		Metrics:   migration.NewMetrics(registry),
	})
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := orch.Shutdown(shutdownCtx); err != nil {
			logging.Warn("Orchestrator", "Shutdown did not complete: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if migrateSplit < 0 {
		return api.NewValidationError("split", "--split must not be negative")
	}
	svcs := migrateFlags.services(args, env)
	groups := splitServices(svcs, migrateSplit)
	if len(groups) > 1 && strategy.Name() == migration.StrategyCanary {
		return api.NewValidationError("split", "--split cannot be combined with the canary strategy")
	}

	target := migrateFlags.target(source)
	execs := make([]*migration.Execution, 0, len(groups))
	for i, group := range groups {
		exec, err := orch.Start(ctx, migration.StartRequest{
			TaskID:   groupTaskID(migrateTaskID, i, len(groups)),
			Strategy: strategy,
			Services: group,
			Source:   source,
			Target:   target,
		})
		if err != nil {
			return err
		}
		execs = append(execs, exec)
	}

	showProgress := !migrateQuiet && rootOutput == string(formatting.FormatTable)
	tasks, err := waitForMigrations(ctx, orch, execs, showProgress, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	for i, task := range tasks {
		if !migrateRollback || task.Status.Phase != migration.PhaseFailed || len(task.SuccessfulServices) == 0 {
			continue
		}
		rolledBack, err := orch.Rollback(context.Background(), task.ID)
		if err != nil {
			logging.Error("Orchestrator", err, "Rollback of %s was incomplete", task.ID)
			continue
		}
		tasks[i] = rolledBack
	}

	for _, svc := range svcs {
		if !directory.IsRegistered(svc) {
			logging.Warn("Directory", "%s is left unregistered", svc)
		}
	}

	if len(tasks) == 1 {
		err = env.formatter.FormatTask(tasks[0])
	} else {
		err = env.formatter.FormatTasks(tasks)
	}
	if err != nil {
		return err
	}
	if migrateMetrics {
		if err := printMetrics(cmd.OutOrStdout(), registry, rootNoColor); err != nil {
			return err
		}
	}

	for _, task := range tasks {
		if task.Status.Phase != migration.PhaseCompleted {
			return &MigrationFailedError{TaskID: task.ID, Status: task.Status}
		}
	}
	return nil
}

// splitServices divides svcs into groups of at most size services. A size of
// zero keeps every service in one group.
func splitServices(svcs []string, size int) [][]string {
	if size <= 0 || len(svcs) <= size {
		return [][]string{svcs}
	}
	var groups [][]string
	for start := 0; start < len(svcs); start += size {
		end := min(start+size, len(svcs))
		groups = append(groups, svcs[start:end])
	}
	return groups
}

// groupTaskID numbers the task ids of split migrations. An empty id stays
// empty so the orchestrator generates one.
func groupTaskID(id string, i, n int) string {
	if id == "" || n == 1 {
		return id
	}
	return fmt.Sprintf("%s-%d", id, i+1)
}

// newDirectory seeds an in-memory directory with the catalog's services,
// registered under source, and injects the catalog's faults.
func newDirectory(store *catalog.Store, source api.ServiceConfig) (*services.Directory, error) {
	directory := services.NewDirectory()
	if err := directory.Seed(store, source); err != nil {
		return nil, err
	}

	faults := store.Catalog().Faults
	inject := func(op string, names []string) error {
		for _, name := range names {
			if err := directory.InjectFault(op, name, services.ErrInjectedFault); err != nil {
				return err
			}
			logging.Debug("Directory", "Injected %s fault for %s", op, name)
		}
		return nil
	}
	if err := inject(api.OpRegister, faults.Register); err != nil {
		return nil, err
	}
	if err := inject(api.OpUnregister, faults.Unregister); err != nil {
		return nil, err
	}
	return directory, nil
}

// waitForMigrations waits for every execution to finish, showing a spinner
// with the progress. When ctx is cancelled the migrations are cancelled and
// their final state returned.
func waitForMigrations(ctx context.Context, orch *migration.Orchestrator, execs []*migration.Execution, showProgress bool, w io.Writer) ([]migration.Task, error) {
	var s *spinner.Spinner
	if showProgress {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
		s.Suffix = " Migrating services..."
		s.Start()
		defer s.Stop()
	}

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for _, exec := range execs {
	wait:
		for {
			select {
			case <-exec.Done():
				break wait
			case <-ctx.Done():
				logging.Warn("Orchestrator", "Interrupted, cancelling %d migrations", len(execs))
				for _, e := range execs {
					e.Cancel()
				}
				return collectTasks(orch, execs)
			case <-ticker.C:
				if s == nil {
					continue
				}
				s.Lock()
				s.Suffix = " Migrating services... " + progressSummary(orch, execs)
				s.Unlock()
			}
		}
	}
	return collectTasks(orch, execs)
}

// collectTasks waits for every execution and returns the final tasks in
// start order.
func collectTasks(orch *migration.Orchestrator, execs []*migration.Execution) ([]migration.Task, error) {
	tasks := make([]migration.Task, 0, len(execs))
	for _, exec := range execs {
		<-exec.Done()
		task, err := orch.Get(exec.ID())
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func progressSummary(orch *migration.Orchestrator, execs []*migration.Execution) string {
	if len(execs) == 1 {
		task, err := orch.Get(execs[0].ID())
		if err != nil {
			return ""
		}
		return task.Status.String()
	}
	return fmt.Sprintf("%d of %d tasks running", len(orch.Active()), len(execs))
}
