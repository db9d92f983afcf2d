package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"drover/internal/catalog"
	"drover/pkg/logging"

	"github.com/spf13/cobra"
)

var analyzeWatch bool

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze the dependency graph of the catalog",
	Long: `Analyze builds the dependency graph of every service in the catalog and
reports dependency levels, circular dependencies, critical paths, isolated
services and recommendations.

With --watch the analysis is repeated whenever the catalog file changes.

Examples:
  drover analyze
  drover analyze --catalog services.yaml -o json
  drover analyze --watch`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().BoolVarP(&analyzeWatch, "watch", "w", false, "Re-run the analysis when the catalog changes")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := analyzeAndPrint(ctx, env); err != nil {
		return err
	}

	if !analyzeWatch && !env.config.Catalog.Watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := catalog.NewWatcher(catalog.WatcherConfig{
		Path:  env.catalogPath,
		Store: env.store,
		OnReload: func(*catalog.Catalog) {
			if err := analyzeAndPrint(ctx, env); err != nil {
				logging.Error("Analyzer", err, "Analysis after catalog reload failed")
			}
		},
	})
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to watch catalog: %w", err)
	}
	defer func() {
		if err := watcher.Stop(); err != nil {
			logging.Warn("CatalogWatcher", "Failed to stop watcher: %v", err)
		}
	}()

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s for changes. Press Ctrl+C to stop.\n", env.catalogPath)
	<-ctx.Done()
	return nil
}

func analyzeAndPrint(ctx context.Context, env *environment) error {
	report, err := env.analyzer.Analyze(ctx)
	if err != nil {
		return err
	}
	if report.HasCycles() {
		logging.Warn("Analyzer", "Catalog contains %d circular dependencies", len(report.CircularDependencies))
	}
	return env.formatter.FormatReport(report)
}
