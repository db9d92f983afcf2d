package cmd

import (
	"time"

	"drover/internal/api"
	"drover/internal/config"
	"drover/internal/migration"

	"github.com/spf13/cobra"
)

// migrationFlags are the strategy and target flags shared by plan and
// migrate.
type migrationFlags struct {
	all bool

	strategy  string
	batchSize int
	delay     time.Duration
	canary    []string
	validate  bool

	targetAppID   string
	targetBaseURL string
	targetTimeout time.Duration
	targetLabels  map[string]string
}

func (f *migrationFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.BoolVar(&f.all, "all", false, "Migrate every service of the catalog")

	fs.StringVarP(&f.strategy, "strategy", "s", migration.StrategyImmediate, "Migration strategy (immediate, gradual, canary, blue-green)")
	fs.IntVar(&f.batchSize, "batch-size", 0, "Services per batch for the gradual strategy (default from config)")
	fs.DurationVar(&f.delay, "delay", 0, "Delay between batches for the gradual strategy (default from config)")
	fs.StringSliceVar(&f.canary, "canary", nil, "Canary services for the canary strategy")
	fs.BoolVar(&f.validate, "validate", false, "Validate the target before the blue-green switch")

	fs.StringVar(&f.targetAppID, "target-app-id", "", "App id of the target configuration (default: unchanged)")
	fs.StringVar(&f.targetBaseURL, "target-base-url", "", "Base URL of the target configuration (default: unchanged)")
	fs.DurationVar(&f.targetTimeout, "target-timeout", 0, "Timeout of the target configuration (default: unchanged)")
	fs.StringToStringVar(&f.targetLabels, "target-label", nil, "Labels added to the target configuration (key=value)")
}

// services returns the services to migrate: the arguments, or the whole
// catalog with --all.
func (f *migrationFlags) services(args []string, env *environment) []string {
	if f.all {
		return env.store.ServiceNames()
	}
	return args
}

// buildStrategy creates the selected strategy. Batch size and delay fall back
// to the configured defaults when their flags are not set.
func (f *migrationFlags) buildStrategy(cmd *cobra.Command, cfg config.MigrationConfig) (migration.Strategy, error) {
	opts := migration.StrategyOptions{
		BatchSize:            f.batchSize,
		DelayBetweenBatches:  f.delay,
		CanaryServices:       f.canary,
		ValidateBeforeSwitch: f.validate,
	}
	if !cmd.Flags().Changed("batch-size") {
		opts.BatchSize = cfg.DefaultBatchSize
	}
	if !cmd.Flags().Changed("delay") {
		opts.DelayBetweenBatches = cfg.DefaultBatchDelay
	}
	return migration.NewStrategy(f.strategy, opts)
}

// target derives the target configuration from source and the target flags.
func (f *migrationFlags) target(source api.ServiceConfig) api.ServiceConfig {
	target := source.Clone()
	if f.targetAppID != "" {
		target.AppID = f.targetAppID
	}
	if f.targetBaseURL != "" {
		target.BaseURL = f.targetBaseURL
	}
	if f.targetTimeout != 0 {
		target.Timeout = f.targetTimeout
	}
	if len(f.targetLabels) > 0 {
		if target.Labels == nil {
			target.Labels = make(map[string]string, len(f.targetLabels))
		}
		for k, v := range f.targetLabels {
			target.Labels[k] = v
		}
	}
	return target
}
