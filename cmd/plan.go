package cmd

import (
	"drover/internal/migration"

	"github.com/spf13/cobra"
)

var planFlags migrationFlags

// planCmd represents the plan command
var planCmd = &cobra.Command{
	Use:   "plan [SERVICE...]",
	Short: "Plan a migration without running it",
	Long: `Plan estimates the duration of a migration, checks every service against
the target configuration and lists the risks and recommendations of the
chosen strategy. Nothing is migrated.

The source configuration is the catalog's config section; target flags that
are not set keep the source value.

Examples:
  drover plan billing-service orders-service --target-base-url https://api.example.com
  drover plan --all --strategy gradual --batch-size 5 --delay 1m
  drover plan orders-service --strategy canary --canary orders-service -o json`,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
	planFlags.register(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}

	strategy, err := planFlags.buildStrategy(cmd, env.config.Migration)
	if err != nil {
		return err
	}

	source := env.store.SourceConfig()
	planner := migration.NewPlanner(env.store, env.analyzer, env.config.Migration.PlannerConfig())
	plan, err := planner.Plan(cmd.Context(), migration.PlanRequest{
		Services: planFlags.services(args, env),
		Strategy: strategy,
		Source:   source,
		Target:   planFlags.target(source),
	})
	if err != nil {
		return err
	}

	return env.formatter.FormatPlan(plan)
}
