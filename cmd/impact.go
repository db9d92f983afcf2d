package cmd

import (
	"drover/internal/dependency"

	"github.com/spf13/cobra"
)

// impactCmd represents the impact command
var impactCmd = &cobra.Command{
	Use:   "impact [SERVICE...]",
	Short: "Show what migrating services would affect",
	Long: `Impact analyzes the migration impact of the given services: their direct
dependencies and dependents, everything that transitively depends on them,
a risk level, an estimated downtime and a recommended deployment strategy.

Without arguments every service of the catalog is analyzed.

Examples:
  drover impact billing-service
  drover impact billing-service orders-service -o yaml
  drover impact -o template --template '{{range .}}{{.Service}}: {{.RiskLevel}}{{"\n"}}{{end}}'`,
	RunE: runImpact,
}

func init() {
	rootCmd.AddCommand(impactCmd)
}

func runImpact(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	services := args
	if len(services) == 0 {
		services = env.store.ServiceNames()
	}

	impacts := make([]*dependency.ImpactAnalysis, 0, len(services))
	for _, svc := range services {
		impact, err := env.analyzer.AnalyzeImpact(ctx, svc)
		if err != nil {
			return err
		}
		impacts = append(impacts, impact)
	}

	return env.formatter.FormatImpacts(impacts)
}
