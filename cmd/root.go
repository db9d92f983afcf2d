package cmd

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeMigrationFailed indicates a migration ran but did not complete.
	ExitCodeMigrationFailed = 2
)

var (
	rootConfigPath  string
	rootCatalogPath string
	rootDebug       bool
	rootOutput      string
	rootTemplate    string
	rootNoColor     bool
)

// rootCmd represents the base command for the drover application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "drover",
	Short: "Analyze service dependencies and migrate service configurations",
	Long: `drover builds the dependency graph of the services in a catalog and
reports its structural health: dependency levels, circular dependencies,
critical services and isolated services.

It plans and runs migrations of services to a new configuration using an
immediate, gradual, canary or blue-green strategy.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "drover version %s\n" .Version}}`)

	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}

	var migrationFailed *MigrationFailedError
	if errors.As(err, &migrationFailed) {
		return ExitCodeMigrationFailed
	}

	// Validation, not-found and every other error.
	return ExitCodeError
}

func init() {
	rootCmd.AddCommand(newVersionCmd())

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rootConfigPath, "config-path", "", "Configuration directory (default is $HOME/.config/drover)")
	flags.StringVar(&rootCatalogPath, "catalog", "", "Service catalog file (overrides catalog.path from the configuration)")
	flags.BoolVar(&rootDebug, "debug", false, "Enable debug logging")
	flags.StringVarP(&rootOutput, "output", "o", "table", "Output format (table, json, yaml, template)")
	flags.StringVar(&rootTemplate, "template", "", "Go template for --output template (sprig functions are available)")
	flags.BoolVar(&rootNoColor, "no-color", false, "Disable colored table output")
}
