// Package formatting renders analysis reports, impact analyses, migration
// plans and migration tasks for the CLI.
//
// Every renderer writes to Options.Writer. Table output is meant for humans;
// JSON, YAML and template output share the same view types so scripts see
// identical field names whichever format they pick.
package formatting

import (
	"fmt"
	"io"
	"os"
	"strings"

	"drover/internal/dependency"
	"drover/internal/migration"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatTable    OutputFormat = "table"    // Rich table output
	FormatJSON     OutputFormat = "json"     // JSON output
	FormatYAML     OutputFormat = "yaml"     // YAML output
	FormatTemplate OutputFormat = "template" // Go template with sprig functions
)

// Options configures the formatter behavior
type Options struct {
	Format OutputFormat
	// Template is the Go template used by FormatTemplate.
	Template string
	// Writer receives the output. Defaults to os.Stdout.
	Writer  io.Writer
	NoColor bool
}

// Formatter renders drover's results.
type Formatter interface {
	FormatReport(report *dependency.Report) error
	FormatImpacts(impacts []*dependency.ImpactAnalysis) error
	FormatPlan(plan *migration.Plan) error
	FormatTask(task migration.Task) error
	FormatTasks(tasks []migration.Task) error
}

// ParseFormat converts a --output flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch format := OutputFormat(strings.ToLower(strings.TrimSpace(s))); format {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON, FormatYAML, FormatTemplate:
		return format, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (expected table, json, yaml or template)", s)
	}
}

// New creates the formatter for options.Format.
func New(options Options) (Formatter, error) {
	if options.Writer == nil {
		options.Writer = os.Stdout
	}

	switch options.Format {
	case FormatJSON:
		return NewJSONFormatter(options), nil
	case FormatYAML:
		return NewYAMLFormatter(options), nil
	case FormatTemplate:
		return NewTemplateFormatter(options)
	case FormatTable, "":
		return NewTableFormatter(options), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", options.Format)
	}
}
