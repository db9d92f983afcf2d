package formatting

import (
	"io"
	"time"

	"drover/internal/dependency"
	"drover/internal/migration"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter provides YAML output formatting
type YAMLFormatter struct {
	options Options
	now     func() time.Time
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(options Options) *YAMLFormatter {
	return &YAMLFormatter{options: options, now: time.Now}
}

func (f *YAMLFormatter) FormatReport(report *dependency.Report) error {
	return writeYAML(f.options.Writer, report)
}

func (f *YAMLFormatter) FormatImpacts(impacts []*dependency.ImpactAnalysis) error {
	return writeYAML(f.options.Writer, impactViews(impacts))
}

func (f *YAMLFormatter) FormatPlan(plan *migration.Plan) error {
	return writeYAML(f.options.Writer, NewPlanView(plan))
}

func (f *YAMLFormatter) FormatTask(task migration.Task) error {
	return writeYAML(f.options.Writer, NewTaskView(task, f.now()))
}

func (f *YAMLFormatter) FormatTasks(tasks []migration.Task) error {
	return writeYAML(f.options.Writer, taskViews(tasks, f.now()))
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
