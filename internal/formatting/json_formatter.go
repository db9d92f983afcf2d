package formatting

import (
	"encoding/json"
	"io"
	"time"

	"drover/internal/dependency"
	"drover/internal/migration"
)

// JSONFormatter provides JSON output formatting
type JSONFormatter struct {
	options Options
	now     func() time.Time
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(options Options) *JSONFormatter {
	return &JSONFormatter{options: options, now: time.Now}
}

func (f *JSONFormatter) FormatReport(report *dependency.Report) error {
	return writeJSON(f.options.Writer, report)
}

func (f *JSONFormatter) FormatImpacts(impacts []*dependency.ImpactAnalysis) error {
	return writeJSON(f.options.Writer, impactViews(impacts))
}

func (f *JSONFormatter) FormatPlan(plan *migration.Plan) error {
	return writeJSON(f.options.Writer, NewPlanView(plan))
}

func (f *JSONFormatter) FormatTask(task migration.Task) error {
	return writeJSON(f.options.Writer, NewTaskView(task, f.now()))
}

func (f *JSONFormatter) FormatTasks(tasks []migration.Task) error {
	return writeJSON(f.options.Writer, taskViews(tasks, f.now()))
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
