package formatting

import (
	"errors"
	"fmt"
	"text/template"
	"time"

	"drover/internal/dependency"
	"drover/internal/migration"

	"github.com/Masterminds/sprig/v3"
)

// TemplateFormatter executes a user supplied Go template against the same
// views the JSON and YAML formatters serialize. All sprig functions are
// available.
type TemplateFormatter struct {
	options Options
	tmpl    *template.Template
	now     func() time.Time
}

// NewTemplateFormatter parses options.Template.
func NewTemplateFormatter(options Options) (*TemplateFormatter, error) {
	if options.Template == "" {
		return nil, errors.New("output format template requires a template")
	}

	tmpl, err := template.New("output").Funcs(sprig.TxtFuncMap()).Parse(options.Template)
	if err != nil {
		return nil, fmt.Errorf("failed to parse output template: %w", err)
	}

	return &TemplateFormatter{options: options, tmpl: tmpl, now: time.Now}, nil
}

func (f *TemplateFormatter) FormatReport(report *dependency.Report) error {
	return f.execute(report)
}

func (f *TemplateFormatter) FormatImpacts(impacts []*dependency.ImpactAnalysis) error {
	return f.execute(impactViews(impacts))
}

func (f *TemplateFormatter) FormatPlan(plan *migration.Plan) error {
	return f.execute(NewPlanView(plan))
}

func (f *TemplateFormatter) FormatTask(task migration.Task) error {
	return f.execute(NewTaskView(task, f.now()))
}

func (f *TemplateFormatter) FormatTasks(tasks []migration.Task) error {
	return f.execute(taskViews(tasks, f.now()))
}

func (f *TemplateFormatter) execute(data interface{}) error {
	if err := f.tmpl.Execute(f.options.Writer, data); err != nil {
		return fmt.Errorf("failed to render output template: %w", err)
	}
	return nil
}
