package formatting

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"drover/internal/dependency"
	"drover/internal/migration"
)

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	options Options
	now     func() time.Time
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(options Options) *TableFormatter {
	return &TableFormatter{options: options, now: time.Now}
}

// FormatReport renders the summary, the per-service table and the findings.
func (f *TableFormatter) FormatReport(report *dependency.Report) error {
	if report.TotalServices == 0 {
		f.printEmpty("📋", "No services found")
		return nil
	}

	summary := f.createTable()
	summary.SetTitle("Dependency analysis")
	summary.AppendRows([]table.Row{
		{f.key("Services"), report.TotalServices},
		{f.key("Dependencies"), report.TotalDependencies},
		{f.key("Max depth"), report.MaxDepth},
		{f.key("Max fan-out"), report.MaxFanOut},
		{f.key("Average fan-out"), fmt.Sprintf("%.2f", report.AverageFanOut)},
		{f.key("Circular dependencies"), len(report.CircularDependencies)},
		{f.key("Isolated services"), joinOrDash(report.IsolatedServices)},
	})
	summary.Render()

	services := f.createTable()
	services.AppendHeader(f.header("SERVICE", "STATUS", "LEVEL", "FAN-IN", "FAN-OUT"))
	for _, s := range report.Services {
		services.AppendRow(table.Row{s.Name, f.status(s.Status), s.Level, s.FanIn, s.FanOut})
	}
	services.Render()

	if len(report.CircularDependencies) > 0 {
		cycles := f.createTable()
		cycles.SetTitle("Circular dependencies")
		cycles.AppendHeader(f.header("SEVERITY", "CYCLE"))
		for _, c := range report.CircularDependencies {
			cycles.AppendRow(table.Row{f.severity(c.Severity), cycleString(c.Services)})
		}
		cycles.Render()
	}

	if len(report.CriticalPaths) > 0 {
		paths := f.createTable()
		paths.SetTitle("Critical paths")
		paths.AppendHeader(f.header("SERVICE", "TYPE", "SCORE", "DEPENDENTS"))
		for _, p := range report.CriticalPaths {
			paths.AppendRow(table.Row{p.Service, p.PathType, p.ImpactScore, truncate(joinOrDash(p.Dependents), 80)})
		}
		paths.Render()
	}

	if len(report.Recommendations) > 0 {
		recs := f.createTable()
		recs.SetTitle("Recommendations")
		recs.AppendHeader(f.header("PRIORITY", "CATEGORY", "RECOMMENDATION", "SERVICES"))
		for _, r := range report.Recommendations {
			recs.AppendRow(table.Row{f.severity(r.Priority), r.Category, r.Title, truncate(joinOrDash(r.AffectedServices), 60)})
		}
		recs.Render()
	}
	return nil
}

// FormatImpacts renders one row per analyzed service.
func (f *TableFormatter) FormatImpacts(impacts []*dependency.ImpactAnalysis) error {
	if len(impacts) == 0 {
		f.printEmpty("📋", "No services analyzed")
		return nil
	}

	t := f.createTable()
	t.SetTitle("Migration impact")
	t.AppendHeader(f.header("SERVICE", "RISK", "DEPENDENCIES", "DEPENDENTS", "SCOPE", "DOWNTIME", "STRATEGY"))
	for _, impact := range impacts {
		t.AppendRow(table.Row{
			impact.Service,
			f.severity(impact.RiskLevel),
			joinOrDash(impact.DirectDependencies),
			joinOrDash(impact.Dependents),
			len(impact.ImpactScope),
			impact.EstimatedDowntime,
			impact.RecommendedStrategy,
		})
	}
	t.Render()
	return nil
}

// FormatPlan renders the plan summary, the compatibility results, the risks
// and the recommendations.
func (f *TableFormatter) FormatPlan(plan *migration.Plan) error {
	view := NewPlanView(plan)

	summary := f.createTable()
	summary.SetTitle("Migration plan")
	summary.AppendRows([]table.Row{
		{f.key("Strategy"), view.StrategyDetails},
		{f.key("Services"), truncate(joinOrDash(view.Services), 80)},
		{f.key("Estimated duration"), view.EstimatedDuration},
		{f.key("Compatible"), f.yesNo(view.Compatible)},
	})
	summary.Render()

	var incompatible []migration.CompatibilityResult
	for _, result := range view.Compatibility {
		if !result.Compatible {
			incompatible = append(incompatible, result)
		}
	}
	if len(incompatible) > 0 {
		t := f.createTable()
		t.SetTitle("Compatibility issues")
		t.AppendHeader(f.header("SERVICE", "ISSUE"))
		for _, result := range incompatible {
			for _, issue := range result.Issues {
				t.AppendRow(table.Row{result.Service, issue})
			}
		}
		t.Render()
	}

	if len(view.Risks) > 0 {
		t := f.createTable()
		t.SetTitle("Risks")
		t.AppendHeader(f.header("SEVERITY", "TYPE", "DESCRIPTION", "MITIGATION"))
		for _, r := range view.Risks {
			t.AppendRow(table.Row{f.riskSeverity(r.Severity), r.Type, truncate(r.Description, 80), truncate(r.Mitigation, 60)})
		}
		t.Render()
	}

	if len(view.Recommendations) > 0 {
		t := f.createTable()
		t.SetTitle("Recommendations")
		for i, rec := range view.Recommendations {
			t.AppendRow(table.Row{i + 1, rec})
		}
		t.Render()
	}
	return nil
}

// FormatTask renders the details of one task.
func (f *TableFormatter) FormatTask(task migration.Task) error {
	view := NewTaskView(task, f.now())

	t := f.createTable()
	t.SetTitle(fmt.Sprintf("Migration %s", view.ID))
	t.AppendRows([]table.Row{
		{f.key("Strategy"), view.Strategy},
		{f.key("Status"), f.phase(view.Phase)},
		{f.key("Progress"), fmt.Sprintf("%.0f%%", view.Progress)},
		{f.key("Duration"), view.Duration},
		{f.key("Services"), len(view.Services)},
		{f.key("Succeeded"), joinOrDash(view.SuccessfulServices)},
	})
	if view.Error != "" {
		t.AppendRow(table.Row{f.key("Error"), view.Error})
	}
	t.Render()

	if len(view.FailedServices) > 0 {
		failed := f.createTable()
		failed.SetTitle("Failed services")
		failed.AppendHeader(f.header("SERVICE", "ERROR"))
		for _, fs := range view.FailedServices {
			failed.AppendRow(table.Row{fs.Service, truncate(fs.Error, 100)})
		}
		failed.Render()
	}
	return nil
}

// FormatTasks renders one row per task.
func (f *TableFormatter) FormatTasks(tasks []migration.Task) error {
	if len(tasks) == 0 {
		f.printEmpty("📋", "No migrations found")
		return nil
	}

	now := f.now()
	t := f.createTable()
	t.AppendHeader(f.header("ID", "STRATEGY", "STATUS", "PROGRESS", "SERVICES", "FAILED", "DURATION"))
	for _, task := range tasks {
		view := NewTaskView(task, now)
		t.AppendRow(table.Row{
			view.ID,
			view.Strategy,
			f.phase(view.Phase),
			fmt.Sprintf("%.0f%%", view.Progress),
			len(view.Services),
			len(view.FailedServices),
			view.Duration,
		})
	}
	t.Render()
	return nil
}

// Helper methods

// createTable creates a new table with standard styling
func (f *TableFormatter) createTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(f.options.Writer)
	t.SetStyle(table.StyleRounded)
	return t
}

func (f *TableFormatter) printEmpty(icon, message string) {
	fmt.Fprintf(f.options.Writer, "%s %s\n", f.colorize(text.FgYellow, icon), f.colorize(text.FgYellow, message))
}

func (f *TableFormatter) header(columns ...string) table.Row {
	row := make(table.Row, len(columns))
	for i, c := range columns {
		row[i] = f.colorize(text.FgHiCyan, c)
	}
	return row
}

func (f *TableFormatter) key(s string) string {
	return f.colorize(text.FgHiCyan, s)
}

func (f *TableFormatter) colorize(c text.Color, s string) string {
	if f.options.NoColor {
		return s
	}
	return c.Sprint(s)
}

func (f *TableFormatter) yesNo(b bool) string {
	if b {
		return f.colorize(text.FgGreen, "yes")
	}
	return f.colorize(text.FgRed, "no")
}

func (f *TableFormatter) severity(s dependency.Severity) string {
	switch s {
	case dependency.SeverityCritical:
		return f.colorize(text.FgHiRed, s.String())
	case dependency.SeverityHigh:
		return f.colorize(text.FgRed, s.String())
	case dependency.SeverityMedium:
		return f.colorize(text.FgYellow, s.String())
	default:
		return f.colorize(text.FgGreen, s.String())
	}
}

func (f *TableFormatter) riskSeverity(s migration.RiskSeverity) string {
	switch s {
	case migration.RiskCritical:
		return f.colorize(text.FgHiRed, string(s))
	case migration.RiskWarning:
		return f.colorize(text.FgYellow, string(s))
	default:
		return string(s)
	}
}

func (f *TableFormatter) status(status string) string {
	switch status {
	case "":
		return "-"
	case "active":
		return f.colorize(text.FgGreen, status)
	case "inactive":
		return f.colorize(text.FgRed, status)
	default:
		return f.colorize(text.FgYellow, status)
	}
}

func (f *TableFormatter) phase(p migration.Phase) string {
	switch p {
	case migration.PhaseCompleted:
		return f.colorize(text.FgGreen, string(p))
	case migration.PhaseFailed:
		return f.colorize(text.FgRed, string(p))
	case migration.PhaseRolledBack:
		return f.colorize(text.FgYellow, string(p))
	default:
		return f.colorize(text.FgHiBlue, string(p))
	}
}

// cycleString renders a cycle as "a -> b -> a".
func cycleString(services []string) string {
	if len(services) == 0 {
		return "-"
	}
	return strings.Join(services, " -> ") + " -> " + services[0]
}
