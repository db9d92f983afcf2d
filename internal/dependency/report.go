package dependency

import "time"

// ServiceSummary is the per-service row of an analysis report.
type ServiceSummary struct {
	Name   string `json:"name" yaml:"name"`
	Status string `json:"status,omitempty" yaml:"status,omitempty"`
	Level  int    `json:"level" yaml:"level"`
	FanIn  int    `json:"fanIn" yaml:"fanIn"`
	FanOut int    `json:"fanOut" yaml:"fanOut"`
}

// Report is the structural health of one dependency graph.
type Report struct {
	GeneratedAt          time.Time            `json:"generatedAt" yaml:"generatedAt"`
	TotalServices        int                  `json:"totalServices" yaml:"totalServices"`
	TotalDependencies    int                  `json:"totalDependencies" yaml:"totalDependencies"`
	MaxDepth             int                  `json:"maxDepth" yaml:"maxDepth"`
	MaxFanOut            int                  `json:"maxFanOut" yaml:"maxFanOut"`
	AverageFanOut        float64              `json:"averageFanOut" yaml:"averageFanOut"`
	Services             []ServiceSummary     `json:"services" yaml:"services"`
	Levels               map[string]int       `json:"levels" yaml:"levels"`
	CircularDependencies []CircularDependency `json:"circularDependencies" yaml:"circularDependencies"`
	CriticalPaths        []CriticalPath       `json:"criticalPaths" yaml:"criticalPaths"`
	IsolatedServices     []string             `json:"isolatedServices" yaml:"isolatedServices"`
	Recommendations      []Recommendation     `json:"recommendations" yaml:"recommendations"`
}

// NewReport analyzes g. status may be nil; when set it supplies the status
// column of the per-service summary. Recommendations are attached.
func NewReport(g *Graph, rootService string, status func(name string) string) *Report {
	levels := Levels(g)

	r := &Report{
		GeneratedAt:          time.Now(),
		TotalServices:        g.Len(),
		TotalDependencies:    g.EdgeCount(),
		Levels:               levels,
		CircularDependencies: DetectCycles(g),
		CriticalPaths:        CriticalPaths(g, rootService),
		IsolatedServices:     IsolatedServices(g),
	}

	for _, name := range g.Services() {
		summary := ServiceSummary{
			Name:   name,
			Level:  levels[name],
			FanIn:  g.FanIn(name),
			FanOut: g.FanOut(name),
		}
		if status != nil {
			summary.Status = status(name)
		}
		r.Services = append(r.Services, summary)

		if summary.Level > r.MaxDepth {
			r.MaxDepth = summary.Level
		}
		if summary.FanOut > r.MaxFanOut {
			r.MaxFanOut = summary.FanOut
		}
	}
	if r.TotalServices > 0 {
		r.AverageFanOut = float64(r.TotalDependencies) / float64(r.TotalServices)
	}

	r.Recommendations = Recommend(r)
	return r
}

// HasCycles reports whether any circular dependency was found.
func (r *Report) HasCycles() bool {
	return len(r.CircularDependencies) > 0
}

func (r *Report) servicesWhere(match func(ServiceSummary) bool) []string {
	var out []string
	for _, s := range r.Services {
		if match(s) {
			out = append(out, s.Name)
		}
	}
	return out
}
