package migration

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"drover/internal/api"
	"drover/internal/services"
)

// Validator checks that services can be switched to a target configuration.
type Validator interface {
	Validate(ctx context.Context, services []string, target api.ServiceConfig) error
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(ctx context.Context, services []string, target api.ServiceConfig) error

// Validate calls f.
func (f ValidatorFunc) Validate(ctx context.Context, services []string, target api.ServiceConfig) error {
	return f(ctx, services, target)
}

// CompatibilityResult is the pre-flight verdict for one service.
type CompatibilityResult struct {
	Service    string   `json:"service" yaml:"service"`
	Compatible bool     `json:"compatible" yaml:"compatible"`
	Issues     []string `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// CheckCompatibility runs the pre-flight checks for every service against
// target. lister may be nil, in which case directory checks are skipped.
func CheckCompatibility(lister api.ServiceLister, svcs []string, target api.ServiceConfig) []CompatibilityResult {
	configIssues := targetIssues(target)

	results := make([]CompatibilityResult, 0, len(svcs))
	for _, svc := range svcs {
		var issues []string
		if lister != nil {
			info, ok := lister.ServiceInfo(svc)
			switch {
			case !ok:
				issues = append(issues, "service is not known to the directory")
			case !services.IsAvailable(info.Status):
				issues = append(issues, fmt.Sprintf("service is %s", info.Status))
			}
		}
		issues = append(issues, configIssues...)

		results = append(results, CompatibilityResult{
			Service:    svc,
			Compatible: len(issues) == 0,
			Issues:     issues,
		})
	}
	return results
}

// targetIssues checks the target configuration itself.
func targetIssues(target api.ServiceConfig) []string {
	var issues []string
	if strings.TrimSpace(target.AppID) == "" {
		issues = append(issues, "target app id is empty")
	}
	if u, err := url.Parse(target.BaseURL); err != nil || !u.IsAbs() || u.Host == "" {
		issues = append(issues, fmt.Sprintf("target base URL %q is not an absolute URL", target.BaseURL))
	}
	if target.Timeout < 0 {
		issues = append(issues, fmt.Sprintf("target timeout %s is negative", target.Timeout))
	}
	return issues
}

// NewCompatibilityValidator returns a Validator that fails when any service
// does not pass CheckCompatibility.
func NewCompatibilityValidator(lister api.ServiceLister) Validator {
	return ValidatorFunc(func(ctx context.Context, svcs []string, target api.ServiceConfig) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		var failed []string
		for _, result := range CheckCompatibility(lister, svcs, target) {
			if !result.Compatible {
				failed = append(failed, fmt.Sprintf("%s: %s", result.Service, strings.Join(result.Issues, "; ")))
			}
		}
		if len(failed) > 0 {
			return fmt.Errorf("%d of %d services are incompatible with the target: %s",
				len(failed), len(svcs), strings.Join(failed, ", "))
		}
		return nil
	})
}
