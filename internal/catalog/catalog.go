package catalog

import (
	"fmt"
	"os"
	"path"

	"drover/internal/api"

	"gopkg.in/yaml.v3"
)

// Catalog is the on-disk description of the services drover knows about.
type Catalog struct {
	// Services lists the known services in the order analyses report them.
	Services []ServiceEntry `yaml:"services"`

	// Rules infer dependencies for services without an explicit dependsOn.
	// When the key is absent DefaultRules apply.
	Rules []Rule `yaml:"rules,omitempty"`

	// Config is the configuration the services currently run under. It is the
	// source snapshot of a migration.
	Config api.ServiceConfig `yaml:"config,omitempty"`

	// Faults lists services whose register or unregister calls fail in the
	// in-memory directory. Used for dry runs.
	Faults Faults `yaml:"faults,omitempty"`
}

// ServiceEntry describes one service of the catalog.
type ServiceEntry struct {
	Name   string `yaml:"name"`
	Status string `yaml:"status,omitempty"`

	// DependsOn lists the services this one depends on. A present but empty
	// list means "no dependencies" and disables rule matching for the service.
	DependsOn []string `yaml:"dependsOn,omitempty"`
}

// Faults names the services whose directory operations should fail.
type Faults struct {
	Register   []string `yaml:"register,omitempty"`
	Unregister []string `yaml:"unregister,omitempty"`
}

// Load reads and parses a catalog file.
func Load(filePath string) (*Catalog, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", filePath, err)
	}

	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", filePath, err)
	}
	return cat, nil
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	// An explicit "rules: []" disables inference; only a missing key selects
	// the defaults.
	var presence struct {
		Rules *[]Rule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &presence); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if presence.Rules == nil {
		cat.Rules = DefaultRules()
	}

	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Validate checks that service names are present and unique and that every
// rule pattern is well formed.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Services))
	for i, svc := range c.Services {
		if svc.Name == "" {
			return api.NewValidationError(fmt.Sprintf("services[%d].name", i), "service name is required")
		}
		if seen[svc.Name] {
			return api.NewValidationError(fmt.Sprintf("services[%d].name", i), "duplicate service %q", svc.Name)
		}
		seen[svc.Name] = true
	}

	for i, rule := range c.Rules {
		if rule.Match == "" {
			return api.NewValidationError(fmt.Sprintf("rules[%d].match", i), "pattern is required")
		}
		if _, err := path.Match(rule.Match, ""); err != nil {
			return api.NewValidationError(fmt.Sprintf("rules[%d].match", i), "bad pattern %q: %v", rule.Match, err)
		}
	}
	return nil
}

// ServiceNames returns the catalog's service names in declaration order.
func (c *Catalog) ServiceNames() []string {
	names := make([]string, 0, len(c.Services))
	for _, svc := range c.Services {
		names = append(names, svc.Name)
	}
	return names
}
