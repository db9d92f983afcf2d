package api

import "time"

// Service status values reported by the service directory. Directories may
// report other values; they are carried through unchanged.
const (
	StatusActive      = "active"
	StatusDegraded    = "degraded"
	StatusMaintenance = "maintenance"
	StatusInactive    = "inactive"
)

// ServiceInfo is the per-service metadata exposed by the service directory.
type ServiceInfo struct {
	Name   string `yaml:"name" json:"name"`
	Status string `yaml:"status" json:"status"`
}

// ServiceConfig is an opaque configuration snapshot that services are
// registered under. It is passed through unchanged by the orchestrator.
type ServiceConfig struct {
	AppID   string            `yaml:"appId" json:"appId"`
	BaseURL string            `yaml:"baseUrl" json:"baseUrl"`
	Timeout time.Duration     `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Labels  map[string]string `yaml:"labels,omitempty" json:"labels,omitempty"`
}

// Clone returns a deep copy of the configuration.
func (c ServiceConfig) Clone() ServiceConfig {
	out := c
	if c.Labels != nil {
		out.Labels = make(map[string]string, len(c.Labels))
		for k, v := range c.Labels {
			out.Labels[k] = v
		}
	}
	return out
}

// ServiceLister lists the services known to a directory.
type ServiceLister interface {
	ServiceNames() []string
	ServiceInfo(name string) (ServiceInfo, bool)
}

// Registrar is the only pair of operations the orchestrator performs against
// the live system.
type Registrar interface {
	Unregister(name string) error
	RegisterUnderConfig(names []string, cfg ServiceConfig) error
}
