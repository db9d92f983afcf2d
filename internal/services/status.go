package services

import (
	"strings"

	"drover/internal/api"
)

// NormalizeStatus maps common spellings of a service status onto the
// directory's status values. Empty means active; unrecognized values are
// returned unchanged.
func NormalizeStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "", api.StatusActive, "running", "healthy", "up":
		return api.StatusActive
	case api.StatusDegraded, "unhealthy", "warning":
		return api.StatusDegraded
	case api.StatusMaintenance, "draining":
		return api.StatusMaintenance
	case api.StatusInactive, "stopped", "down", "disabled":
		return api.StatusInactive
	default:
		return status
	}
}

// IsAvailable reports whether a service in the given status can take part in
// a migration.
func IsAvailable(status string) bool {
	return NormalizeStatus(status) != api.StatusInactive
}
