package config

import (
	"fmt"
	"strings"

	"drover/pkg/logging"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// Validate checks every section and returns all problems at once.
func (c DroverConfig) Validate() error {
	var errs ValidationErrors

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs.Add("logging.level", "must be one of: debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", logging.FormatText, logging.FormatJSON:
	default:
		errs.Add("logging.format", fmt.Sprintf("must be one of: %s, %s", logging.FormatText, logging.FormatJSON), c.Logging.Format)
	}

	if strings.TrimSpace(c.Analysis.RootService) == "" {
		errs.Add("analysis.rootService", "is required")
	}

	m := c.Migration
	if m.PerServiceTime <= 0 {
		errs.Add("migration.perServiceTime", "must be positive", m.PerServiceTime)
	}
	if m.DefaultBatchSize < 1 {
		errs.Add("migration.defaultBatchSize", "must be at least 1", m.DefaultBatchSize)
	}
	if m.DefaultBatchDelay < 0 {
		errs.Add("migration.defaultBatchDelay", "must not be negative", m.DefaultBatchDelay)
	}
	if m.LargeScaleThreshold < 1 {
		errs.Add("migration.largeScaleThreshold", "must be at least 1", m.LargeScaleThreshold)
	}
	if m.ScaleHintThreshold < 1 {
		errs.Add("migration.scaleHintThreshold", "must be at least 1", m.ScaleHintThreshold)
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
