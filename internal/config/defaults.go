package config

import (
	"time"

	"drover/internal/dependency"
	"drover/internal/migration"
	"drover/pkg/logging"
)

const (
	// DefaultCatalogFile is the catalog file name inside the config directory.
	DefaultCatalogFile = "catalog.yaml"

	DefaultBatchSize  = 5
	DefaultBatchDelay = 30 * time.Second
)

// GetDefaultConfig returns the configuration used when no config.yaml exists.
func GetDefaultConfig() DroverConfig {
	return DroverConfig{
		Logging: LoggingConfig{
			Level:  "info",
			Format: logging.FormatText,
		},
		Analysis: AnalysisConfig{
			RootService: dependency.DefaultRootService,
		},
		Migration: MigrationConfig{
			PerServiceTime:      migration.DefaultPerServiceTime,
			DefaultBatchSize:    DefaultBatchSize,
			DefaultBatchDelay:   DefaultBatchDelay,
			LargeScaleThreshold: migration.DefaultLargeScaleThreshold,
			ScaleHintThreshold:  migration.DefaultScaleHintThreshold,
		},
		Catalog: CatalogConfig{
			Path: DefaultCatalogFile,
		},
	}
}

// PlannerConfig converts the migration section for the planner.
func (c MigrationConfig) PlannerConfig() migration.PlannerConfig {
	return migration.PlannerConfig{
		PerServiceTime:      c.PerServiceTime,
		LargeScaleThreshold: c.LargeScaleThreshold,
		ScaleHintThreshold:  c.ScaleHintThreshold,
	}
}
