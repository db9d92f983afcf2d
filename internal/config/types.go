package config

import "time"

// DroverConfig is the top-level configuration structure for drover.
type DroverConfig struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Migration MigrationConfig `yaml:"migration"`
	Catalog   CatalogConfig   `yaml:"catalog"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn or error (default: info)
	Format string `yaml:"format,omitempty"` // text or json (default: text)
}

// AnalysisConfig configures the dependency analyzer.
type AnalysisConfig struct {
	// RootService is the service every other service ultimately authenticates
	// against. Its impact is always critical.
	RootService string `yaml:"rootService,omitempty"`
}

// MigrationConfig holds the planner's estimates and the defaults of the
// migrate command.
type MigrationConfig struct {
	PerServiceTime      time.Duration `yaml:"perServiceTime,omitempty"`
	DefaultBatchSize    int           `yaml:"defaultBatchSize,omitempty"`
	DefaultBatchDelay   time.Duration `yaml:"defaultBatchDelay,omitempty"`
	LargeScaleThreshold int           `yaml:"largeScaleThreshold,omitempty"`
	ScaleHintThreshold  int           `yaml:"scaleHintThreshold,omitempty"`
}

// CatalogConfig locates the service catalog.
type CatalogConfig struct {
	// Path is the catalog file. Relative paths are resolved against the
	// configuration directory.
	Path string `yaml:"path,omitempty"`
	// Watch reloads the catalog when the file changes.
	Watch bool `yaml:"watch,omitempty"`
}
