package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"drover/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/drover"
	configFileName = "config.yaml"
)

// osUserHomeDir is replaced in tests.
var osUserHomeDir = os.UserHomeDir

// GetDefaultConfigPath returns ~/.config/drover.
func GetDefaultConfigPath() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// LoadConfig loads config.yaml from configPath over the defaults. A missing
// file yields the defaults. The loaded configuration is validated and the
// catalog path is made absolute.
func LoadConfig(configPath string) (DroverConfig, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
	case err != nil:
		logging.Info("ConfigLoader", "Error loading config.yaml from %s: %s", configFilePath, err)
		return DroverConfig{}, err
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return DroverConfig{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
		}
		logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	}

	if err := config.Validate(); err != nil {
		return DroverConfig{}, fmt.Errorf("invalid config %s: %w", configFilePath, err)
	}

	config.Catalog.Path = config.ResolveCatalogPath(configPath)
	return config, nil
}

// ResolveCatalogPath returns the catalog path, resolved against configPath
// when it is relative.
func (c DroverConfig) ResolveCatalogPath(configPath string) string {
	path := c.Catalog.Path
	if path == "" {
		path = DefaultCatalogFile
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(configPath, path)
}
