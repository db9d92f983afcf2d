package cmd

import (
	"fmt"

	"drover/internal/catalog"
	"drover/internal/config"
	"drover/internal/dependency"
	"drover/internal/formatting"
	"drover/pkg/logging"

	"github.com/spf13/cobra"
)

// environment is what every analysis and migration command works with: the
// configuration, the catalog and an output formatter.
type environment struct {
	config      config.DroverConfig
	catalogPath string
	store       *catalog.Store
	analyzer    *dependency.Analyzer
	formatter   formatting.Formatter
}

// loadEnvironment reads the configuration and the catalog named by the
// persistent flags and sets up logging.
func loadEnvironment(cmd *cobra.Command) (*environment, error) {
	errOut := cmd.ErrOrStderr()

	// Until the configuration is read only warnings are shown, or everything
	// with --debug.
	initialLevel := logging.LevelWarn
	if rootDebug {
		initialLevel = logging.LevelDebug
	}
	logging.InitForCLI(initialLevel, errOut)

	configPath := rootConfigPath
	if configPath == "" {
		path, err := config.GetDefaultConfigPath()
		if err != nil {
			return nil, err
		}
		configPath = path
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	if rootDebug {
		level = logging.LevelDebug
	}
	logging.Init(level, cfg.Logging.Format, errOut)
	logging.Debug("ConfigLoader", "Effective configuration:\n%s", formatting.PrettyJSON(cfg))

	catalogPath := cfg.Catalog.Path
	if rootCatalogPath != "" {
		catalogPath = rootCatalogPath
	}
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load service catalog: %w", err)
	}
	store := catalog.NewStore(cat)

	format, err := formatting.ParseFormat(rootOutput)
	if err != nil {
		return nil, err
	}
	formatter, err := formatting.New(formatting.Options{
		Format:   format,
		Template: rootTemplate,
		Writer:   cmd.OutOrStdout(),
		NoColor:  rootNoColor,
	})
	if err != nil {
		return nil, err
	}

	return &environment{
		config:      cfg,
		catalogPath: catalogPath,
		store:       store,
		analyzer:    dependency.NewAnalyzer(store, cfg.Analysis.RootService),
		formatter:   formatter,
	}, nil
}
