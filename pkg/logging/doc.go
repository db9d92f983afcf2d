// Package logging provides subsystem-tagged structured logging for drover.
//
// It is a thin layer over Go's slog package. Every entry carries the
// subsystem that produced it, so output from the analyzer, the planner and
// concurrently running migrations can be told apart and filtered.
//
// # Usage
//
//	logging.Init(logging.LevelInfo, logging.FormatText, os.Stderr)
//
//	logging.Info("Orchestrator", "Started migration %s (%d services)", id, n)
//	logging.Debug("Analyzer", "Built graph with %d services", g.Len())
//	logging.Error("Directory", err, "Failed to register %s", name)
//
// Two output formats are available: FormatText (key=value, the default) and
// FormatJSON for log shippers.
//
// Before Init is called only warnings and errors are written, to stderr.
//
// # Thread Safety
//
// All functions are safe for concurrent use. Init may be called again to
// replace the logger, for example after the configuration file is loaded.
package logging
