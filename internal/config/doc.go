// Package config provides configuration management for drover.
//
// Configuration is loaded from config.yaml in a single directory. The default
// directory is ~/.config/drover; commands accept --config-path to use another
// one. Values in the file are merged over GetDefaultConfig, so a missing file
// or a partial one is fine.
//
// # Example
//
//	logging:
//	  level: debug
//	  format: json
//	analysis:
//	  rootService: authentication-service
//	migration:
//	  perServiceTime: 45s
//	  defaultBatchSize: 3
//	  defaultBatchDelay: 1m
//	catalog:
//	  path: services.yaml
//	  watch: true
//
// Relative catalog paths are resolved against the configuration directory.
package config
