// Package config loads, normalizes, and validates the exporter configuration
// from a TOML file, with defaults suitable for a first run.
package config
