// Package logging constructs the slog loggers used across the exporter. It
// provides a human-oriented console handler for interactive runs and a JSON
// handler for machine consumption, selected by configuration.
package logging
