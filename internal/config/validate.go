package config

import (
	"fmt"
	"strconv"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateExport(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateExport() error {
	switch c.Export.Format {
	case "gpx", "tcx", "original":
	default:
		return fmt.Errorf("export.format must be one of gpx, tcx, original (got %q)", c.Export.Format)
	}
	if _, _, err := c.Export.CountTarget(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	return nil
}

// CountTarget interprets the count setting: either "all" (all=true) or a
// positive activity count.
func (e Export) CountTarget() (count int, all bool, err error) {
	if e.Count == "all" {
		return 0, true, nil
	}
	n, convErr := strconv.Atoi(e.Count)
	if convErr != nil || n <= 0 {
		return 0, false, fmt.Errorf("export.count must be a positive integer or \"all\" (got %q)", e.Count)
	}
	return n, false, nil
}
