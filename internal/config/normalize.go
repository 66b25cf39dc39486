package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

func (c *Config) normalize() error {
	var err error
	if c.Export.Directory, err = expandPath(c.Export.Directory); err != nil {
		return fmt.Errorf("export.directory: %w", err)
	}
	if strings.TrimSpace(c.Export.Directory) == "" {
		c.Export.Directory = DefaultDirectory(time.Now())
	}
	c.Export.Format = strings.ToLower(strings.TrimSpace(c.Export.Format))
	if c.Export.Format == "" {
		c.Export.Format = defaultFormat
	}
	c.Export.Count = strings.ToLower(strings.TrimSpace(c.Export.Count))
	if c.Export.Count == "" {
		c.Export.Count = defaultCount
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	return trimmed, nil
}

func dirOf(path string) string {
	return filepath.Dir(path)
}
