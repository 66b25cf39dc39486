package config

import (
	"fmt"
	"time"
)

const (
	defaultFormat     = "gpx"
	defaultCount      = "1"
	defaultLogFormat  = "console"
	defaultLogLevel   = "info"
	defaultConfigPath = "~/.config/gcexport/config.toml"

	directorySuffix = "_garmin_connect_export"
)

// Default returns a Config populated with repository defaults. The export
// directory is left empty; normalize fills in the dated default so repeated
// runs on the same day append to the same export.
func Default() Config {
	return Config{
		Export: Export{
			Format: defaultFormat,
			Count:  defaultCount,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// DefaultDirectory returns the dated export directory used when none is
// configured, e.g. ./2026-08-28_garmin_connect_export.
func DefaultDirectory(now time.Time) string {
	return fmt.Sprintf("./%s%s", now.Format("2006-01-02"), directorySuffix)
}
