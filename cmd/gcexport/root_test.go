package main

import (
	"errors"
	"strings"
	"testing"

	"gcexport/internal/config"
	"gcexport/internal/export"
	"gcexport/internal/services"
)

func changedSet(names ...string) func(string) bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return func(name string) bool { return set[name] }
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Garmin.Username = "configured@example.org"
	cfg.Garmin.Password = "from-config"
	cfg.Export.Directory = "/tmp/exports"
	return &cfg
}

func TestExportOptionsUsesConfigValues(t *testing.T) {
	opts, err := exportOptions(testConfig(), rootFlags{}, changedSet())
	if err != nil {
		t.Fatalf("export options: %v", err)
	}
	if opts.Username != "configured@example.org" || opts.Password != "from-config" {
		t.Fatalf("credentials not taken from config: %+v", opts)
	}
	if opts.Format != export.FormatGPX {
		t.Fatalf("default format = %v, want gpx", opts.Format)
	}
	if opts.All || opts.Count != 1 {
		t.Fatalf("default count should resolve to one activity: %+v", opts)
	}
}

func TestExportOptionsFlagOverrides(t *testing.T) {
	flags := rootFlags{
		username: "flag@example.org",
		password: "from-flag",
		format:   "original",
		count:    "25",
		unzip:    true,
	}
	opts, err := exportOptions(testConfig(), flags, changedSet("username", "password", "format", "count", "unzip"))
	if err != nil {
		t.Fatalf("export options: %v", err)
	}
	if opts.Username != "flag@example.org" || opts.Password != "from-flag" {
		t.Fatalf("flags should override config credentials: %+v", opts)
	}
	if opts.Format != export.FormatOriginal || !opts.Unzip {
		t.Fatalf("format/unzip overrides lost: %+v", opts)
	}
	if opts.All || opts.Count != 25 {
		t.Fatalf("count override lost: %+v", opts)
	}
}

func TestExportOptionsUnchangedFlagsDoNotClobber(t *testing.T) {
	// The flag struct holds zero values; without Changed they must not erase
	// configured settings.
	opts, err := exportOptions(testConfig(), rootFlags{format: "", count: ""}, changedSet())
	if err != nil {
		t.Fatalf("export options: %v", err)
	}
	if opts.Directory != "/tmp/exports" {
		t.Fatalf("directory = %q, want configured value", opts.Directory)
	}
}

func TestExportOptionsRequiresCredentials(t *testing.T) {
	cfg := testConfig()
	cfg.Garmin.Password = ""
	_, err := exportOptions(cfg, rootFlags{}, changedSet())
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestExportOptionsRejectsBadFormat(t *testing.T) {
	_, err := exportOptions(testConfig(), rootFlags{format: "kml"}, changedSet("format"))
	if err == nil || !strings.Contains(err.Error(), "kml") {
		t.Fatalf("expected format error naming the value, got %v", err)
	}
}

func TestRootCommandFlags(t *testing.T) {
	cmd := newRootCommand()
	for _, name := range []string{"username", "password", "directory", "format", "count", "unzip"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Fatalf("missing flag --%s", name)
		}
	}
	if cmd.PersistentFlags().Lookup("config") == nil {
		t.Fatal("missing persistent flag --config")
	}
}
