package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"georesolve/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != path {
		t.Fatalf("expected resolved path %q, got %q", path, resolved)
	}
	if cfg.Matching.Workers != 5 {
		t.Fatalf("expected default workers 5, got %d", cfg.Matching.Workers)
	}
	if cfg.Sources.ChunkSize != 10000 {
		t.Fatalf("expected default chunk size, got %d", cfg.Sources.ChunkSize)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("expected console log format, got %q", cfg.Logging.Format)
	}
	if !filepath.IsAbs(cfg.Paths.OutputDir) {
		t.Fatalf("expected absolute output dir, got %q", cfg.Paths.OutputDir)
	}
	if cfg.Paths.LogDir != filepath.Join(cfg.Paths.OutputDir, "logs") {
		t.Fatalf("expected log dir under output dir, got %q", cfg.Paths.LogDir)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
[matching]
country_column = "iso"
state_column = "region"
city_column = "town"
workers = 8

[logging]
format = "json"
level = "debug"
`)

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Matching.Workers != 8 {
		t.Fatalf("expected 8 workers, got %d", cfg.Matching.Workers)
	}
	mapping := cfg.ColumnMapping()
	if mapping["country_code"] != "iso" || mapping["state_name"] != "region" || mapping["city_name"] != "town" {
		t.Fatalf("unexpected column mapping: %#v", mapping)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json format, got %q", cfg.Logging.Format)
	}
}

func TestLoadRejectsBadLogFormat(t *testing.T) {
	path := writeConfig(t, `
[logging]
format = "xml"
`)

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unsupported log format")
	} else if !strings.Contains(err.Error(), "logging.format") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadRejectsCatalogWithoutFile(t *testing.T) {
	path := writeConfig(t, `
[sources]
catalog_enabled = true
`)

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error when catalog enabled without file")
	}
}

func TestLoadRejectsBlankColumn(t *testing.T) {
	path := writeConfig(t, `
[matching]
city_column = ""
`)

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for blank column mapping")
	}
}

func TestValidateRejectsNonPositiveWorkers(t *testing.T) {
	cfg := config.Default()
	cfg.Matching.Workers = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative workers")
	}
}

func TestCreateSample(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[matching]") {
		t.Fatal("sample config missing matching section")
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if cfg.Matching.CountryColumn != "country_code" {
		t.Fatalf("unexpected sample country column %q", cfg.Matching.CountryColumn)
	}
}
