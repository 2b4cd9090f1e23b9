package testsupport

import (
	"path/filepath"
	"testing"

	"georesolve/internal/config"
)

// ConfigOption customizes the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config rooted in a unique temp directory per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Sources.PlacesFile = filepath.Join(base, "allCountries.txt")
	cfg.KnowledgeBase.CachePath = filepath.Join(base, "cache", "knowledge_cache.json")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithWorkers sets the batch matching pool width.
func WithWorkers(workers int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Matching.Workers = workers
	}
}

// WithCatalog enables the secondary catalog at path.
func WithCatalog(path string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Sources.CatalogEnabled = true
		cfg.Sources.CatalogFile = path
	}
}
