package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeSources(); err != nil {
		return err
	}
	c.normalizeMatching()
	if err := c.normalizeKnowledgeBase(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.OutputDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSources() error {
	var err error
	c.Sources.PlacesFile = strings.TrimSpace(c.Sources.PlacesFile)
	if c.Sources.PlacesFile != "" {
		if c.Sources.PlacesFile, err = expandPath(c.Sources.PlacesFile); err != nil {
			return fmt.Errorf("sources.places_file: %w", err)
		}
	}
	c.Sources.CatalogFile = strings.TrimSpace(c.Sources.CatalogFile)
	if c.Sources.CatalogFile != "" {
		if c.Sources.CatalogFile, err = expandPath(c.Sources.CatalogFile); err != nil {
			return fmt.Errorf("sources.catalog_file: %w", err)
		}
	}
	if c.Sources.ChunkSize <= 0 {
		c.Sources.ChunkSize = defaultChunkSize
	}
	return nil
}

func (c *Config) normalizeMatching() {
	c.Matching.CountryColumn = strings.TrimSpace(c.Matching.CountryColumn)
	c.Matching.StateColumn = strings.TrimSpace(c.Matching.StateColumn)
	c.Matching.CityColumn = strings.TrimSpace(c.Matching.CityColumn)
	if c.Matching.Workers <= 0 {
		c.Matching.Workers = defaultMatchWorkers
	}
}

func (c *Config) normalizeKnowledgeBase() error {
	var err error
	c.KnowledgeBase.Endpoint = strings.TrimSpace(c.KnowledgeBase.Endpoint)
	if c.KnowledgeBase.Endpoint == "" {
		c.KnowledgeBase.Endpoint = defaultKBEndpoint
	}
	if strings.TrimSpace(c.KnowledgeBase.CachePath) == "" {
		c.KnowledgeBase.CachePath = filepath.Join(c.Paths.OutputDir, "cache", "knowledge_cache.json")
	}
	if c.KnowledgeBase.CachePath, err = expandPath(c.KnowledgeBase.CachePath); err != nil {
		return fmt.Errorf("knowledge_base.cache_path: %w", err)
	}
	if c.KnowledgeBase.BatchSize <= 0 {
		c.KnowledgeBase.BatchSize = defaultKBBatchSize
	}
	if c.KnowledgeBase.CacheTTLDays <= 0 {
		c.KnowledgeBase.CacheTTLDays = defaultKBCacheTTLDays
	}
	if c.KnowledgeBase.TimeoutSeconds <= 0 {
		c.KnowledgeBase.TimeoutSeconds = defaultKBTimeoutSeconds
	}
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
