package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateSources(); err != nil {
		return err
	}
	if err := c.validateKnowledgeBase(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMatching() error {
	for key, value := range map[string]string{
		"matching.country_column": c.Matching.CountryColumn,
		"matching.state_column":   c.Matching.StateColumn,
		"matching.city_column":    c.Matching.CityColumn,
	} {
		if value == "" {
			return fmt.Errorf("%s must be set", key)
		}
	}
	if c.Matching.Workers <= 0 {
		return errors.New("matching.workers must be positive")
	}
	return nil
}

func (c *Config) validateSources() error {
	if c.Sources.ChunkSize <= 0 {
		return errors.New("sources.chunk_size must be positive")
	}
	if c.Sources.CatalogEnabled && c.Sources.CatalogFile == "" {
		return errors.New("sources.catalog_file must be set when sources.catalog_enabled is true")
	}
	return nil
}

func (c *Config) validateKnowledgeBase() error {
	if c.KnowledgeBase.Endpoint == "" {
		return errors.New("knowledge_base.endpoint must be set")
	}
	if c.KnowledgeBase.BatchSize <= 0 {
		return errors.New("knowledge_base.batch_size must be positive")
	}
	if c.KnowledgeBase.TimeoutSeconds <= 0 {
		return errors.New("knowledge_base.timeout_seconds must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
