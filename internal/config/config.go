// Package config provides configuration loading and structs for the reviewcheck server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
// It is loaded once at startup and treated as read-only afterwards.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Catalog   CatalogConfig   `yaml:"catalog"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// EmbeddingConfig holds embedding provider and cache settings.
type EmbeddingConfig struct {
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"`
	Model      string        `yaml:"model"`
	Timeout    time.Duration `yaml:"timeout"`
	CacheSize  int           `yaml:"cache_size"`
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
}

// AnalysisConfig holds scoring settings.
type AnalysisConfig struct {
	// Threshold is a pointer so that an explicit 0 is distinguishable from unset.
	Threshold *float64 `yaml:"threshold"`
}

// ThresholdOrDefault returns the configured threshold, or DefaultThreshold when unset.
func (a *AnalysisConfig) ThresholdOrDefault() float64 {
	if a.Threshold != nil {
		return *a.Threshold
	}
	return DefaultThreshold
}

// CatalogConfig locates the entity catalog. An empty path selects the built-in sample hotels.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// Load builds the configuration: the YAML file at path (skipped when path is empty),
// then a .env file in the working directory if present, then environment overrides,
// then defaults. The result is validated.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		// Only a catalog path written in the file is relative to the file.
		// CATALOG_PATH keeps the caller's working-directory meaning.
		if cfg.Catalog.Path != "" {
			cfg.Catalog.Path = expandPath(cfg.Catalog.Path, filepath.Dir(path))
		}
	}

	// A missing .env is normal; variables already set in the environment win.
	_ = godotenv.Load()
	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if t := c.Analysis.ThresholdOrDefault(); t < -1 || t > 1 {
		return fmt.Errorf("similarity threshold must be within [-1, 1], got %v", t)
	}
	if c.Embedding.CacheSize <= 0 {
		return fmt.Errorf("embedding cache_size must be positive, got %d", c.Embedding.CacheSize)
	}
	if c.Embedding.MaxRetries < 0 || c.Embedding.MaxRetries > 10 {
		return fmt.Errorf("embedding max_retries must be 0-10, got %d", c.Embedding.MaxRetries)
	}
	if c.Embedding.BaseURL == "" {
		return fmt.Errorf("embedding base_url is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be 1-65535, got %d", c.Server.Port)
	}
	return nil
}

// Redacted returns a copy of c with the API key masked, suitable for printing.
func (c *Config) Redacted() Config {
	out := *c
	if out.Embedding.APIKey != "" {
		out.Embedding.APIKey = "****"
	}
	return out
}

// Marshal renders c as YAML.
func Marshal(c Config) ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// expandPath resolves path against configDir. A leading "~/" means the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
		return path
	}
	return filepath.Join(configDir, path)
}
