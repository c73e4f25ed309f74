package config

import "time"

const (
	// DefaultThreshold is the similarity below which a review is flagged.
	DefaultThreshold  = 0.75
	defaultBaseURL    = "https://api.openai.com/v1"
	defaultModel      = "text-embedding-ada-002"
	defaultTimeout    = 30 * time.Second
	defaultCacheSize  = 100
	defaultRetryDelay = time.Second
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = defaultBaseURL
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = defaultModel
	}
	if cfg.Embedding.Timeout == 0 {
		cfg.Embedding.Timeout = defaultTimeout
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = defaultCacheSize
	}
	if cfg.Embedding.RetryDelay == 0 {
		cfg.Embedding.RetryDelay = defaultRetryDelay
	}
	if cfg.Analysis.Threshold == nil {
		t := DefaultThreshold
		cfg.Analysis.Threshold = &t
	}
}
