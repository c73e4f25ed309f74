package config

import (
	"fmt"
	"strconv"
	"time"
)

// Environment variables recognized by ApplyEnv.
const (
	EnvAPIURL      = "OPENAI_API_URL"
	EnvAPIKey      = "OPENAI_API_KEY"
	EnvModel       = "EMBEDDING_MODEL"
	EnvThreshold   = "SIMILARITY_THRESHOLD"
	EnvCacheSize   = "EMBEDDING_CACHE_SIZE"
	EnvTimeout     = "EMBEDDING_TIMEOUT"
	EnvMaxRetries  = "EMBEDDING_MAX_RETRIES"
	EnvRetryDelay  = "EMBEDDING_RETRY_DELAY"
	EnvHost        = "APP_HOST"
	EnvPort        = "APP_PORT"
	EnvCatalogPath = "CATALOG_PATH"
	EnvDebug       = "APP_DEBUG"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides cfg with any set, non-empty environment variables.
// Malformed numbers and durations are reported rather than ignored.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		return v, ok && v != ""
	}

	if v, ok := get(EnvAPIURL); ok {
		cfg.Embedding.BaseURL = v
	}
	if v, ok := get(EnvAPIKey); ok {
		cfg.Embedding.APIKey = v
	}
	if v, ok := get(EnvModel); ok {
		cfg.Embedding.Model = v
	}
	if v, ok := get(EnvHost); ok {
		cfg.Server.Host = v
	}
	if v, ok := get(EnvCatalogPath); ok {
		cfg.Catalog.Path = v
	}
	if v, ok := get(EnvThreshold); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return envError(EnvThreshold, v, err)
		}
		cfg.Analysis.Threshold = &f
	}
	if v, ok := get(EnvDebug); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError(EnvDebug, v, err)
		}
		cfg.Debug = b
	}

	ints := []struct {
		key string
		dst *int
	}{
		{EnvPort, &cfg.Server.Port},
		{EnvCacheSize, &cfg.Embedding.CacheSize},
		{EnvMaxRetries, &cfg.Embedding.MaxRetries},
	}
	for _, it := range ints {
		if v, ok := get(it.key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return envError(it.key, v, err)
			}
			*it.dst = n
		}
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{EnvTimeout, &cfg.Embedding.Timeout},
		{EnvRetryDelay, &cfg.Embedding.RetryDelay},
	}
	for _, d := range durations {
		if v, ok := get(d.key); ok {
			dur, err := time.ParseDuration(v)
			if err != nil {
				return envError(d.key, v, err)
			}
			*d.dst = dur
		}
	}
	return nil
}

func envError(key, value string, err error) error {
	return fmt.Errorf("invalid %s=%q: %w", key, value, err)
}
