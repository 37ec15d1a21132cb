// Package catalog provides the product catalog client used by cart
// enrichment: an HTTP search client against the catalog service with retry
// and circuit breaking, plus an optional Redis read-through cache in front
// of it. The cache is strictly an optimization; any Redis failure falls
// through to the catalog service.
package catalog

import (
	"fmt"
	"net/url"
	"time"

	"mangwale-nlu/pkg/config"
)

// Config holds catalog client and cache settings.
type Config struct {
	// BaseURL is the catalog service base URL; search requests go to
	// BaseURL + "/v1/products/search".
	BaseURL string

	// Timeout is the per-call HTTP timeout.
	Timeout time.Duration

	// RedisAddr enables the read-through cache when non-empty.
	RedisAddr string

	// CacheTTL is how long a search result (hit or miss) stays cached.
	CacheTTL time.Duration
}

// LoadConfig loads catalog configuration from environment variables.
//
// Environment variables:
//   - CATALOG_BASE_URL: catalog service base URL (default: http://localhost:8600)
//   - CATALOG_TIMEOUT: per-call timeout (default: 2s)
//   - CATALOG_REDIS_ADDR: redis address for the cache; empty disables caching
//   - CATALOG_CACHE_TTL: cache entry lifetime (default: 10m)
func LoadConfig() (*Config, error) {
	cfg := &Config{
		BaseURL:   config.GetEnvString("CATALOG_BASE_URL", "http://localhost:8600"),
		Timeout:   config.GetEnvDuration("CATALOG_TIMEOUT", 2*time.Second),
		RedisAddr: config.GetEnvString("CATALOG_REDIS_ADDR", ""),
		CacheTTL:  config.GetEnvDuration("CATALOG_CACHE_TTL", 10*time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks all configuration fields for validity.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base url %q is not a valid absolute url", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.RedisAddr != "" && c.CacheTTL <= 0 {
		return fmt.Errorf("cache ttl must be positive when caching is enabled, got %v", c.CacheTTL)
	}
	return nil
}
