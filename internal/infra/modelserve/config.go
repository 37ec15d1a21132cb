// Package modelserve provides HTTP clients for the in-house model-serving
// endpoints used on the fallback extraction path: the intent classifier and
// the token tagger. Both speak a small JSON protocol over POST and are
// expected to answer within a tight latency budget. There is no retry here;
// a failed fallback call degrades the result instead of extending it.
package modelserve

import (
	"fmt"
	"net/url"
	"time"

	"mangwale-nlu/pkg/config"
)

// Config holds the endpoints and timeouts for the model-serving clients.
type Config struct {
	// ClassifierURL is the intent classifier's predict endpoint.
	ClassifierURL string

	// TaggerURL is the token tagger's predict endpoint.
	TaggerURL string

	// Timeout is the per-call HTTP timeout shared by both clients.
	// The fallback path runs classifier and tagger concurrently, so this is
	// also the fallback path's latency ceiling.
	Timeout time.Duration
}

// LoadConfig loads model-serving configuration from environment variables.
//
// Environment variables:
//   - MODELSERVE_CLASSIFIER_URL: classifier predict endpoint (default: http://localhost:8501/v1/classify)
//   - MODELSERVE_TAGGER_URL: tagger predict endpoint (default: http://localhost:8502/v1/tag)
//   - MODELSERVE_TIMEOUT: per-call timeout (default: 3s)
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ClassifierURL: config.GetEnvString("MODELSERVE_CLASSIFIER_URL", "http://localhost:8501/v1/classify"),
		TaggerURL:     config.GetEnvString("MODELSERVE_TAGGER_URL", "http://localhost:8502/v1/tag"),
		Timeout:       config.GetEnvDuration("MODELSERVE_TIMEOUT", 3*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model-serving configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks all configuration fields for validity.
func (c *Config) Validate() error {
	for name, raw := range map[string]string{
		"classifier url": c.ClassifierURL,
		"tagger url":     c.TaggerURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s %q is not a valid absolute url", name, raw)
		}
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	return nil
}
