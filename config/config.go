package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - backend.go: HR backend API configuration
//   - http.go: HTTP server configuration
//   - store.go: Redis and session cache configuration
//   - ui.go: per-browser view behaviour
//   - observability.go: metrics and logging
type AppConfig struct {
	// IsDev controls development mode behavior (template reloading, text logs).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// HR backend configuration
	Backend BackendConfig

	// HTTP server configuration
	HTTP HTTPConfig

	// Persisted session cache configuration
	Redis        RedisConfig `envPrefix:"REDIS_"`
	SessionCache SessionCacheConfig

	// Browser view configuration
	UI UIConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.Backend.Sanitize()
	c.HTTP.Sanitize()
	c.SessionCache.Sanitize()
	c.UI.Sanitize()
	c.Observability.Sanitize()

	c.detectDevMode()
}

// Validate reports configuration that cannot be repaired by Sanitize.
func (c *AppConfig) Validate() error {
	if c == nil {
		return errors.New("config is required")
	}
	u, err := url.Parse(c.Backend.APIBaseURL)
	if err != nil {
		return fmt.Errorf("invalid BACKEND_API_BASE_URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid BACKEND_API_BASE_URL %q: scheme must be http or https", c.Backend.APIBaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid BACKEND_API_BASE_URL %q: host is required", c.Backend.APIBaseURL)
	}
	return nil
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
