package config

import (
	"log/slog"
	"strings"
)

// ObservabilityConfig groups configuration for metrics and logging.
type ObservabilityConfig struct {
	// MetricsEnabled exposes Prometheus metrics on /metrics.
	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Sanitize normalises the log level.
func (c *ObservabilityConfig) Sanitize() {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		c.LogLevel = "info"
	}
}

// SlogLevel maps LogLevel onto slog.
func (c ObservabilityConfig) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
