package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/visorhr/visorhr-ui/config"
)

// InitLogger installs a JSON logger at info level. It is used until the configuration
// is loaded and ConfigureLogger replaces it.
func InitLogger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	return logger
}

// ConfigureLogger builds the process logger from configuration: text output in
// development, JSON otherwise.
func ConfigureLogger(w io.Writer, cfg *config.AppConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Observability.SlogLevel()}
	var handler slog.Handler = slog.NewJSONHandler(w, opts)
	if cfg.IsDev {
		handler = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(handler).With("service", "visorhr-ui")
	slog.SetDefault(logger)
	return logger
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (config.AppConfig, error) {
	// Load .env file if it exists (development)
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return config.AppConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
