package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/visorhr/visorhr-ui/config"
	"github.com/visorhr/visorhr-ui/internal/bootstrap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		stop()
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) (err error) {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	logger = bootstrap.ConfigureLogger(os.Stdout, &cfg)
	logStartupInfo(ctx, logger, &cfg)

	app, err := bootstrap.NewApp(ctx, bootstrap.AppDeps{Config: &cfg, Logger: logger})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	return app.Run(ctx)
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting visorhr-ui",
		"addr", cfg.HTTP.Addr,
		"backend", cfg.Backend.APIBaseURL,
		"dev", cfg.IsDev,
		"redis", cfg.Redis.Enabled,
		"metrics", cfg.Observability.MetricsEnabled)
}
