package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const shutdownTimeout = 10 * time.Second

// NewHTTPServer builds the server. There is no write timeout because status streams
// stay open for the life of the page.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(server *http.Server, logger *slog.Logger) error {
	if server == nil {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("shutting down HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return err
	}

	logger.Info("HTTP server stopped")
	return nil
}
