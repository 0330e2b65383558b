package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	visorhr "github.com/visorhr/visorhr-ui"
	"github.com/visorhr/visorhr-ui/config"
	"github.com/visorhr/visorhr-ui/internal/adapters/authapi"
	"github.com/visorhr/visorhr-ui/internal/adapters/preview"
	httpx "github.com/visorhr/visorhr-ui/internal/http"
	"github.com/visorhr/visorhr-ui/internal/observability/metrics"
	"github.com/visorhr/visorhr-ui/internal/ports"
	"github.com/visorhr/visorhr-ui/internal/service"
)

const (
	devTemplateDir = "frontend/templates"
	devStaticDir   = "frontend/static"

	minJanitorInterval = 10 * time.Second
	maxJanitorInterval = 5 * time.Minute
)

// AppDeps are the inputs to NewApp. Only Config is required.
type AppDeps struct {
	Config *config.AppConfig
	Logger *slog.Logger
	// Registry receives every collector; nil creates a private registry.
	Registry *prometheus.Registry
	Clock    ports.Clock
	// BackendTransport overrides the transport used for HR backend calls.
	BackendTransport http.RoundTripper
	// TemplateFS and StaticFS override the embedded assets.
	TemplateFS fs.FS
	StaticFS   fs.FS
}

// App is the assembled browser client: view registry, preview store and HTTP handler.
type App struct {
	Config   *config.AppConfig
	Logger   *slog.Logger
	Views    *service.ViewRegistry
	Previews *preview.Registry
	Handler  http.Handler

	cache   SessionCacheResult
	closing chan struct{}
}

// NewApp wires every component. The returned App must be closed.
func NewApp(ctx context.Context, deps AppDeps) (*App, error) {
	cfg := deps.Config
	if cfg == nil {
		return nil, errors.New("app config is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := deps.Clock
	if clock == nil {
		clock = ports.SystemClock{}
	}

	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	var m *metrics.Metrics
	if cfg.Observability.MetricsEnabled {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.NewMetrics(reg)
	}

	cache, err := NewSessionCache(ctx, cfg, clock, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("session cache ready", "backend", cache.Backend)

	backends, err := authapi.NewFactory(authapi.Config{
		AuthBaseURL: cfg.Backend.AuthBaseURL(),
		Timeout:     cfg.Backend.Timeout,
		Transport:   deps.BackendTransport,
		Observer:    m,
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("backend client: %w", err), cache.Close())
	}

	previews := preview.NewRegistry(preview.Options{
		MaxBytes: cfg.HTTP.MaxUploadBytes,
		Gauge:    m.PreviewGauge(),
	})
	views := service.NewViewRegistry(service.ViewRegistryOptions{
		Backends:  backends,
		Cache:     cache.Cache,
		Previews:  previews,
		Clock:     clock,
		StatusTTL: cfg.UI.StatusTTL,
		IdleTTL:   cfg.UI.ViewIdleTTL,
		MaxViews:  cfg.UI.MaxViews,
		Observer:  m,
		Logger:    logger,
	})

	templates, static, err := assetFS(cfg.IsDev, deps)
	if err != nil {
		return nil, errors.Join(err, cache.Close())
	}
	renderer, err := httpx.NewTemplateRenderer(httpx.TemplateRendererConfig{
		TemplateFS: templates,
		DevMode:    cfg.IsDev,
		Logger:     logger,
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("parse templates: %w", err), cache.Close())
	}

	app := &App{
		Config:   cfg,
		Logger:   logger,
		Views:    views,
		Previews: previews,
		cache:    cache,
		closing:  make(chan struct{}),
	}
	services := httpx.RouterServices{
		Views:          views,
		Previews:       previews,
		Renderer:       renderer,
		StaticFS:       static,
		Metrics:        m,
		CookieDomain:   cfg.HTTP.CookieDomain,
		MaxUploadBytes: cfg.HTTP.MaxUploadBytes,
		AuthBase:       cfg.Backend.AuthBaseURL(),
		Closing:        app.closing,
		IsDev:          cfg.IsDev,
		Logger:         logger,
	}
	if m != nil {
		services.Gatherer = reg
	}
	app.Handler, err = httpx.NewRouter(services)
	if err != nil {
		return nil, errors.Join(err, cache.Close())
	}
	return app, nil
}

// assetFS returns the template and static trees. Development reads them from disk so
// edits show up without a rebuild.
func assetFS(dev bool, deps AppDeps) (fs.FS, fs.FS, error) {
	templates, static := deps.TemplateFS, deps.StaticFS
	if dev {
		if templates == nil {
			templates = os.DirFS(devTemplateDir)
		}
		if static == nil {
			static = os.DirFS(devStaticDir)
		}
	}
	var err error
	if templates == nil {
		if templates, err = fs.Sub(visorhr.TemplateFS, devTemplateDir); err != nil {
			return nil, nil, fmt.Errorf("embedded templates: %w", err)
		}
	}
	if static == nil {
		if static, err = fs.Sub(visorhr.StaticFS, devStaticDir); err != nil {
			return nil, nil, fmt.Errorf("embedded static assets: %w", err)
		}
	}
	return templates, static, nil
}

// Run listens on the configured address and serves until ctx is done.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Config.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.Config.HTTP.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve runs the HTTP server on ln next to the idle-view janitor. When ctx is done the
// server drains and every view is unmounted.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := NewHTTPServer(ln.Addr().String(), a.Handler)
	srv.RegisterOnShutdown(func() { close(a.closing) })

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Logger.Info("starting HTTP server", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return a.Views.RunJanitor(gctx, janitorInterval(a.Config.UI.ViewIdleTTL))
	})
	g.Go(func() error {
		<-gctx.Done()
		return ShutdownHTTPServer(srv, a.Logger)
	})

	err := g.Wait()
	a.Views.CloseAll()
	return err
}

// Close releases the session cache connection.
func (a *App) Close() error {
	if a.cache.Close == nil {
		return nil
	}
	return a.cache.Close()
}

func janitorInterval(idle time.Duration) time.Duration {
	return min(max(idle/2, minJanitorInterval), maxJanitorInterval)
}
