package httpx

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/visorhr/visorhr-ui/internal/observability/metrics"
	"github.com/visorhr/visorhr-ui/internal/ports"
	"github.com/visorhr/visorhr-ui/internal/service"
)

// ViewRegistry is what the router needs from the view registry.
type ViewRegistry interface {
	ViewMounter
	ViewLookup
	ViewCounter
}

var _ ViewRegistry = (*service.ViewRegistry)(nil)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Views    ViewRegistry
	Previews ports.PreviewStore
	Renderer *TemplateRenderer
	// StaticFS serves /static/; nil disables the route.
	StaticFS fs.FS

	// Metrics instruments requests; Gatherer enables /metrics when set.
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	CookieDomain   string
	MaxUploadBytes int64
	AuthBase       string
	KeepAlive      time.Duration
	// Closing is closed when the server begins shutting down.
	Closing <-chan struct{}
	IsDev   bool
	Logger  *slog.Logger
}

// NewRouter creates and configures the HTTP router with its middleware chain.
func NewRouter(services RouterServices) (http.Handler, error) {
	if services.Views == nil {
		return nil, errors.New("router: Views is required")
	}
	if services.Renderer == nil {
		return nil, errors.New("router: Renderer is required")
	}
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ui := &UIHandlers{
		T:              services.Renderer,
		Previews:       services.Previews,
		Views:          services.Views,
		MaxUploadBytes: services.MaxUploadBytes,
		IsDev:          services.IsDev,
		AuthBase:       services.AuthBase,
		KeepAlive:      services.KeepAlive,
		Closing:        services.Closing,
		Logger:         logger,
	}
	if ui.MaxUploadBytes <= 0 {
		ui.MaxUploadBytes = 5 << 20
	}

	mux := http.NewServeMux()
	csrf := CSRFProtection(services.CookieDomain)
	withView := MountView(ViewOptions{Views: services.Views, CookieDomain: services.CookieDomain, Logger: logger})
	signedIn := func(h http.HandlerFunc) http.Handler { return csrf(withView(RequireUser()(h))) }
	anyView := func(h http.HandlerFunc) http.Handler { return csrf(withView(h)) }

	mux.Handle("GET /{$}", anyView(ui.Index))
	registerAuthRoutes(mux, ui, anyView)
	registerEmployeeRoutes(mux, ui, signedIn)
	mux.Handle("GET /status", anyView(ui.Status))
	mux.Handle("GET /status/stream", anyView(ui.StatusStream))

	health := healthHandler(services.Views)
	mux.Handle("GET /healthz", health)
	mux.Handle("HEAD /healthz", health)
	if services.Gatherer != nil {
		mux.Handle("GET /metrics", metrics.Handler(services.Gatherer))
	}
	if services.StaticFS != nil {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(services.StaticFS)))
	}

	var h http.Handler = mux
	h = services.Metrics.Instrument(h)
	h = Logging(logger)(h)
	h = Recover(logger)(h)
	return h, nil
}

func registerAuthRoutes(mux *http.ServeMux, ui *UIHandlers, wrap func(http.HandlerFunc) http.Handler) {
	mux.Handle("POST /auth/tab", wrap(ui.SwitchTab))
	mux.Handle("POST /auth/login", wrap(ui.Login))
	mux.Handle("POST /auth/register", wrap(ui.Register))
	mux.Handle("POST /auth/logout", wrap(ui.Logout))
	mux.Handle("POST /auth/validate-admin", wrap(ui.ValidateAdmin))
}

func registerEmployeeRoutes(mux *http.ServeMux, ui *UIHandlers, wrap func(http.HandlerFunc) http.Handler) {
	mux.Handle("POST /employee/fields/{name}", wrap(ui.ChangeField))
	mux.Handle("POST /employee/files/{name}", wrap(ui.ChangeFile))
	mux.Handle("POST /employee/clear", wrap(ui.ClearForm))
	mux.Handle("POST /employee/submit", wrap(ui.SubmitForm))
	mux.Handle("GET /previews/{id}", wrap(ui.Preview))
}
