package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	apperrors "github.com/visorhr/visorhr-ui/internal/errors"
	"github.com/visorhr/visorhr-ui/internal/service"
)

// ViewCookieName identifies the browser's view across requests.
const ViewCookieName = "visorhr_view"

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Unwrap lets http.ResponseController reach the underlying writer for flushing.
func (w *respWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// ViewMounter mounts the view for a browser.
type ViewMounter interface {
	Mount(ctx context.Context, id string) (*service.View, error)
}

// ViewOptions configures MountView.
type ViewOptions struct {
	Views        ViewMounter
	CookieDomain string
	Logger       *slog.Logger
}

// MountView returns a middleware that resolves the browser's view from the view cookie,
// issuing a fresh identifier when the cookie is missing or malformed, and puts the
// mounted view into the request context.
func MountView(opts ViewOptions) func(http.Handler) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(ViewCookieName); err == nil && service.ValidViewID(c.Value) {
				id = c.Value
			}
			if id == "" {
				id = service.NewViewID()
				setViewCookie(w, r, id, opts.CookieDomain)
			}

			v, err := opts.Views.Mount(r.Context(), id)
			if err != nil {
				logger.ErrorContext(r.Context(), "mount view failed", "error", err)
				WriteAppError(w, apperrors.Wrap(err, apperrors.ErrCodeInternal, "view unavailable"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithView(r.Context(), v)))
		})
	}
}

func setViewCookie(w http.ResponseWriter, r *http.Request, id, domain string) {
	http.SetCookie(w, &http.Cookie{
		Name:     ViewCookieName,
		Value:    id,
		Path:     "/",
		Domain:   domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireUser returns a middleware that only lets signed-in views through.
// Browser requests go back to the auth page; htmx requests are told to navigate there.
func RequireUser() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v, ok := ViewFromContext(r.Context())
			if !ok {
				WriteAppError(w, apperrors.Internal("view missing from request"))
				return
			}
			if v.Session.User() == nil {
				redirectHome(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// redirectHome sends the browser to the root page, which renders whatever the view state calls for.
func redirectHome(w http.ResponseWriter, r *http.Request) {
	if IsHTMX(r) {
		HTMX(w).Redirect("/")
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// requireView fetches the view placed by MountView.
func requireView(w http.ResponseWriter, r *http.Request) (*service.View, bool) {
	v, ok := ViewFromContext(r.Context())
	if !ok {
		WriteAppError(w, apperrors.Internal("view missing from request"))
		return nil, false
	}
	return v, true
}

var errViewGone = errors.New("view unmounted")
