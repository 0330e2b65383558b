package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/visorhr/visorhr-ui/internal/ports"
	"github.com/visorhr/visorhr-ui/internal/service"
)

const defaultKeepAlive = 15 * time.Second

// ViewLookup finds a mounted view without creating one.
type ViewLookup interface {
	Get(id string) (*service.View, bool)
}

// UIHandlers serves browser-facing routes.
type UIHandlers struct {
	T        *TemplateRenderer
	Previews ports.PreviewStore
	Views    ViewLookup

	MaxUploadBytes int64
	IsDev          bool
	AuthBase       string
	// KeepAlive is the comment interval on the status stream.
	KeepAlive time.Duration
	// Closing ends every status stream once closed; nil never fires.
	Closing <-chan struct{}
	Logger  *slog.Logger
}

func (h *UIHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *UIHandlers) pageData(r *http.Request, v *service.View, title string) PageData {
	return buildPageData(v, PageMeta{Title: title}, pageSettings{
		MaxUploadBytes: h.MaxUploadBytes,
		IsDev:          h.IsDev,
		AuthBase:       h.AuthBase,
		CSRFToken:      CSRFToken(r.Context()),
	})
}

// Index renders the auth page for anonymous views and the employee editor once signed in.
// htmx navigations get only the content region.
func (h *UIHandlers) Index(w http.ResponseWriter, r *http.Request) {
	v, ok := requireView(w, r)
	if !ok {
		return
	}
	title := "Sign in"
	if v.Session.User() != nil {
		title = "Employee"
	}
	data := h.pageData(r, v, title)
	render := h.T.RenderFull
	if WantsPartial(r) {
		render = func(w http.ResponseWriter, _ *http.Request, data any) error {
			return h.T.RenderPartial(w, tmplContent, data)
		}
	}
	if err := render(w, r, data); err != nil {
		h.renderErrorPage(w, r, err)
	}
}

// finish completes a mutating request. Failures already reported through the status slot
// render like successes; anything else becomes an error response. Plain form posts are
// redirected home, htmx requests get the fragment produced by render.
func (h *UIHandlers) finish(w http.ResponseWriter, r *http.Request, err error, render func() error) {
	if err != nil && !shownInStatus(err) {
		h.logger().DebugContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		WriteAppError(w, classifyError(err))
		return
	}
	if !IsHTMX(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	hx := HTMX(w).Trigger(HXStatusChanged, nil)
	if render == nil {
		hx.NoContent()
		return
	}
	if rerr := render(); rerr != nil {
		h.logger().ErrorContext(r.Context(), "render fragment failed", "path", r.URL.Path, "error", rerr)
	}
}

// sessionChanged sends the browser back to the root page after a session transition.
func (h *UIHandlers) sessionChanged(w http.ResponseWriter, r *http.Request) {
	redirectHome(w, r)
}

func detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
