package httpx

import (
	"bytes"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	visorhr "github.com/visorhr/visorhr-ui"
	"github.com/visorhr/visorhr-ui/internal/adapters/preview"
	authmocks "github.com/visorhr/visorhr-ui/internal/mocks/auth"
	"github.com/visorhr/visorhr-ui/internal/observability/metrics"
	"github.com/visorhr/visorhr-ui/internal/ports"
	"github.com/visorhr/visorhr-ui/internal/service"
	"github.com/visorhr/visorhr-ui/internal/testutil"
)

type backendFunc func() (ports.AuthBackend, error)

func (f backendFunc) NewBackend() (ports.AuthBackend, error) { return f() }

// RequireTemplateRenderer creates a TemplateRenderer over the embedded templates.
func RequireTemplateRenderer(t *testing.T) *TemplateRenderer {
	t.Helper()
	sub, err := fs.Sub(visorhr.TemplateFS, "frontend/templates")
	require.NoError(t, err)
	tr, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: sub})
	require.NoError(t, err)
	return tr
}

// testApp is the full router wired to in-memory collaborators.
type testApp struct {
	clock    *testutil.StubClock
	backend  *authmocks.ScriptedBackend
	cache    *authmocks.MemorySessionCache
	previews *preview.Registry
	views    *service.ViewRegistry
	gatherer *prometheus.Registry
	handler  http.Handler
}

// newTestApp builds the router. configure runs before the router is created and may
// adjust the backend script or the router services.
func newTestApp(t *testing.T, configure ...func(*testApp, *RouterServices)) *testApp {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	app := &testApp{
		clock:    testutil.FixedClock(),
		backend:  authmocks.NewScriptedBackend(),
		cache:    authmocks.NewMemorySessionCache(),
		previews: preview.NewRegistry(preview.Options{Gauge: m.PreviewGauge()}),
		gatherer: reg,
	}
	app.views = service.NewViewRegistry(service.ViewRegistryOptions{
		Backends: backendFunc(func() (ports.AuthBackend, error) { return app.backend, nil }),
		Cache:    app.cache,
		Previews: app.previews,
		Clock:    app.clock,
		Observer: m,
	})
	t.Cleanup(app.views.CloseAll)

	static, err := fs.Sub(visorhr.StaticFS, "frontend/static")
	require.NoError(t, err)
	services := RouterServices{
		Views:          app.views,
		Previews:       app.previews,
		Renderer:       RequireTemplateRenderer(t),
		StaticFS:       static,
		Metrics:        m,
		Gatherer:       reg,
		MaxUploadBytes: 1 << 20,
		AuthBase:       "http://hr.test/api/auth",
	}
	for _, fn := range configure {
		fn(app, &services)
	}
	h, err := NewRouter(services)
	require.NoError(t, err)
	app.handler = h
	return app
}

const testCSRFToken = "test-csrf-token"

// browser replays the view cookie across requests like a single tab would. Every request
// carries the CSRF cookie; the matching header is sent unless omitCSRF is set.
type browser struct {
	t        *testing.T
	app      *testApp
	cookie   *http.Cookie
	htmx     bool
	omitCSRF bool
}

func (a *testApp) browser(t *testing.T) *browser {
	return &browser{t: t, app: a}
}

func (a *testApp) htmxBrowser(t *testing.T) *browser {
	return &browser{t: t, app: a, htmx: true}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	b.t.Helper()
	if b.cookie != nil {
		req.AddCookie(&http.Cookie{Name: b.cookie.Name, Value: b.cookie.Value})
	}
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: testCSRFToken})
	if !b.omitCSRF {
		req.Header.Set(CSRFHeaderName, testCSRFToken)
	}
	if b.htmx {
		req.Header.Set("Hx-Request", "true")
	}
	rec := httptest.NewRecorder()
	b.app.handler.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == ViewCookieName {
			b.cookie = c
		}
	}
	return rec
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	b.t.Helper()
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

// upload posts a multipart form; an empty filename sends the form without a file part.
func (b *browser) upload(path, filename string, data []byte) *httptest.ResponseRecorder {
	b.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(b.t, err)
		_, err = part.Write(data)
		require.NoError(b.t, err)
	}
	require.NoError(b.t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return b.do(req)
}

// view returns the service view behind the browser's cookie.
func (b *browser) view() *service.View {
	b.t.Helper()
	require.NotNil(b.t, b.cookie, "browser has no view cookie yet")
	v, ok := b.app.views.Get(b.cookie.Value)
	require.True(b.t, ok, "view %s is not mounted", b.cookie.Value)
	return v
}

// signIn logs the browser in as username through the login route.
func (b *browser) signIn(username string) {
	b.t.Helper()
	rec := b.post("/auth/login", url.Values{"username": {username}, "password": {"secret"}})
	require.Contains(b.t, []int{http.StatusNoContent, http.StatusSeeOther}, rec.Code)
	require.NotNil(b.t, b.view().Session.User())
}

// statusText fetches the status slot fragment.
func (b *browser) statusText() string {
	b.t.Helper()
	rec := b.get("/status")
	require.Equal(b.t, http.StatusOK, rec.Code)
	return rec.Body.String()
}
