package bootstrap

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visorhr/visorhr-ui/config"
)

func testConfig(t *testing.T, backendURL string) *config.AppConfig {
	t.Helper()
	t.Setenv("BACKEND_API_BASE_URL", backendURL)
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("DEV", "false")
	t.Setenv("NODE_ENV", "test")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	return &cfg
}

func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/api/auth/check-user-exists/" {
			_, _ = io.WriteString(w, `{"users_exist": true}`)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"success": false, "message": "Invalid credentials"}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

type runningApp struct {
	app    *App
	base   string
	client *http.Client
	cancel context.CancelFunc
	done   chan error
}

func startApp(t *testing.T) *runningApp {
	t.Helper()
	backend := fakeBackend(t)
	cfg := testConfig(t, backend.URL+"/api")

	app, err := NewApp(context.Background(), AppDeps{
		Config:   cfg,
		Logger:   slog.New(slog.DiscardHandler),
		Registry: prometheus.NewRegistry(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, app.Close()) })

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, ln) }()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &runningApp{
		app:    app,
		base:   "http://" + ln.Addr().String(),
		client: &http.Client{Jar: jar, Timeout: 5 * time.Second},
		cancel: cancel,
		done:   done,
	}
}

func (a *runningApp) stop(t *testing.T) {
	t.Helper()
	a.cancel()
	select {
	case err := <-a.done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestApp_ServesAndShutsDown(t *testing.T) {
	ra := startApp(t)

	resp, err := ra.client.Get(ra.base + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = ra.client.Get(ra.base + "/")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "csrf_token")
	assert.Equal(t, 1, ra.app.Views.Len())

	resp, err = ra.client.Get(ra.base + "/metrics")
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "go_goroutines")
	assert.Contains(t, string(body), `visorhr_auth_operations_total`)

	ra.stop(t)
	assert.Equal(t, 0, ra.app.Views.Len())
}

func TestApp_ShutdownEndsStatusStreams(t *testing.T) {
	ra := startApp(t)

	resp, err := ra.client.Get(ra.base + "/")
	require.NoError(t, err)
	resp.Body.Close()

	stream, err := (&http.Client{Jar: ra.client.Jar}).Get(ra.base + "/status/stream")
	require.NoError(t, err)
	defer stream.Body.Close()
	line, err := bufio.NewReader(stream.Body).ReadString('\n')
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(line, "event: status"), line)

	ra.stop(t)
}

func TestNewApp_RequiresConfig(t *testing.T) {
	_, err := NewApp(context.Background(), AppDeps{})
	require.Error(t, err)
}

func TestNewHTTPServer_Defaults(t *testing.T) {
	srv := NewHTTPServer("", http.NotFoundHandler())
	assert.Equal(t, ":8080", srv.Addr)
	assert.Zero(t, srv.WriteTimeout)
	assert.Equal(t, 10*time.Second, srv.ReadHeaderTimeout)
	require.NoError(t, ShutdownHTTPServer(nil, nil))
}
