package storefront

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/itsneelabh/storefront/core"
	"github.com/itsneelabh/storefront/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, apiURL string) *core.Config {
	t.Helper()
	cfg, err := core.NewConfig(core.WithAPIURL(apiURL), core.WithPort(3999))
	require.NoError(t, err)
	return cfg
}

func TestNewRejectsNilConfig(t *testing.T) {
	_, err := New(context.Background(), nil)
	assert.ErrorIs(t, err, core.ErrMissingConfiguration)
}

func TestNewRejectsUnknownSessionProvider(t *testing.T) {
	cfg := testConfig(t, "http://localhost:8000")
	cfg.Session.Provider = "cookie-jar"

	_, err := New(context.Background(), cfg, WithLogger(core.NoOpLogger{}))
	assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
}

func TestAppServesHealthAndPages(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer backend.Close()

	app, err := New(context.Background(), testConfig(t, backend.URL), WithLogger(core.NoOpLogger{}))
	require.NoError(t, err)
	defer func() { _ = app.Shutdown(context.Background()) }()

	w := httptest.NewRecorder()
	app.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, Version, health["version"])

	w = httptest.NewRecorder()
	app.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAppWithRedisSessions(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t, "http://localhost:8000")
	cfg.Session.Provider = "redis"
	cfg.Session.RedisURL = "redis://" + mr.Addr()

	app, err := New(context.Background(), cfg, WithLogger(core.NoOpLogger{}))
	require.NoError(t, err)

	w := httptest.NewRecorder()
	app.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, mr.Keys(), "the session is stored in redis")

	require.NoError(t, app.Shutdown(context.Background()))
}

func TestServeStopsWhenContextEnds(t *testing.T) {
	cfg := testConfig(t, "http://localhost:8000")
	app, err := New(context.Background(), cfg,
		WithLogger(core.NoOpLogger{}),
		WithSessionManager(session.NewMemoryManager(session.DefaultConfig())),
	)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
