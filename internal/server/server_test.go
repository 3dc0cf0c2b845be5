package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/aristath/minty/internal/config"
	"github.com/aristath/minty/internal/di"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, backendURL string) *Server {
	t.Helper()
	cfg := &config.Config{
		Port:           8080,
		BackendURL:     backendURL,
		CachePath:      filepath.Join(t.TempDir(), "cache.db"),
		BackendTimeout: time.Second,
		MarketCacheTTL: time.Second,
		StartingCash:   100000,
		PortfolioEvery: time.Minute,
		PriceEvery:     30 * time.Second,
		StockEvery:     15 * time.Second,
		Location:       time.UTC,
	}
	container, _, err := di.Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	srv := New(Config{Log: zerolog.Nop(), Config: cfg, Port: cfg.Port, DevMode: true, Container: container})
	srv.systemHandlers.statsFn = func() (float64, float64) { return 12.5, 40 }
	return srv
}

func get(t *testing.T, h http.Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, "http://127.0.0.1:1")

	for _, path := range []string{"/health", "/api/health"} {
		rec := get(t, srv.Handler(), http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, "minty", body["service"])
	}
}

func TestSystemStatus(t *testing.T) {
	srv := newTestServer(t, "http://127.0.0.1:1")

	rec := get(t, srv.Handler(), http.MethodGet, "/api/system/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body SystemStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, 12.5, body.CPUPercent)
	assert.Equal(t, 40.0, body.MemoryPercent)
	assert.Equal(t, 0, body.MountedViews)
	assert.Equal(t, "ok", body.CacheDB)
	assert.Positive(t, body.Goroutines)
}

func TestViewsMountedUnderAPI(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer backend.Close()
	srv := newTestServer(t, backend.URL)

	rec := get(t, srv.Handler(), http.MethodPost, "/api/views/stock?symbol=NVDA", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = get(t, srv.Handler(), http.MethodGet, "/api/system/status", nil)
	var body SystemStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.MountedViews)

	rec = get(t, srv.Handler(), http.MethodPost, "/api/views/portfolio", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, "http://127.0.0.1:1")

	rec := get(t, srv.Handler(), http.MethodOptions, "/api/health", http.Header{
		"Origin":                        {"http://example.com"},
		"Access-Control-Request-Method": {"GET"},
	})
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSkipOnUpgrade(t *testing.T) {
	wrapped := 0
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped++
			next.ServeHTTP(w, r)
		})
	}
	h := skipOnUpgrade(mw)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	get(t, h, http.MethodGet, "/", nil)
	get(t, h, http.MethodGet, "/", http.Header{"Upgrade": {"websocket"}})
	assert.Equal(t, 1, wrapped)
}
