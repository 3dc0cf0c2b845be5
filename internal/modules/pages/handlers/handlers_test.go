package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aristath/minty/internal/domain"
	"github.com/aristath/minty/internal/events"
	"github.com/aristath/minty/internal/modules/pages"
	"github.com/aristath/minty/internal/modules/valuation"
	"github.com/aristath/minty/internal/scheduler"
	testpkg "github.com/aristath/minty/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

type env struct {
	backend  *testpkg.FakeBackend
	registry *pages.Registry
	router   *chi.Mux
}

func newEnv(t *testing.T, cfg Config) *env {
	t.Helper()
	backend := testpkg.NewFakeBackend()
	backend.HistoricalResult = domain.Ok(domain.HistoricalData{
		Dates:  []string{"2025-05-29", "2025-05-30"},
		Prices: []float64{140, 142},
	})
	backend.UserResult = domain.Ok(domain.UserInfo{Username: "alice"})
	backend.AccountResult = domain.Ok(domain.AccountSnapshot{Cash: 1000})
	backend.PortfolioResult = domain.Ok(domain.Portfolio{Positions: []domain.Position{}})
	backend.OrdersResult = domain.Ok([]domain.Order{})

	bus := events.NewBus(zerolog.Nop())
	registry := pages.NewRegistry(scheduler.New(zerolog.Nop()), bus, zerolog.Nop())
	engine := valuation.NewEngine(valuation.DefaultStartingCash, time.UTC, zerolog.Nop())

	handler := NewHandler(registry, backend, engine, bus, cfg, zerolog.Nop())
	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	t.Cleanup(registry.CloseAll)

	return &env{backend: backend, registry: registry, router: router}
}

func (e *env) do(t *testing.T, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (e *env) mountStock(t *testing.T, symbol string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/views/stock?symbol="+symbol, "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode(t, rec)["id"].(string)
}

func TestRegisterRoutes(t *testing.T) {
	e := newEnv(t, Config{})
	id := e.mountStock(t, "aapl")

	testCases := []struct {
		method string
		path   string
		body   string
		code   int
	}{
		{"GET", "/views/" + id, "", http.StatusOK},
		{"POST", "/views/" + id + "/refresh", "", http.StatusOK},
		{"POST", "/views/" + id + "/timeframe", `{"timeframe":"1w"}`, http.StatusOK},
		{"GET", "/views/" + id + "/trade?side=buy", "", http.StatusOK},
		{"DELETE", "/views/" + id, "", http.StatusNoContent},
	}
	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := e.do(t, tc.method, tc.path, tc.body, nil)
			assert.Equal(t, tc.code, rec.Code, rec.Body.String())
		})
	}
}

func TestMountStock(t *testing.T) {
	e := newEnv(t, Config{})
	rec := e.do(t, http.MethodPost, "/views/stock?symbol=aapl", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "stock", body["page"])
	assert.Equal(t, "1Y", body["timeframe"])
	sections := body["sections"].(map[string]interface{})
	assert.Equal(t, "Apple", sections["about"].(map[string]interface{})["name"])
	assert.Equal(t, "--", sections["live"].(map[string]interface{})["price"])
	assert.Len(t, body["charts"], 3)
	assert.Equal(t, 1, e.registry.Len())
}

func TestMountPortfolio_NoTokenRedirectsToLogin(t *testing.T) {
	e := newEnv(t, Config{})
	rec := e.do(t, http.MethodPost, "/views/portfolio", "", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "login.html", decode(t, rec)["redirect"])
	assert.Equal(t, 0, e.registry.Len())
}

func TestMountPortfolio_BearerToken(t *testing.T) {
	e := newEnv(t, Config{})
	rec := e.do(t, http.MethodPost, "/views/portfolio", "", http.Header{"Authorization": {"Bearer abc"}})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"abc"}, e.backend.Tokens())

	sections := decode(t, rec)["sections"].(map[string]interface{})
	assert.Equal(t, "$1,000.00", sections["summary"].(map[string]interface{})["total_value"])
	assert.Equal(t, "Alice's Portfolio", sections["header"].(map[string]interface{})["title"])
}

func TestMountPortfolio_DefaultToken(t *testing.T) {
	e := newEnv(t, Config{DefaultToken: "from-env"})
	rec := e.do(t, http.MethodPost, "/views/portfolio", "", nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"from-env"}, e.backend.Tokens())
}

func TestMountPortfolio_RejectedTokenUnmounts(t *testing.T) {
	e := newEnv(t, Config{})
	e.backend.AccountResult = domain.Fail[domain.AccountSnapshot](domain.FailureUnauthenticated, "account", assert.AnError)

	rec := e.do(t, http.MethodPost, "/views/portfolio", "", http.Header{"Authorization": {"Bearer stale"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "login.html", decode(t, rec)["redirect"])
	assert.Equal(t, 0, e.registry.Len())
}

func TestUnknownView(t *testing.T) {
	e := newEnv(t, Config{})
	for _, path := range []string{"/views/nope", "/views/nope/trade?side=buy"} {
		rec := e.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
	assert.Equal(t, http.StatusNotFound, e.do(t, http.MethodDelete, "/views/nope", "", nil).Code)
}

func TestSetTimeframe_BadRequests(t *testing.T) {
	e := newEnv(t, Config{})
	id := e.mountStock(t, "NVDA")

	rec := e.do(t, http.MethodPost, "/views/"+id+"/timeframe", `{"timeframe":"10Y"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/views/"+id+"/timeframe", `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTradeLink(t *testing.T) {
	e := newEnv(t, Config{})
	id := e.mountStock(t, "tsla")

	rec := e.do(t, http.MethodGet, "/views/"+id+"/trade?side=SELL", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "trade.html?symbol=TSLA&side=sell", decode(t, rec)["url"])

	rec = e.do(t, http.MethodGet, "/views/"+id+"/trade?side=hold", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTradeLink_NotOnPortfolio(t *testing.T) {
	e := newEnv(t, Config{DefaultToken: "t"})
	rec := e.do(t, http.MethodPost, "/views/portfolio", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode(t, rec)["id"].(string)

	rec = e.do(t, http.MethodGet, "/views/"+id+"/trade?side=buy", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStream_ReplaysChartsThenUnmounts(t *testing.T) {
	e := newEnv(t, Config{})
	id := e.mountStock(t, "NVDA")

	srv := httptest.NewServer(e.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/views/"+id+"/stream", nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	read := func() map[string]interface{} {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err)
		var ev map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &ev))
		return ev
	}

	slots := []string{}
	for i := 0; i < 3; i++ {
		ev := read()
		require.Equal(t, string(events.ChartCreated), ev["type"])
		slots = append(slots, ev["data"].(map[string]interface{})["slot"].(string))
	}
	assert.Equal(t, []string{"macd", "price", "rsi"}, slots)

	require.NoError(t, e.registry.Unmount(id))
	for {
		ev := read()
		if ev["type"] == string(events.ViewUnmounted) {
			break
		}
	}
	_, _, err = conn.Read(ctx)
	assert.Equal(t, websocket.StatusNormalClosure, websocket.CloseStatus(err))
}

func TestStream_SessionExpiryCarriesLoginRedirect(t *testing.T) {
	e := newEnv(t, Config{})
	id := e.mountStock(t, "NVDA")

	srv := httptest.NewServer(e.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/views/"+id+"/stream", nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	// Wait for the replay so the subscription is live
	for i := 0; i < 3; i++ {
		_, _, err := conn.Read(ctx)
		require.NoError(t, err)
	}

	require.NoError(t, e.registry.UnmountFor(id, pages.ReasonSessionExpired))
	for {
		_, data, err := conn.Read(ctx)
		require.NoError(t, err)
		var ev map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &ev))
		if ev["type"] != string(events.ViewUnmounted) {
			continue
		}
		payload := ev["data"].(map[string]interface{})
		assert.Equal(t, pages.ReasonSessionExpired, payload["reason"])
		assert.Equal(t, pages.LoginPage, payload["redirect"])
		break
	}
	assert.Equal(t, 0, e.registry.Len())
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, bearerToken(req))

	req.Header.Set("Authorization", "bearer  xyz ")
	assert.Equal(t, "xyz", bearerToken(req))

	req.Header.Set("Authorization", "Basic xyz")
	assert.Empty(t, bearerToken(req))
}
