// Package backend is the typed client for the trading backend's HTTP API.
//
// Every accessor issues at most one request and returns a domain.Result: network
// errors, non-success statuses and bodies that fail their schema all become
// failures that the views render as "unknown". Nothing is retried here; the next
// scheduled refresh is the retry.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aristath/minty/internal/clientdata"
	"github.com/aristath/minty/internal/domain"
	"github.com/rs/zerolog"
)

// maxBodyBytes bounds how much of a response body is read
const maxBodyBytes = 8 << 20

// Endpoint names used in failures, logs and cache tables
const (
	EndpointLiveData         = "live_data"
	EndpointHistoricalData   = "historical_data"
	EndpointPredict          = "predict"
	EndpointRecommend        = "recommend"
	EndpointPortfolio        = "portfolio"
	EndpointAccount          = "account"
	EndpointOrders           = "orders"
	EndpointPortfolioHistory = "portfolio_history"
	EndpointUsersMe          = "users_me"
)

// Config holds client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Location interprets timestamps that carry no zone; nil means time.Local
	Location *time.Location
	// Cache is optional; nil disables response caching
	Cache *clientdata.Repository
	TTLs  clientdata.TTLs
}

// Client talks to the trading backend. A Client is immutable; WithToken returns a copy.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	loc     *time.Location
	cache   *clientdata.Repository
	ttls    clientdata.TTLs
	log     zerolog.Logger
}

// NewClient creates a backend client without a session token
func NewClient(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	ttls := cfg.TTLs
	if ttls == nil {
		ttls = clientdata.DefaultTTLs(0)
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		loc:     loc,
		cache:   cfg.Cache,
		ttls:    ttls,
		log:     log.With().Str("client", "backend").Logger(),
	}
}

// WithToken returns a copy of the client that authenticates with token
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = strings.TrimSpace(token)
	return &cp
}

// HasToken reports whether authenticated endpoints can be called
func (c *Client) HasToken() bool {
	return c.token != ""
}

// Market implements domain.SessionClients
func (c *Client) Market() domain.MarketDataClient {
	return c
}

// ForToken implements domain.SessionClients
func (c *Client) ForToken(token string) domain.AccountClient {
	return c.WithToken(token)
}

// request describes one backend call
type request struct {
	endpoint string
	path     string
	query    url.Values
	auth     bool
	// cacheTable/cacheKey enable the response cache for unauthenticated endpoints
	cacheTable string
	cacheKey   string
}

// fetch performs req and parses the body with parse, collapsing every failure into a Result
func fetch[T any](ctx context.Context, c *Client, req request, parse func([]byte) (T, error)) domain.Result[T] {
	if req.auth && c.token == "" {
		return failed[T](c, req, domain.FailureUnauthenticated, domain.ErrNoSession)
	}

	if body := c.cached(req); body != nil {
		if value, err := parse(body); err == nil {
			return domain.Ok(value)
		}
	}

	body, kind, err := c.get(ctx, req)
	if err != nil {
		return failed[T](c, req, kind, err)
	}

	value, err := parse(body)
	if err != nil {
		return failed[T](c, req, domain.FailureMalformed, err)
	}

	c.store(req, body)
	return domain.Ok(value)
}

func failed[T any](c *Client, req request, kind domain.FailureKind, err error) domain.Result[T] {
	c.log.Warn().
		Err(err).
		Str("endpoint", req.endpoint).
		Str("path", req.path).
		Str("kind", string(kind)).
		Msg("Backend data unavailable")
	return domain.Fail[T](kind, req.endpoint, err)
}

// get issues the HTTP request and returns the raw body of a 2xx response
func (c *Client) get(ctx context.Context, req request) ([]byte, domain.FailureKind, error) {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, domain.FailureNetwork, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.auth {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, domain.FailureNetwork, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, domain.FailureUnauthenticated, fmt.Errorf("backend returned status %d", resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, domain.FailureStatus, fmt.Errorf("backend returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, domain.FailureNetwork, fmt.Errorf("failed to read response: %w", err)
	}
	return body, "", nil
}

func (c *Client) cached(req request) []byte {
	if c.cache == nil || req.cacheTable == "" {
		return nil
	}
	data, err := c.cache.GetIfFresh(req.cacheTable, req.cacheKey)
	if err != nil {
		c.log.Warn().Err(err).Str("table", req.cacheTable).Msg("Cache read failed")
		return nil
	}
	if data != nil {
		c.log.Debug().Str("endpoint", req.endpoint).Str("key", req.cacheKey).Msg("Cache hit")
	}
	return data
}

func (c *Client) store(req request, body []byte) {
	if c.cache == nil || req.cacheTable == "" {
		return
	}
	ttl, ok := c.ttls[req.cacheTable]
	if !ok || ttl <= 0 {
		return
	}
	if err := c.cache.Store(req.cacheTable, req.cacheKey, rawJSON(body), ttl); err != nil {
		c.log.Warn().Err(err).Str("table", req.cacheTable).Msg("Failed to cache response")
	}
}

// rawJSON stores an already-validated body verbatim
type rawJSON []byte

func (r rawJSON) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return nil, errors.New("empty body")
	}
	return r, nil
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func symbolPath(prefix, symbol string) string {
	return prefix + url.PathEscape(normalizeSymbol(symbol))
}
