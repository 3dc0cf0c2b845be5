package testing

import (
	"context"
	"errors"
	"sync"

	"github.com/aristath/minty/internal/domain"
)

// ErrUnavailable is the cause of every default FakeBackend result
var ErrUnavailable = errors.New("fake backend: not configured")

// FakeBackend is an in-memory domain.AccountClient and domain.SessionClients.
// Every result starts out as a network failure; tests set the ones they need
// before the backend is used.
type FakeBackend struct {
	LiveResult           domain.Result[domain.LiveData]
	HistoricalResult     domain.Result[domain.HistoricalData]
	PredictionResult     domain.Result[domain.Prediction]
	RecommendationResult domain.Result[domain.Recommendation]
	Prices               domain.LivePrices

	UserResult      domain.Result[domain.UserInfo]
	AccountResult   domain.Result[domain.AccountSnapshot]
	PortfolioResult domain.Result[domain.Portfolio]
	OrdersResult    domain.Result[[]domain.Order]
	HistoryResult   domain.Result[[]domain.HistoryPoint]

	mu     sync.Mutex
	calls  map[string]int
	tokens []string
}

// NewFakeBackend creates a fake backend with every endpoint failing
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		LiveResult:           unavailable[domain.LiveData]("live_data"),
		HistoricalResult:     unavailable[domain.HistoricalData]("historical_data"),
		PredictionResult:     unavailable[domain.Prediction]("predict"),
		RecommendationResult: unavailable[domain.Recommendation]("recommend"),
		Prices:               domain.LivePrices{},
		UserResult:           unavailable[domain.UserInfo]("users_me"),
		AccountResult:        unavailable[domain.AccountSnapshot]("account"),
		PortfolioResult:      unavailable[domain.Portfolio]("portfolio"),
		OrdersResult:         unavailable[[]domain.Order]("orders"),
		HistoryResult:        unavailable[[]domain.HistoryPoint]("portfolio_history"),
		calls:                make(map[string]int),
	}
}

func unavailable[T any](endpoint string) domain.Result[T] {
	return domain.Fail[T](domain.FailureNetwork, endpoint, ErrUnavailable)
}

// Calls returns how often endpoint was requested
func (f *FakeBackend) Calls(endpoint string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[endpoint]
}

// Tokens returns the tokens handed to ForToken, in order
func (f *FakeBackend) Tokens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tokens...)
}

func (f *FakeBackend) record(endpoint string) {
	f.mu.Lock()
	f.calls[endpoint]++
	f.mu.Unlock()
}

// Market implements domain.SessionClients
func (f *FakeBackend) Market() domain.MarketDataClient { return f }

// ForToken implements domain.SessionClients
func (f *FakeBackend) ForToken(token string) domain.AccountClient {
	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	f.mu.Unlock()
	return f
}

func (f *FakeBackend) LiveData(ctx context.Context, symbol string) domain.Result[domain.LiveData] {
	f.record("live_data")
	return f.LiveResult
}

func (f *FakeBackend) HistoricalData(ctx context.Context, symbol string, tf domain.Timeframe) domain.Result[domain.HistoricalData] {
	f.record("historical_data")
	return f.HistoricalResult
}

func (f *FakeBackend) Prediction(ctx context.Context, symbol string) domain.Result[domain.Prediction] {
	f.record("predict")
	return f.PredictionResult
}

func (f *FakeBackend) Recommendation(ctx context.Context, symbol string) domain.Result[domain.Recommendation] {
	f.record("recommend")
	return f.RecommendationResult
}

func (f *FakeBackend) LivePrices(ctx context.Context, symbols []string) domain.LivePrices {
	f.record("live_prices")
	out := make(domain.LivePrices, len(symbols))
	for _, s := range symbols {
		if p, ok := f.Prices.Price(s); ok {
			out[s] = p
		}
	}
	return out
}

func (f *FakeBackend) CurrentUser(ctx context.Context) domain.Result[domain.UserInfo] {
	f.record("users_me")
	return f.UserResult
}

func (f *FakeBackend) Account(ctx context.Context) domain.Result[domain.AccountSnapshot] {
	f.record("account")
	return f.AccountResult
}

func (f *FakeBackend) Portfolio(ctx context.Context) domain.Result[domain.Portfolio] {
	f.record("portfolio")
	return f.PortfolioResult
}

func (f *FakeBackend) Orders(ctx context.Context) domain.Result[[]domain.Order] {
	f.record("orders")
	return f.OrdersResult
}

func (f *FakeBackend) PortfolioHistory(ctx context.Context, tf domain.Timeframe) domain.Result[[]domain.HistoryPoint] {
	f.record("portfolio_history")
	return f.HistoryResult
}
