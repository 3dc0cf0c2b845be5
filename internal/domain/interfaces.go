package domain

import "context"

// MarketDataClient covers the unauthenticated per-symbol endpoints
type MarketDataClient interface {
	LiveData(ctx context.Context, symbol string) Result[LiveData]
	HistoricalData(ctx context.Context, symbol string, tf Timeframe) Result[HistoricalData]
	Prediction(ctx context.Context, symbol string) Result[Prediction]
	Recommendation(ctx context.Context, symbol string) Result[Recommendation]
	// LivePrices returns prices for the symbols it could fetch; failures are omitted
	LivePrices(ctx context.Context, symbols []string) LivePrices
}

// AccountClient covers the endpoints that require a session token
type AccountClient interface {
	MarketDataClient
	CurrentUser(ctx context.Context) Result[UserInfo]
	Account(ctx context.Context) Result[AccountSnapshot]
	Portfolio(ctx context.Context) Result[Portfolio]
	Orders(ctx context.Context) Result[[]Order]
	PortfolioHistory(ctx context.Context, tf Timeframe) Result[[]HistoryPoint]
}

// SessionClients hands out clients bound to one session token
type SessionClients interface {
	Market() MarketDataClient
	ForToken(token string) AccountClient
}
