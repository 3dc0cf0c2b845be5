package backend

import (
	"context"
	"net/url"

	"github.com/aristath/minty/internal/clientdata"
	"github.com/aristath/minty/internal/domain"
	"golang.org/x/sync/errgroup"
)

// liveFetchLimit bounds concurrent live_data requests in LivePrices
const liveFetchLimit = 8

// LiveData fetches the current price snapshot of symbol
func (c *Client) LiveData(ctx context.Context, symbol string) domain.Result[domain.LiveData] {
	return fetch(ctx, c, request{
		endpoint:   EndpointLiveData,
		path:       symbolPath("/live_data/", symbol),
		cacheTable: clientdata.TableLiveData,
		cacheKey:   normalizeSymbol(symbol),
	}, parseLiveData)
}

// HistoricalData fetches the close and indicator series of symbol over tf.
// Missing or misaligned indicator series are computed locally from the closes.
func (c *Client) HistoricalData(ctx context.Context, symbol string, tf domain.Timeframe) domain.Result[domain.HistoricalData] {
	result := fetch(ctx, c, request{
		endpoint:   EndpointHistoricalData,
		path:       symbolPath("/historical_data/", symbol),
		query:      url.Values{"tf": {string(tf)}},
		cacheTable: clientdata.TableHistoricalData,
		cacheKey:   normalizeSymbol(symbol) + "|" + string(tf),
	}, parseHistoricalData)

	data, ok := result.Get()
	if !ok {
		return result
	}
	if filled, changed := fillIndicators(data); changed {
		c.log.Debug().
			Str("symbol", symbol).
			Str("timeframe", string(tf)).
			Msg("Computed indicators locally")
		return domain.Ok(filled)
	}
	return result
}

// Prediction fetches the model prediction and headlines for symbol
func (c *Client) Prediction(ctx context.Context, symbol string) domain.Result[domain.Prediction] {
	return fetch(ctx, c, request{
		endpoint:   EndpointPredict,
		path:       symbolPath("/predict/", symbol),
		cacheTable: clientdata.TablePredictions,
		cacheKey:   normalizeSymbol(symbol),
	}, parsePrediction)
}

// Recommendation fetches the trade recommendation for symbol
func (c *Client) Recommendation(ctx context.Context, symbol string) domain.Result[domain.Recommendation] {
	return fetch(ctx, c, request{
		endpoint:   EndpointRecommend,
		path:       symbolPath("/recommend/", symbol),
		cacheTable: clientdata.TableRecommendations,
		cacheKey:   normalizeSymbol(symbol),
	}, parseRecommendation)
}

// LivePrices fetches live data for each unique symbol concurrently.
// Symbols whose fetch fails or whose price is missing or zero are omitted.
func (c *Client) LivePrices(ctx context.Context, symbols []string) domain.LivePrices {
	unique := make([]string, 0, len(symbols))
	seen := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		unique = append(unique, s)
	}

	prices := make([]float64, len(unique))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(liveFetchLimit)
	for i, symbol := range unique {
		i, symbol := i, symbol
		g.Go(func() error {
			if data, ok := c.LiveData(gctx, symbol).Get(); ok && data.Price != nil {
				prices[i] = *data.Price
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make(domain.LivePrices, len(unique))
	for i, symbol := range unique {
		if prices[i] > 0 {
			out[symbol] = prices[i]
		}
	}
	return out
}

// CurrentUser fetches the signed-in user's profile
func (c *Client) CurrentUser(ctx context.Context) domain.Result[domain.UserInfo] {
	return fetch(ctx, c, request{endpoint: EndpointUsersMe, path: "/users/me", auth: true}, parseUser)
}

// Account fetches the cash balance
func (c *Client) Account(ctx context.Context) domain.Result[domain.AccountSnapshot] {
	return fetch(ctx, c, request{endpoint: EndpointAccount, path: "/account", auth: true}, parseAccount)
}

// Portfolio fetches the current positions
func (c *Client) Portfolio(ctx context.Context) domain.Result[domain.Portfolio] {
	return fetch(ctx, c, request{endpoint: EndpointPortfolio, path: "/portfolio", auth: true}, parsePortfolio)
}

// Orders fetches the order log
func (c *Client) Orders(ctx context.Context) domain.Result[[]domain.Order] {
	return fetch(ctx, c, request{endpoint: EndpointOrders, path: "/orders", auth: true}, c.parseOrders)
}

// PortfolioHistory fetches the authoritative value series over tf
func (c *Client) PortfolioHistory(ctx context.Context, tf domain.Timeframe) domain.Result[[]domain.HistoryPoint] {
	return fetch(ctx, c, request{
		endpoint: EndpointPortfolioHistory,
		path:     "/portfolio/history",
		query:    url.Values{"timeframe": {string(tf)}},
		auth:     true,
	}, c.parseHistory)
}
