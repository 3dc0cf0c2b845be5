package views

import (
	"errors"
	"testing"
	"time"

	"github.com/aristath/minty/internal/domain"
	"github.com/aristath/minty/internal/modules/formatting"
	"github.com/aristath/minty/internal/modules/valuation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func failure[T any]() domain.Result[T] {
	return domain.Fail[T](domain.FailureNetwork, "test", errors.New("connection refused"))
}

func TestSummary_EmptyPortfolioWithCash(t *testing.T) {
	summary := Summary(
		domain.Ok(domain.AccountSnapshot{Cash: 1000}),
		domain.Ok(domain.Portfolio{Positions: []domain.Position{}}),
		domain.LivePrices{},
	)
	assert.Equal(t, "$1,000.00", summary.TotalValue)
	assert.Equal(t, "$1,000.00", summary.Cash)
	assert.Equal(t, "$0.00", summary.Invested)
	assert.Equal(t, "+0.00%", summary.PnLPct)
	assert.Equal(t, formatting.ClassNeutral, summary.PnLClass)

	holdings := Holdings(domain.Ok(domain.Portfolio{Positions: []domain.Position{}}), domain.LivePrices{})
	require.NotNil(t, holdings.Empty)
	assert.Equal(t, "No holdings yet", holdings.Empty.Title)
	assert.Equal(t, "Start trading to see your portfolio here", holdings.Empty.Subtitle)
	assert.Empty(t, holdings.Items)
}

func TestSummary_WithPositions(t *testing.T) {
	portfolio := domain.Ok(domain.Portfolio{Positions: []domain.Position{
		{Symbol: "NVDA", Quantity: 10, AvgEntryPrice: 100},
		{Symbol: "AAPL", Quantity: 2, AvgEntryPrice: 150, CurrentPrice: ptr(140)},
	}})

	summary := Summary(domain.Ok(domain.AccountSnapshot{Cash: 500}), portfolio, domain.LivePrices{"NVDA": 120})

	// invested 1300, current 1200 + 280 = 1480
	assert.Equal(t, "$1,300.00", summary.Invested)
	assert.Equal(t, "$1,980.00", summary.TotalValue)
	assert.Equal(t, "$180.00", summary.PnL)
	assert.Equal(t, formatting.ClassUp, summary.PnLClass)
	assert.Equal(t, "+13.85%", summary.PnLPct)
}

func TestSummary_UnknownAccountBlanksCashOnly(t *testing.T) {
	portfolio := domain.Ok(domain.Portfolio{Positions: []domain.Position{{Symbol: "NVDA", Quantity: 1, AvgEntryPrice: 100}}})

	summary := Summary(failure[domain.AccountSnapshot](), portfolio, domain.LivePrices{"NVDA": 90})
	assert.Equal(t, formatting.Placeholder, summary.Cash)
	assert.Equal(t, formatting.Placeholder, summary.TotalValue)
	assert.Equal(t, "$100.00", summary.Invested)
	assert.Equal(t, "-$10.00", summary.PnL)
	assert.Equal(t, formatting.ClassDown, summary.PnLClass)
}

func TestSummary_UnknownPortfolio(t *testing.T) {
	summary := Summary(domain.Ok(domain.AccountSnapshot{Cash: 10}), failure[domain.Portfolio](), nil)
	assert.Equal(t, formatting.Placeholder, summary.TotalValue)
	assert.Equal(t, formatting.Placeholder, summary.Invested)
	assert.Equal(t, formatting.Placeholder, summary.PnLPct)
}

func TestHoldings(t *testing.T) {
	holdings := Holdings(domain.Ok(domain.Portfolio{Positions: []domain.Position{
		{Symbol: "NVDA", Quantity: 10, AvgEntryPrice: 100},
		{Symbol: "XYZ", Quantity: 1.5, AvgEntryPrice: 0},
	}}), domain.LivePrices{"NVDA": 90})

	require.Len(t, holdings.Items, 2)
	nvda := holdings.Items[0]
	assert.Equal(t, "NVIDIA", nvda.Name)
	assert.Equal(t, "10.00 shares", nvda.Shares)
	assert.Equal(t, "-$100.00", nvda.Return)
	assert.Equal(t, "-10.00%", nvda.ReturnPct)
	assert.Equal(t, formatting.ClassDown, nvda.ReturnPctClass)

	xyz := holdings.Items[1]
	assert.Equal(t, "XYZ", xyz.Name)
	assert.Equal(t, "+0.00%", xyz.ReturnPct)
}

func TestHoldings_Unavailable(t *testing.T) {
	holdings := Holdings(failure[domain.Portfolio](), nil)
	require.NotNil(t, holdings.Empty)
	assert.Equal(t, "Holdings unavailable", holdings.Empty.Title)
}

func TestLiveStats_FailureRendersPlaceholders(t *testing.T) {
	var stats LiveStatsModel
	require.NotPanics(t, func() { stats = LiveStats(failure[domain.LiveData]()) })

	assert.Equal(t, formatting.Placeholder, stats.Price)
	assert.Equal(t, formatting.Placeholder, stats.Change)
	assert.Equal(t, formatting.ClassNeutral, stats.ChangeClass)
	assert.Equal(t, formatting.Placeholder, stats.Open)
	assert.Equal(t, formatting.Placeholder, stats.High)
	assert.Equal(t, formatting.Placeholder, stats.Low)
	assert.Equal(t, formatting.Placeholder, stats.Volume)
}

func TestLiveStats(t *testing.T) {
	stats := LiveStats(domain.Ok(domain.LiveData{
		Price:          ptr(148.5),
		PriceChange:    ptr(2),
		PriceChangePct: ptr(1.3468),
		Open:           ptr(146.1),
		DayHigh:        ptr(149),
		DayLow:         ptr(145.25),
		Volume:         ptr(1234567),
	}))

	assert.Equal(t, "$148.50", stats.Price)
	assert.Equal(t, "+2.00 (+1.35%)", stats.Change)
	assert.Equal(t, formatting.ClassUp, stats.ChangeClass)
	assert.Equal(t, "$146.1", stats.Open)
	assert.Equal(t, "$149", stats.High)
	assert.Equal(t, "$145.25", stats.Low)
	assert.Equal(t, "1,234,567", stats.Volume)
}

func TestLiveStats_PartialData(t *testing.T) {
	stats := LiveStats(domain.Ok(domain.LiveData{Price: ptr(0), PriceChange: ptr(-1.5), PriceChangePct: ptr(-0.5)}))
	assert.Equal(t, formatting.Placeholder, stats.Price)
	assert.Equal(t, "-1.50 (-0.50%)", stats.Change)
	assert.Equal(t, formatting.ClassDown, stats.ChangeClass)

	stats = LiveStats(domain.Ok(domain.LiveData{PriceChange: ptr(1)}))
	assert.Equal(t, formatting.Placeholder, stats.Change)
}

func TestRecommendation(t *testing.T) {
	model := Recommendation(domain.Ok(domain.Recommendation{Recommendation: "BUY", Confidence: "High"}))
	assert.Equal(t, "BUY", model.Recommendation)
	assert.Equal(t, "BUY", model.Class)
	assert.Equal(t, "High", model.Confidence)

	model = Recommendation(domain.Ok(domain.Recommendation{Recommendation: "Not enough data", Confidence: "Not enough data"}))
	assert.Equal(t, "Not enough data for recommendation", model.Recommendation)
	assert.Empty(t, model.Class)
	assert.Equal(t, "Not enough data", model.Confidence)

	model = Recommendation(failure[domain.Recommendation]())
	assert.Equal(t, "Not enough data for recommendation", model.Recommendation)
}

func TestNewsAndPrediction(t *testing.T) {
	assert.Equal(t, []string{"No news available."}, News(failure[domain.Prediction]()))
	assert.Equal(t, []string{"No news available."}, News(domain.Ok(domain.Prediction{})))
	assert.Equal(t, []string{"a", "b"}, News(domain.Ok(domain.Prediction{News: []string{"a", "b"}})))

	assert.Equal(t, "$201.25", Prediction(domain.Ok(domain.Prediction{PredictedPrice: ptr(201.25)})).PredictedPrice)
	assert.Equal(t, formatting.Placeholder, Prediction(failure[domain.Prediction]()).PredictedPrice)
}

func TestHeader(t *testing.T) {
	h := Header(domain.Ok(domain.UserInfo{Username: "nvda"}))
	assert.Equal(t, "Nvda's Portfolio", h.Title)
	assert.Equal(t, "Minty - Nvda's Portfolio", h.DocumentTitle)

	h = Header(failure[domain.UserInfo]())
	assert.Equal(t, "Portfolio", h.Title)
	assert.Equal(t, "Minty - Portfolio Dashboard", h.DocumentTitle)

	h = Header(domain.Ok(domain.UserInfo{}))
	assert.Equal(t, "Portfolio", h.Title)
}

func TestActivity_LastTenNewestFirst(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	orders := make([]domain.Order, 12)
	for i := range orders {
		orders[i] = domain.Order{
			Symbol:    "NVDA",
			Side:      domain.OrderSideBuy,
			Quantity:  float64(i + 1),
			Price:     100,
			Status:    domain.OrderStatusFilled,
			RawStatus: "filled",
			Timestamp: base.AddDate(0, 0, i),
		}
	}
	orders[11].Side = domain.OrderSideSell

	activity := Activity(domain.Ok(orders), time.UTC)
	require.Len(t, activity.Items, RecentActivityLimit)
	assert.Equal(t, "SELL 12 NVDA", activity.Items[0].Title)
	assert.Equal(t, "arrow-down", activity.Items[0].Icon)
	assert.Equal(t, "@ $100.00", activity.Items[0].Price)
	assert.Equal(t, "3/12/2025", activity.Items[0].Date)
	assert.Equal(t, "filled", activity.Items[0].Status)
	assert.Equal(t, "BUY 3 NVDA", activity.Items[9].Title)
	assert.Equal(t, "arrow-up", activity.Items[9].Icon)
}

func TestActivity_EmptyAndUnavailable(t *testing.T) {
	activity := Activity(domain.Ok([]domain.Order{}), time.UTC)
	require.NotNil(t, activity.Empty)
	assert.Equal(t, "No recent activity", activity.Empty.Title)

	activity = Activity(failure[[]domain.Order](), time.UTC)
	assert.Equal(t, "Activity unavailable", activity.Empty.Title)
}

func TestAllocation(t *testing.T) {
	model, ok := Allocation(domain.Ok(domain.Portfolio{Positions: []domain.Position{
		{Symbol: "NVDA", Quantity: 10, AvgEntryPrice: 100},
		{Symbol: "ZZZ", Quantity: 1, AvgEntryPrice: 50},
	}}), domain.LivePrices{"NVDA": 110})

	require.True(t, ok)
	assert.Equal(t, []string{"NVIDIA", "ZZZ"}, model.Labels)
	assert.Equal(t, []float64{1100, 50}, model.Values)
	assert.Equal(t, []string{"#76b900", "#4caf50"}, model.Colors)
	assert.Equal(t, 1150.0, model.Total)

	model, ok = Allocation(domain.Ok(domain.Portfolio{}), nil)
	require.True(t, ok)
	assert.Equal(t, "No holdings to display", model.Empty)

	_, ok = Allocation(failure[domain.Portfolio](), nil)
	assert.False(t, ok)
}

func TestAboutAndLinks(t *testing.T) {
	assert.Equal(t, "Apple", About("aapl").Name)
	assert.Equal(t, "NVIDIA", About("UNKNOWN").Name)
	assert.Equal(t, "Santa Clara, California", About("AMD").Headquarters)
	assert.Equal(t, "NVDA", NormalizeSymbol("  "))
	assert.Equal(t, "TSLA", NormalizeSymbol("tsla"))
	assert.Equal(t, "trade.html?symbol=NVDA&side=buy", TradeLink("NVDA", domain.OrderSideBuy))
	assert.Equal(t, "trade.html?symbol=AAPL&side=sell", TradeLink("AAPL", domain.OrderSideSell))
}

func TestChartHeader(t *testing.T) {
	summary := SummaryModel{TotalValue: "$2.00", PnL: "$1.00", PnLClass: "up", PnLPct: "+1.00%", PnLPctClass: "up"}
	series := valuation.Series{
		ChartSeries: domain.ChartSeries{Labels: []string{"a", "b", "c"}, Values: []float64{100, 120, 90}},
		Source:      valuation.SourceReplay,
	}

	header := ChartHeader(summary, series)
	assert.Equal(t, "$2.00", header.TotalValue)
	assert.Equal(t, "$120.00", header.High)
	assert.Equal(t, "$90.00", header.Low)
	assert.Equal(t, "-$10.00", header.Change)
	assert.Equal(t, "-10.00%", header.ChangePct)
	assert.Equal(t, "replay", header.Source)

	empty := ChartHeader(summary, valuation.Series{})
	assert.Equal(t, formatting.Placeholder, empty.High)
}

func TestChartConfigs(t *testing.T) {
	data := domain.HistoricalData{
		Dates:      []string{"a", "b"},
		Prices:     []float64{1, 2},
		RSI:        []float64{0, 50},
		MACD:       []float64{0, 1},
		MACDSignal: []float64{0, 0.5},
	}
	assert.Equal(t, []float64{1, 2}, PriceChart(data).Datasets[0].Values)
	assert.Equal(t, "RSI", RSIChart(data).Datasets[0].Label)
	require.Len(t, MACDChart(data).Datasets, 2)
	assert.Equal(t, []float64{0, 0.5}, MACDChart(data).Datasets[1].Values)
}
