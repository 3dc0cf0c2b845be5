// Package market is the single-stock dashboard page: live stats, price and
// indicator charts, recommendation and news for one symbol.
package market

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/minty/internal/domain"
	"github.com/aristath/minty/internal/events"
	"github.com/aristath/minty/internal/modules/pages"
	"github.com/aristath/minty/internal/modules/views"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultTimeframe is the stock page's initial timeframe
const DefaultTimeframe = domain.Timeframe1Y

// DefaultRefreshInterval is how often the page refreshes without forcing charts
const DefaultRefreshInterval = 15 * time.Second

// liveLabelLayout labels the appended live point (UTC minutes)
const liveLabelLayout = "2006-01-02 15:04"

// Sections of the stock page
const (
	SectionAbout          = "about"
	SectionLive           = "live"
	SectionCharts         = "charts"
	SectionRecommendation = "recommendation"
	SectionNews           = "news"
	SectionPrediction     = "prediction"
	SectionTrade          = "trade"
)

// Config holds stock page configuration
type Config struct {
	RefreshInterval time.Duration
}

// TradeLinks are the buy/sell navigation targets
type TradeLinks struct {
	Buy  string `json:"buy"`
	Sell string `json:"sell"`
}

// ChartsModel describes what the last chart render drew
type ChartsModel struct {
	Points    int              `json:"points"`
	LastLabel string           `json:"last_label,omitempty"`
	Timeframe domain.Timeframe `json:"timeframe"`
}

// View is a mounted stock page
type View struct {
	*pages.Base
	symbol   string
	client   domain.MarketDataClient
	interval time.Duration
	now      func() time.Time
}

// NewView creates a stock page for symbol. The symbol is upper-cased and defaults to NVDA.
func NewView(id, symbol string, client domain.MarketDataClient, bus *events.Bus, cfg Config, log zerolog.Logger) *View {
	interval := cfg.RefreshInterval
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &View{
		Base:     pages.NewBase(id, pages.PageStock, DefaultTimeframe, bus, log),
		symbol:   views.NormalizeSymbol(symbol),
		client:   client,
		interval: interval,
		now:      time.Now,
	}
}

// SetClock replaces the clock used for the live point label
func (v *View) SetClock(now func() time.Time) {
	v.now = now
}

// Symbol returns the page's symbol
func (v *View) Symbol() string { return v.symbol }

// TradeLink returns the trade page URL for side
func (v *View) TradeLink(side domain.OrderSide) string {
	return views.TradeLink(v.symbol, side)
}

// Timers implements pages.View
func (v *View) Timers() []pages.Timer {
	return []pages.Timer{{
		Name:     "refresh",
		Interval: v.interval,
		Run: func(ctx context.Context) error {
			return v.Refresh(ctx, false)
		},
	}}
}

// SetTimeframe selects tf and, when it changed, refreshes with chart recreation
func (v *View) SetTimeframe(ctx context.Context, tf domain.Timeframe) error {
	if !tf.IsHistoricalTimeframe() {
		return fmt.Errorf("%w: %q", pages.ErrInvalidTimeframe, tf)
	}
	if !v.SwapTimeframe(tf) {
		return nil
	}
	return v.Refresh(ctx, true)
}

// Refresh fetches live and historical data, reconciles the charts, then the
// recommendation and news. Unavailable data renders as unknown; it is not an error.
func (v *View) Refresh(ctx context.Context, force bool) error {
	seq := v.Begin()
	tf := v.Timeframe()

	v.Set(SectionAbout, seq, views.About(v.symbol))
	v.Set(SectionTrade, seq, TradeLinks{
		Buy:  v.TradeLink(domain.OrderSideBuy),
		Sell: v.TradeLink(domain.OrderSideSell),
	})

	var (
		live       domain.Result[domain.LiveData]
		historical domain.Result[domain.HistoricalData]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		live = v.client.LiveData(gctx, v.symbol)
		return nil
	})
	g.Go(func() error {
		historical = v.client.HistoricalData(gctx, v.symbol, tf)
		return nil
	})
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	v.Set(SectionLive, seq, views.LiveStats(live))
	v.Apply(SectionCharts, seq, func() interface{} {
		return v.renderCharts(historical, live, tf, force)
	})

	var (
		rec  domain.Result[domain.Recommendation]
		pred domain.Result[domain.Prediction]
	)
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		rec = v.client.Recommendation(gctx, v.symbol)
		return nil
	})
	g.Go(func() error {
		pred = v.client.Prediction(gctx, v.symbol)
		return nil
	})
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	v.Set(SectionRecommendation, seq, views.Recommendation(rec))
	v.Set(SectionNews, seq, views.News(pred))
	v.Set(SectionPrediction, seq, views.Prediction(pred))
	return nil
}

// renderCharts reconciles the price, rsi and macd slots. Failed historical
// data leaves the charts and the section untouched.
func (v *View) renderCharts(historical domain.Result[domain.HistoricalData], live domain.Result[domain.LiveData], tf domain.Timeframe, force bool) interface{} {
	data, ok := historical.Get()
	if !ok {
		return nil
	}
	if l, ok := live.Get(); ok && l.Price != nil && *l.Price != 0 {
		data = AppendLivePoint(data, *l.Price, v.now())
	}

	rec := v.Reconciler()
	rec.Reconcile(views.SlotPrice, views.PriceChart(data), force)
	rec.Reconcile(views.SlotRSI, views.RSIChart(data), force)
	rec.Reconcile(views.SlotMACD, views.MACDChart(data), force)

	model := ChartsModel{Points: len(data.Dates), Timeframe: tf}
	if n := len(data.Dates); n > 0 {
		model.LastLabel = data.Dates[n-1]
	}
	return model
}

// AppendLivePoint returns data with the live price appended under a UTC
// "YYYY-MM-DD HH:MM" label, unless the series already ends with that label.
// Only dates and prices grow; the indicator series keep their length.
func AppendLivePoint(data domain.HistoricalData, price float64, now time.Time) domain.HistoricalData {
	label := now.UTC().Format(liveLabelLayout)
	if n := len(data.Dates); n > 0 && data.Dates[n-1] == label {
		return data
	}

	dates := make([]string, len(data.Dates), len(data.Dates)+1)
	copy(dates, data.Dates)
	prices := make([]float64, len(data.Prices), len(data.Prices)+1)
	copy(prices, data.Prices)

	data.Dates = append(dates, label)
	data.Prices = append(prices, price)
	return data
}
