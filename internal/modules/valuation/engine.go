// Package valuation derives the portfolio value time series shown on the portfolio page.
//
// Two sources feed the series. When the backend supplies an authoritative history
// it is used as-is. Otherwise the order log is replayed chronologically against a
// synthetic starting balance, valuing held symbols at live prices where known.
package valuation

import (
	"math"
	"sort"
	"time"

	"github.com/aristath/minty/internal/domain"
	"github.com/rs/zerolog"
)

// DefaultStartingCash is the assumed balance at the start of every replay window
const DefaultStartingCash = 100000.0

// driftTolerance is the smallest replay/history gap worth reporting (half a cent)
const driftTolerance = 0.005

// Source tells which input produced a series
type Source string

const (
	SourceHistory Source = "history"
	SourceReplay  Source = "replay"
)

// Holding is the running position of one symbol during a replay
type Holding struct {
	Quantity  float64 `json:"qty"`
	AvgPrice  float64 `json:"avg_price"`
	TotalCost float64 `json:"total_cost"`
}

// TimePoint is one emitted point of a replay
type TimePoint struct {
	Timestamp  time.Time          `json:"timestamp"`
	Cash       float64            `json:"cash"`
	Positions  map[string]Holding `json:"positions"`
	TotalValue float64            `json:"total_value"`
}

// Inputs is everything the engine needs for one derivation run
type Inputs struct {
	Positions  []domain.Position
	LivePrices domain.LivePrices
	Account    domain.Result[domain.AccountSnapshot]
	Orders     []domain.Order
	Timeframe  domain.Timeframe
}

// Series is a chart-ready value series plus where it came from
type Series struct {
	domain.ChartSeries
	Source    Source `json:"source"`
	CashKnown bool   `json:"cash_known"`
	// ReplayDrift is authoritative last value minus the replay's running total.
	// Only set when a server history was used, live orders or prices were
	// supplied and the replay disagrees with the history.
	ReplayDrift *float64 `json:"replay_drift,omitempty"`
}

// Engine derives value series. It holds no per-view state and is safe for concurrent use.
type Engine struct {
	startingCash float64
	loc          *time.Location
	now          func() time.Time
	log          zerolog.Logger
}

// NewEngine creates a valuation engine.
// Labels are formatted in loc; a nil loc means time.Local.
func NewEngine(startingCash float64, loc *time.Location, log zerolog.Logger) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{
		startingCash: startingCash,
		loc:          loc,
		now:          time.Now,
		log:          log.With().Str("service", "valuation").Logger(),
	}
}

// SetClock replaces the engine's notion of "now"
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// StartingCash returns the synthetic replay baseline
func (e *Engine) StartingCash() float64 {
	return e.startingCash
}

// DeriveValueSeries replays the order log over the timeframe's window and closes the
// series with a point valued from the caller's current positions, live prices and cash.
func (e *Engine) DeriveValueSeries(in Inputs) Series {
	now := e.now()
	replay := e.Replay(in.Orders, in.LivePrices, in.Timeframe, now)

	points := append(replay.Points, currentPoint(in, now))
	return Series{
		ChartSeries: e.chartSeries(points, in.Timeframe),
		Source:      SourceReplay,
		CashKnown:   in.Account.OK(),
	}
}

// Resolve prefers a non-empty server-supplied history and falls back to the replay
func (e *Engine) Resolve(history domain.Result[[]domain.HistoryPoint], in Inputs) Series {
	points, ok := history.Get()
	if !ok || len(points) == 0 {
		return e.DeriveValueSeries(in)
	}

	series := Series{
		ChartSeries: domain.ChartSeries{
			Labels: make([]string, len(points)),
			Values: make([]float64, len(points)),
		},
		Source:    SourceHistory,
		CashKnown: in.Account.OK(),
	}
	for i, p := range points {
		series.Labels[i] = in.Timeframe.FormatLabel(p.Date.In(e.loc))
		series.Values[i] = p.Value
	}

	if hasLiveData(in) {
		series.ReplayDrift = e.replayDrift(points[len(points)-1].Value, in)
	}
	return series
}

// hasLiveData reports whether the replay has anything of its own to compare.
// With no orders and no prices it is only the synthetic starting balance.
func hasLiveData(in Inputs) bool {
	return len(in.Orders) > 0 || len(in.LivePrices) > 0
}

// replayDrift compares the authoritative latest value with the replay's running total.
// The replay starts from a synthetic balance, so a gap is expected; it is reported, not corrected.
func (e *Engine) replayDrift(authoritative float64, in Inputs) *float64 {
	replay := e.Replay(in.Orders, in.LivePrices, in.Timeframe, e.now())
	estimated := replay.Points[len(replay.Points)-1].TotalValue

	drift := authoritative - estimated
	if math.Abs(drift) < driftTolerance {
		return nil
	}

	e.log.Warn().
		Str("timeframe", string(in.Timeframe)).
		Float64("authoritative", authoritative).
		Float64("replay_estimate", estimated).
		Float64("replay_drift", drift).
		Float64("starting_cash", e.startingCash).
		Msg("Replay estimate disagrees with server history")
	return &drift
}

// currentPoint values the caller's live snapshot, not the replayed running state
func currentPoint(in Inputs, now time.Time) TimePoint {
	positions := make(map[string]Holding, len(in.Positions))
	invested := 0.0
	for _, pos := range in.Positions {
		positions[pos.Symbol] = Holding{
			Quantity:  pos.Quantity,
			AvgPrice:  pos.AvgEntryPrice,
			TotalCost: pos.CostBasis(),
		}
		invested += pos.MarketValue(in.LivePrices)
	}

	cash := in.Account.OrElse(domain.AccountSnapshot{}).Cash
	return TimePoint{
		Timestamp:  now,
		Cash:       cash,
		Positions:  positions,
		TotalValue: invested + cash,
	}
}

func (e *Engine) chartSeries(points []TimePoint, tf domain.Timeframe) domain.ChartSeries {
	series := domain.ChartSeries{
		Labels: make([]string, len(points)),
		Values: make([]float64, len(points)),
	}
	for i, p := range points {
		series.Labels[i] = tf.FormatLabel(p.Timestamp.In(e.loc))
		series.Values[i] = p.TotalValue
	}
	return series
}

// ordersInWindow returns the orders with start <= timestamp <= end, sorted ascending.
// Ties keep their log order.
func ordersInWindow(orders []domain.Order, start, end time.Time) []domain.Order {
	relevant := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if o.Timestamp.Before(start) || o.Timestamp.After(end) {
			continue
		}
		relevant = append(relevant, o)
	}
	sort.SliceStable(relevant, func(i, j int) bool {
		return relevant[i].Timestamp.Before(relevant[j].Timestamp)
	})
	return relevant
}
