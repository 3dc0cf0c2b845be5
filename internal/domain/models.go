// Package domain provides core domain models and types.
package domain

import (
	"strings"
	"time"
)

// OrderSide is the direction of an order
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// OrderStatus is the normalized lifecycle state of an order.
// Anything the backend reports besides filled/accepted collapses to other.
type OrderStatus string

const (
	OrderStatusFilled   OrderStatus = "filled"
	OrderStatusAccepted OrderStatus = "accepted"
	OrderStatusOther    OrderStatus = "other"
)

// NormalizeOrderStatus maps a raw backend status onto OrderStatus
func NormalizeOrderStatus(raw string) OrderStatus {
	switch OrderStatus(strings.ToLower(strings.TrimSpace(raw))) {
	case OrderStatusFilled:
		return OrderStatusFilled
	case OrderStatusAccepted:
		return OrderStatusAccepted
	default:
		return OrderStatusOther
	}
}

// LivePrices maps symbol -> last traded price
type LivePrices map[string]float64

// Price returns the live price for a symbol.
// A zero price counts as absent, the backend reports 0 when it has no quote.
func (lp LivePrices) Price(symbol string) (float64, bool) {
	p, ok := lp[symbol]
	if !ok || p <= 0 {
		return 0, false
	}
	return p, true
}

// Position represents a held quantity of one symbol plus its cost basis
type Position struct {
	Symbol        string   `json:"symbol"`
	Quantity      float64  `json:"qty"`
	AvgEntryPrice float64  `json:"avg_entry_price"`
	CurrentPrice  *float64 `json:"current_price,omitempty"`
}

// EffectivePrice returns the price used to value the position:
// live price, then the snapshot's current price, then the average entry price.
func (p Position) EffectivePrice(live LivePrices) float64 {
	if price, ok := live.Price(p.Symbol); ok {
		return price
	}
	if p.CurrentPrice != nil && *p.CurrentPrice > 0 {
		return *p.CurrentPrice
	}
	return p.AvgEntryPrice
}

// MarketValue is quantity times the effective price
func (p Position) MarketValue(live LivePrices) float64 {
	return p.Quantity * p.EffectivePrice(live)
}

// CostBasis is quantity times the average entry price
func (p Position) CostBasis() float64 {
	return p.Quantity * p.AvgEntryPrice
}

// Portfolio is the positions snapshot returned by the backend.
// It is replaced wholesale on every refresh.
type Portfolio struct {
	Positions []Position `json:"positions"`
}

// Symbols returns the unique position symbols in first-seen order
func (p Portfolio) Symbols() []string {
	seen := make(map[string]bool, len(p.Positions))
	symbols := make([]string, 0, len(p.Positions))
	for _, pos := range p.Positions {
		if seen[pos.Symbol] {
			continue
		}
		seen[pos.Symbol] = true
		symbols = append(symbols, pos.Symbol)
	}
	return symbols
}

// Order is one entry of the append-only order log
type Order struct {
	Symbol    string      `json:"symbol"`
	Side      OrderSide   `json:"side"`
	Quantity  float64     `json:"qty"`
	Price     float64     `json:"price"`
	Status    OrderStatus `json:"status"`
	RawStatus string      `json:"raw_status"`
	Timestamp time.Time   `json:"timestamp"`
}

// Executed reports whether the order affects valuation
func (o Order) Executed() bool {
	return o.Status == OrderStatusFilled || o.Status == OrderStatusAccepted
}

// Value is quantity times price
func (o Order) Value() float64 {
	return o.Quantity * o.Price
}

// AccountSnapshot is the uninvested balance at fetch time
type AccountSnapshot struct {
	Cash float64 `json:"cash"`
}

// UserInfo is the signed-in user's profile
type UserInfo struct {
	Username string `json:"username"`
}

// LiveData is the current price snapshot of one symbol.
// Every field is optional, the backend returns null when a value is unknown.
type LiveData struct {
	Price          *float64 `json:"price"`
	PriceChange    *float64 `json:"price_change"`
	PriceChangePct *float64 `json:"price_change_pct"`
	Open           *float64 `json:"open"`
	DayHigh        *float64 `json:"dayHigh"`
	DayLow         *float64 `json:"dayLow"`
	Volume         *float64 `json:"volume"`
}

// HistoricalData is the OHLC close series plus indicator series of one symbol
type HistoricalData struct {
	Dates      []string  `json:"dates"`
	Prices     []float64 `json:"prices"`
	RSI        []float64 `json:"rsi"`
	MACD       []float64 `json:"macd"`
	MACDSignal []float64 `json:"macd_signal"`
}

// Prediction is the model's predicted price plus recent headlines
type Prediction struct {
	PredictedPrice *float64 `json:"predicted_price"`
	News           []string `json:"news"`
}

// Recommendation is the backend's trade recommendation
type Recommendation struct {
	Recommendation string `json:"recommendation"`
	Confidence     string `json:"confidence"`
}

// HistoryPoint is one point of the authoritative portfolio value history
type HistoryPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// ChartSeries holds positionally paired labels and values
type ChartSeries struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// StockInfo is the static "about" record of a listed company
type StockInfo struct {
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Sector       string `json:"sector"`
	Industry     string `json:"industry"`
	Founded      string `json:"founded"`
	Headquarters string `json:"headquarters"`
}
