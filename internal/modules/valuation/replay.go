package valuation

import (
	"time"

	"github.com/aristath/minty/internal/domain"
)

// ReplayState is the running bookkeeping of one replay
type ReplayState struct {
	Cash     float64
	Holdings map[string]Holding
	Points   []TimePoint
	// Skipped counts executed orders rejected by the bookkeeping rules
	// (unaffordable buys, oversells)
	Skipped int

	// symbols keeps holdings in the order they were opened so totals sum deterministically
	symbols []string
}

// Replay re-applies the executed orders inside the timeframe's window to a state that
// starts with the engine's synthetic cash and no holdings.
//
// The first point is the window start valued at the starting cash. Each accepted order
// emits one point valued at live prices, falling back to that order's price for symbols
// without a live quote. Skipped orders emit nothing.
func (e *Engine) Replay(orders []domain.Order, live domain.LivePrices, tf domain.Timeframe, now time.Time) ReplayState {
	windowStart := now.Add(-tf.Lookback())

	state := ReplayState{
		Cash:     e.startingCash,
		Holdings: make(map[string]Holding),
	}
	state.Points = append(state.Points, TimePoint{
		Timestamp:  windowStart,
		Cash:       e.startingCash,
		Positions:  map[string]Holding{},
		TotalValue: e.startingCash,
	})

	for _, order := range ordersInWindow(orders, windowStart, now) {
		if !order.Executed() {
			continue
		}

		var applied bool
		switch order.Side {
		case domain.OrderSideBuy:
			applied = state.buy(order)
		case domain.OrderSideSell:
			applied = state.sell(order)
		}
		if !applied {
			state.Skipped++
			continue
		}

		state.Points = append(state.Points, TimePoint{
			Timestamp:  order.Timestamp,
			Cash:       state.Cash,
			Positions:  state.snapshot(),
			TotalValue: state.value(live, order.Price),
		})
	}

	return state
}

// buy debits cash and grows the position. Returns false when cash cannot cover the order.
func (s *ReplayState) buy(order domain.Order) bool {
	cost := order.Value()
	if s.Cash < cost {
		return false
	}
	s.Cash -= cost

	h, held := s.Holdings[order.Symbol]
	if !held {
		s.symbols = append(s.symbols, order.Symbol)
	}
	totalCost := h.TotalCost + cost
	quantity := h.Quantity + order.Quantity
	s.Holdings[order.Symbol] = Holding{
		Quantity:  quantity,
		AvgPrice:  totalCost / quantity,
		TotalCost: totalCost,
	}
	return true
}

// sell credits cash and shrinks the position, dropping it at zero.
// Returns false when the symbol is not held in the requested quantity.
func (s *ReplayState) sell(order domain.Order) bool {
	h, held := s.Holdings[order.Symbol]
	if !held || h.Quantity < order.Quantity {
		return false
	}
	s.Cash += order.Value()

	h.Quantity -= order.Quantity
	h.TotalCost = h.AvgPrice * h.Quantity
	if h.Quantity <= 0 {
		s.drop(order.Symbol)
		return true
	}
	s.Holdings[order.Symbol] = h
	return true
}

func (s *ReplayState) drop(symbol string) {
	delete(s.Holdings, symbol)
	for i, sym := range s.symbols {
		if sym == symbol {
			s.symbols = append(s.symbols[:i], s.symbols[i+1:]...)
			return
		}
	}
}

// value is cash plus every holding at its live price, or fallback when no live quote exists
func (s *ReplayState) value(live domain.LivePrices, fallback float64) float64 {
	total := s.Cash
	for _, symbol := range s.symbols {
		price, ok := live.Price(symbol)
		if !ok {
			price = fallback
		}
		total += s.Holdings[symbol].Quantity * price
	}
	return total
}

func (s *ReplayState) snapshot() map[string]Holding {
	out := make(map[string]Holding, len(s.Holdings))
	for symbol, h := range s.Holdings {
		out[symbol] = h
	}
	return out
}
