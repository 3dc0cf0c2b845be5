package backend

import (
	"math"

	"github.com/aristath/minty/internal/domain"
	"github.com/markcheno/go-talib"
)

// Indicator periods used by the backend
const (
	rsiPeriod        = 14
	macdFastPeriod   = 12
	macdSlowPeriod   = 26
	macdSignalPeriod = 9
)

// fillIndicators computes RSI and MACD from the closes when the backend left them
// out or they do not line up with the prices. Values inside the warm-up window
// are 0, as the backend fills them.
func fillIndicators(data domain.HistoricalData) (domain.HistoricalData, bool) {
	n := len(data.Prices)
	changed := false

	if len(data.RSI) != n {
		data.RSI = computeRSI(data.Prices)
		changed = true
	}
	if len(data.MACD) != n || len(data.MACDSignal) != n {
		data.MACD, data.MACDSignal = computeMACD(data.Prices)
		changed = true
	}
	return data, changed
}

func computeRSI(prices []float64) []float64 {
	if len(prices) <= rsiPeriod {
		return make([]float64, len(prices))
	}
	return zeroNaN(talib.Rsi(prices, rsiPeriod))
}

func computeMACD(prices []float64) ([]float64, []float64) {
	lookback := macdSlowPeriod + macdSignalPeriod - 2
	if len(prices) <= lookback {
		return make([]float64, len(prices)), make([]float64, len(prices))
	}
	macd, signal, _ := talib.Macd(prices, macdFastPeriod, macdSlowPeriod, macdSignalPeriod)
	return zeroNaN(macd), zeroNaN(signal)
}

func zeroNaN(values []float64) []float64 {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			values[i] = 0
		}
	}
	return values
}
