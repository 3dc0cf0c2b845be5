package domain

import (
	"strings"
	"time"
)

// Timeframe names a look-back window. It controls both history length and label formatting.
type Timeframe string

const (
	Timeframe1D  Timeframe = "1D"
	Timeframe1W  Timeframe = "1W"
	Timeframe1M  Timeframe = "1M"
	Timeframe3M  Timeframe = "3M"
	Timeframe1Y  Timeframe = "1Y"
	TimeframeYTD Timeframe = "YTD"
	TimeframeALL Timeframe = "ALL"
)

const day = 24 * time.Hour

// ParseTimeframe normalizes user input ("1w", " 3M ")
func ParseTimeframe(s string) Timeframe {
	return Timeframe(strings.ToUpper(strings.TrimSpace(s)))
}

// IsPortfolioTimeframe reports whether the valuation engine supports tf
func (tf Timeframe) IsPortfolioTimeframe() bool {
	switch tf {
	case Timeframe1D, Timeframe1W, Timeframe1M, Timeframe3M, Timeframe1Y:
		return true
	}
	return false
}

// IsHistoricalTimeframe reports whether the historical_data endpoint accepts tf
func (tf Timeframe) IsHistoricalTimeframe() bool {
	return tf.IsPortfolioTimeframe() || tf == TimeframeYTD || tf == TimeframeALL
}

// Lookback returns the window length ending at "now".
// Unknown timeframes use the 1M window.
func (tf Timeframe) Lookback() time.Duration {
	switch tf {
	case Timeframe1D:
		return day
	case Timeframe1W:
		return 7 * day
	case Timeframe1M:
		return 30 * day
	case Timeframe3M:
		return 90 * day
	case Timeframe1Y:
		return 365 * day
	default:
		return 30 * day
	}
}

// FormatLabel formats a chart label for t in the timeframe's granularity
func (tf Timeframe) FormatLabel(t time.Time) string {
	switch tf {
	case Timeframe1D:
		return t.Format("03:04 PM")
	case Timeframe1W:
		return t.Format("Mon")
	case Timeframe1M, Timeframe3M:
		return t.Format("Jan 2")
	case Timeframe1Y:
		return t.Format("Jan")
	default:
		return t.Format("1/2/2006")
	}
}
