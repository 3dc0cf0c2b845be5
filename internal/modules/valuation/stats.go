package valuation

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes a value series for the chart header
type Stats struct {
	First     float64 `json:"first"`
	Last      float64 `json:"last"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Mean      float64 `json:"mean"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"change_pct"`
}

// Summarize computes header statistics. An empty series yields zero stats.
func Summarize(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}

	first := values[0]
	last := values[len(values)-1]
	s := Stats{
		First:  first,
		Last:   last,
		High:   floats.Max(values),
		Low:    floats.Min(values),
		Mean:   stat.Mean(values, nil),
		Change: last - first,
	}
	if first != 0 {
		s.ChangePct = s.Change / first * 100
	}
	return s
}
