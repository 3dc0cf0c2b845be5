package views

import (
	"github.com/aristath/minty/internal/domain"
	"github.com/aristath/minty/internal/modules/charts"
	"github.com/aristath/minty/internal/modules/valuation"
)

// Chart slots of the two pages
const (
	SlotPrice      = "price"
	SlotRSI        = "rsi"
	SlotMACD       = "macd"
	SlotPortfolio  = "total_investments"
	SlotAllocation = "allocation"
)

type style = map[string]interface{}

func lineStyle(color, fill string, width int, filled bool) style {
	return style{
		"borderColor":     color,
		"backgroundColor": fill,
		"borderWidth":     width,
		"fill":            filled,
		"tension":         0.3,
		"pointRadius":     0,
	}
}

// PriceChart is the stock page's close price line
func PriceChart(data domain.HistoricalData) charts.Config {
	return charts.Config{
		Kind:   charts.KindLine,
		Labels: data.Dates,
		Datasets: []charts.Dataset{{
			Label:  "",
			Values: data.Prices,
			Style:  lineStyle("#cce3de", "rgba(204, 227, 222, 0.08)", 2, true),
		}},
		Options: style{"legend": false, "xAxis": false, "yTitle": "Price", "yPrefix": "$"},
	}
}

// RSIChart is the stock page's RSI line
func RSIChart(data domain.HistoricalData) charts.Config {
	return charts.Config{
		Kind:   charts.KindLine,
		Labels: data.Dates,
		Datasets: []charts.Dataset{{
			Label:  "RSI",
			Values: data.RSI,
			Style:  lineStyle("#10b981", "rgba(16, 185, 129, 0.08)", 2, true),
		}},
		Options: style{"xAxis": false, "yTitle": "RSI"},
	}
}

// MACDChart is the stock page's MACD and signal lines
func MACDChart(data domain.HistoricalData) charts.Config {
	return charts.Config{
		Kind:   charts.KindLine,
		Labels: data.Dates,
		Datasets: []charts.Dataset{
			{Label: "MACD", Values: data.MACD, Style: lineStyle("#ffd700", "rgba(255,215,0,0.08)", 1, false)},
			{Label: "Signal", Values: data.MACDSignal, Style: lineStyle("#76b900", "rgba(118,185,0,0.08)", 1, false)},
		},
		Options: style{"xAxis": false},
	}
}

// PortfolioChart is the portfolio value line
func PortfolioChart(series valuation.Series) charts.Config {
	s := lineStyle("#76b900", "rgba(118,185,0,0.05)", 2, true)
	s["tension"] = 0.2
	return charts.Config{
		Kind:     charts.KindLine,
		Labels:   series.Labels,
		Datasets: []charts.Dataset{{Label: "Portfolio Value", Values: series.Values, Style: s}},
		Options:  style{"legend": false, "yPrefix": "$", "tooltip": "Portfolio Value"},
	}
}

// AllocationChart is the allocation doughnut
func AllocationChart(model AllocationModel) charts.Config {
	return charts.Config{
		Kind:   charts.KindDoughnut,
		Labels: model.Labels,
		Datasets: []charts.Dataset{{
			Values: model.Values,
			Style:  style{"backgroundColor": model.Colors, "borderWidth": 0},
		}},
		Options: style{"legend": "bottom", "total": model.Total},
	}
}
