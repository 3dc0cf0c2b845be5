package views

import (
	"strconv"
	"strings"
	"time"

	"github.com/aristath/minty/internal/domain"
	"github.com/aristath/minty/internal/modules/formatting"
	"github.com/aristath/minty/internal/modules/valuation"
)

// RecentActivityLimit is how many orders the activity feed shows
const RecentActivityLimit = 10

const (
	msgNoHoldings          = "No holdings yet"
	msgStartTrading        = "Start trading to see your portfolio here"
	msgHoldingsUnavailable = "Holdings unavailable"
	msgNoActivity          = "No recent activity"
	msgActivityUnavailable = "Activity unavailable"
	msgNoAllocation        = "No holdings to display"
)

// allocationColors is the doughnut palette, assigned in position order
var allocationColors = []string{"#76b900", "#4caf50", "#2196f3", "#ff9800", "#f44336", "#9c27b0", "#00bcd4", "#795548"}

// HeaderModel is the portfolio page title
type HeaderModel struct {
	Title         string `json:"title"`
	DocumentTitle string `json:"document_title"`
}

// Header renders the page title from the signed-in user
func Header(user domain.Result[domain.UserInfo]) HeaderModel {
	if u, ok := user.Get(); ok && strings.TrimSpace(u.Username) != "" {
		name := formatting.Capitalize(u.Username)
		return HeaderModel{
			Title:         name + "'s Portfolio",
			DocumentTitle: "Minty - " + name + "'s Portfolio",
		}
	}
	return HeaderModel{Title: "Portfolio", DocumentTitle: "Minty - Portfolio Dashboard"}
}

// SummaryModel is the portfolio summary card, mirrored in the chart header
type SummaryModel struct {
	TotalValue  string `json:"total_value"`
	Cash        string `json:"cash"`
	Invested    string `json:"invested"`
	PnL         string `json:"pnl"`
	PnLClass    string `json:"pnl_class"`
	PnLPct      string `json:"pnl_pct"`
	PnLPctClass string `json:"pnl_pct_class"`
}

// Summary renders totals. An unknown portfolio blanks every field; an unknown
// account blanks cash and total but keeps invested and P&L.
func Summary(account domain.Result[domain.AccountSnapshot], portfolio domain.Result[domain.Portfolio], live domain.LivePrices) SummaryModel {
	model := SummaryModel{
		TotalValue:  formatting.Placeholder,
		Cash:        formatting.Placeholder,
		Invested:    formatting.Placeholder,
		PnL:         formatting.Placeholder,
		PnLClass:    formatting.ClassNeutral,
		PnLPct:      formatting.Placeholder,
		PnLPctClass: formatting.ClassNeutral,
	}

	p, ok := portfolio.Get()
	if !ok {
		return model
	}

	invested, current := 0.0, 0.0
	for _, pos := range p.Positions {
		invested += pos.CostBasis()
		current += pos.MarketValue(live)
	}
	pnl := current - invested
	pnlPct := 0.0
	if invested > 0 {
		pnlPct = pnl / invested * 100
	}

	model.Invested = formatting.Currency(invested)
	model.PnL = formatting.Currency(pnl)
	model.PnLClass = formatting.ChangeClass(pnl)
	model.PnLPct = formatting.Percentage(pnlPct)
	model.PnLPctClass = formatting.ChangeClass(pnlPct)

	if acc, ok := account.Get(); ok {
		model.Cash = formatting.Currency(acc.Cash)
		model.TotalValue = formatting.Currency(current + acc.Cash)
	}
	return model
}

// EmptyState is the message shown in place of an empty list
type EmptyState struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
}

// HoldingItem is one row of the holdings list
type HoldingItem struct {
	Symbol         string `json:"symbol"`
	Name           string `json:"name"`
	Shares         string `json:"shares"`
	Return         string `json:"return"`
	ReturnClass    string `json:"return_class"`
	ReturnPct      string `json:"return_pct"`
	ReturnPctClass string `json:"return_pct_class"`
}

// HoldingsModel is the holdings list or its empty/unavailable state
type HoldingsModel struct {
	Items []HoldingItem `json:"items"`
	Empty *EmptyState   `json:"empty,omitempty"`
}

// Holdings renders one row per position
func Holdings(portfolio domain.Result[domain.Portfolio], live domain.LivePrices) HoldingsModel {
	p, ok := portfolio.Get()
	if !ok {
		return HoldingsModel{Items: []HoldingItem{}, Empty: &EmptyState{Title: msgHoldingsUnavailable}}
	}
	if len(p.Positions) == 0 {
		return HoldingsModel{Items: []HoldingItem{}, Empty: &EmptyState{Title: msgNoHoldings, Subtitle: msgStartTrading}}
	}

	items := make([]HoldingItem, len(p.Positions))
	for i, pos := range p.Positions {
		costBasis := pos.CostBasis()
		ret := pos.MarketValue(live) - costBasis
		retPct := 0.0
		if costBasis > 0 {
			retPct = ret / costBasis * 100
		}
		items[i] = HoldingItem{
			Symbol:         pos.Symbol,
			Name:           DisplayName(pos.Symbol),
			Shares:         formatting.Shares(pos.Quantity),
			Return:         formatting.Currency(ret),
			ReturnClass:    formatting.ChangeClass(ret),
			ReturnPct:      formatting.Percentage(retPct),
			ReturnPctClass: formatting.ChangeClass(retPct),
		}
	}
	return HoldingsModel{Items: items}
}

// ActivityItem is one order in the activity feed
type ActivityItem struct {
	Side   string `json:"side"`
	Icon   string `json:"icon"`
	Title  string `json:"title"`
	Price  string `json:"price"`
	Date   string `json:"date"`
	Status string `json:"status"`
}

// ActivityModel is the recent activity feed
type ActivityModel struct {
	Items []ActivityItem `json:"items"`
	Empty *EmptyState    `json:"empty,omitempty"`
}

// Activity renders the last RecentActivityLimit orders of the log, newest first
func Activity(orders domain.Result[[]domain.Order], loc *time.Location) ActivityModel {
	log, ok := orders.Get()
	if !ok {
		return ActivityModel{Items: []ActivityItem{}, Empty: &EmptyState{Title: msgActivityUnavailable}}
	}
	if len(log) == 0 {
		return ActivityModel{Items: []ActivityItem{}, Empty: &EmptyState{Title: msgNoActivity}}
	}
	if loc == nil {
		loc = time.Local
	}

	start := len(log) - RecentActivityLimit
	if start < 0 {
		start = 0
	}
	recent := log[start:]

	items := make([]ActivityItem, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		o := recent[i]
		icon := "arrow-down"
		if o.Side == domain.OrderSideBuy {
			icon = "arrow-up"
		}
		status := o.RawStatus
		if status == "" {
			status = string(o.Status)
		}
		items = append(items, ActivityItem{
			Side:   string(o.Side),
			Icon:   icon,
			Title:  strings.ToUpper(string(o.Side)) + " " + strconv.FormatFloat(o.Quantity, 'f', -1, 64) + " " + o.Symbol,
			Price:  "@ " + formatting.Currency(o.Price),
			Date:   o.Timestamp.In(loc).Format("1/2/2006"),
			Status: status,
		})
	}
	return ActivityModel{Items: items}
}

// AllocationModel is the allocation doughnut data
type AllocationModel struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	Colors []string  `json:"colors"`
	Total  float64   `json:"total"`
	Empty  string    `json:"empty,omitempty"`
}

// Allocation values each position and labels it by company name.
// It reports false when the portfolio is unknown and the chart must stay untouched.
func Allocation(portfolio domain.Result[domain.Portfolio], live domain.LivePrices) (AllocationModel, bool) {
	p, ok := portfolio.Get()
	if !ok {
		return AllocationModel{}, false
	}
	if len(p.Positions) == 0 {
		return AllocationModel{Labels: []string{}, Values: []float64{}, Colors: []string{}, Empty: msgNoAllocation}, true
	}

	model := AllocationModel{
		Labels: make([]string, len(p.Positions)),
		Values: make([]float64, len(p.Positions)),
		Colors: make([]string, len(p.Positions)),
	}
	for i, pos := range p.Positions {
		value := pos.MarketValue(live)
		model.Labels[i] = DisplayName(pos.Symbol)
		model.Values[i] = value
		model.Colors[i] = allocationColors[i%len(allocationColors)]
		model.Total += value
	}
	return model, true
}

// ChartHeaderModel is the value chart's header: latest value plus range stats
type ChartHeaderModel struct {
	TotalValue  string `json:"total_value"`
	PnL         string `json:"pnl"`
	PnLClass    string `json:"pnl_class"`
	PnLPct      string `json:"pnl_pct"`
	PnLPctClass string `json:"pnl_pct_class"`
	High        string `json:"high"`
	Low         string `json:"low"`
	Change      string `json:"change"`
	ChangeClass string `json:"change_class"`
	ChangePct   string `json:"change_pct"`
	Source      string `json:"source"`
}

// WithSummary returns the header with its value and P&L taken from summary.
// Range statistics are kept.
func (m ChartHeaderModel) WithSummary(summary SummaryModel) ChartHeaderModel {
	m.TotalValue = summary.TotalValue
	m.PnL = summary.PnL
	m.PnLClass = summary.PnLClass
	m.PnLPct = summary.PnLPct
	m.PnLPctClass = summary.PnLPctClass
	return m
}

// ChartHeader mirrors the summary and adds the plotted series' range statistics
func ChartHeader(summary SummaryModel, series valuation.Series) ChartHeaderModel {
	model := ChartHeaderModel{
		TotalValue:  summary.TotalValue,
		PnL:         summary.PnL,
		PnLClass:    summary.PnLClass,
		PnLPct:      summary.PnLPct,
		PnLPctClass: summary.PnLPctClass,
		High:        formatting.Placeholder,
		Low:         formatting.Placeholder,
		Change:      formatting.Placeholder,
		ChangeClass: formatting.ClassNeutral,
		ChangePct:   formatting.Placeholder,
		Source:      string(series.Source),
	}

	if len(series.Values) == 0 {
		return model
	}
	stats := valuation.Summarize(series.Values)
	model.High = formatting.Currency(stats.High)
	model.Low = formatting.Currency(stats.Low)
	model.Change = formatting.Currency(stats.Change)
	model.ChangeClass = formatting.ChangeClass(stats.Change)
	model.ChangePct = formatting.Percentage(stats.ChangePct)
	return model
}
