// Package portfolio is the signed-in user's portfolio page: summary, holdings,
// recent activity, the value chart and the allocation chart.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/minty/internal/domain"
	"github.com/aristath/minty/internal/events"
	"github.com/aristath/minty/internal/modules/charts"
	"github.com/aristath/minty/internal/modules/pages"
	"github.com/aristath/minty/internal/modules/valuation"
	"github.com/aristath/minty/internal/modules/views"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultTimeframe is the value chart's initial timeframe
const DefaultTimeframe = domain.Timeframe1M

// Refresh intervals
const (
	DefaultFullInterval  = 2 * time.Minute
	DefaultPriceInterval = 30 * time.Second
)

// Sections of the portfolio page
const (
	SectionHeader      = "header"
	SectionSummary     = "summary"
	SectionHoldings    = "holdings"
	SectionActivity    = "activity"
	SectionChartHeader = "chart_header"
	SectionAllocation  = "allocation"
)

// ErrSessionExpired is returned when the backend rejects the session token
var ErrSessionExpired = fmt.Errorf("session expired: %w", domain.ErrNoSession)

// Config holds portfolio page configuration
type Config struct {
	FullInterval  time.Duration
	PriceInterval time.Duration
	// Location formats activity dates; nil means time.Local
	Location *time.Location
}

// View is a mounted portfolio page
type View struct {
	*pages.Base
	client  domain.AccountClient
	engine  *valuation.Engine
	summary *charts.SummaryChart
	cfg     Config
}

// NewView creates a portfolio page bound to token. An empty token fails with domain.ErrNoSession.
func NewView(id, token string, sessions domain.SessionClients, engine *valuation.Engine, bus *events.Bus, cfg Config, log zerolog.Logger) (*View, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrNoSession
	}
	if cfg.FullInterval <= 0 {
		cfg.FullInterval = DefaultFullInterval
	}
	if cfg.PriceInterval <= 0 {
		cfg.PriceInterval = DefaultPriceInterval
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	base := pages.NewBase(id, pages.PagePortfolio, DefaultTimeframe, bus, log)
	return &View{
		Base:    base,
		client:  sessions.ForToken(token),
		engine:  engine,
		summary: charts.NewSummaryChart(base.Reconciler(), views.SlotPortfolio),
		cfg:     cfg,
	}, nil
}

// Timers implements pages.View
func (v *View) Timers() []pages.Timer {
	return []pages.Timer{
		{
			Name:     "full",
			Interval: v.cfg.FullInterval,
			Run: func(ctx context.Context) error {
				return v.Refresh(ctx, false)
			},
		},
		{
			Name:     "prices",
			Interval: v.cfg.PriceInterval,
			Run:      v.RefreshPrices,
		},
	}
}

// SetTimeframe selects tf and, when it changed, forgets the last chart payload and refreshes
func (v *View) SetTimeframe(ctx context.Context, tf domain.Timeframe) error {
	if !tf.IsPortfolioTimeframe() {
		return fmt.Errorf("%w: %q", pages.ErrInvalidTimeframe, tf)
	}
	if !v.SwapTimeframe(tf) {
		return nil
	}
	v.summary.Reset()
	return v.Refresh(ctx, false)
}

// Refresh fetches user, account, portfolio and orders concurrently, then live
// prices, and renders every section. Sections whose data is unavailable render
// as unknown and the charts are left untouched.
func (v *View) Refresh(ctx context.Context, force bool) error {
	seq := v.Begin()
	tf := v.Timeframe()

	var (
		user      domain.Result[domain.UserInfo]
		account   domain.Result[domain.AccountSnapshot]
		portfolio domain.Result[domain.Portfolio]
		orders    domain.Result[[]domain.Order]
		history   domain.Result[[]domain.HistoryPoint]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { user = v.client.CurrentUser(gctx); return nil })
	g.Go(func() error { account = v.client.Account(gctx); return nil })
	g.Go(func() error { portfolio = v.client.Portfolio(gctx); return nil })
	g.Go(func() error { orders = v.client.Orders(gctx); return nil })
	g.Go(func() error { history = v.client.PortfolioHistory(gctx, tf); return nil })
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}
	if unauthenticated(user.Failure(), account.Failure(), portfolio.Failure(), orders.Failure()) {
		return ErrSessionExpired
	}

	var live domain.LivePrices
	if p, ok := portfolio.Get(); ok {
		live = v.client.LivePrices(ctx, p.Symbols())
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	summary := views.Summary(account, portfolio, live)
	v.Set(SectionHeader, seq, views.Header(user))
	v.Set(SectionSummary, seq, summary)
	v.Set(SectionHoldings, seq, views.Holdings(portfolio, live))
	v.Set(SectionActivity, seq, views.Activity(orders, v.cfg.Location))

	if p, ok := portfolio.Get(); ok {
		in := valuation.Inputs{
			Positions:  p.Positions,
			LivePrices: live,
			Account:    account,
			Orders:     orders.OrElse(nil),
			Timeframe:  tf,
		}
		series := v.engine.Resolve(history, in)
		var renderErr error
		v.Apply(SectionChartHeader, seq, func() interface{} {
			if _, err := v.summary.Render(views.PortfolioChart(series), force); err != nil {
				renderErr = err
			}
			return views.ChartHeader(summary, series)
		})
		if renderErr != nil {
			v.ReportError(renderErr)
			return fmt.Errorf("failed to render value chart: %w", renderErr)
		}
	}

	if model, ok := views.Allocation(portfolio, live); ok {
		v.Apply(SectionAllocation, seq, func() interface{} {
			if len(model.Labels) == 0 {
				v.Reconciler().Clear(views.SlotAllocation)
			} else {
				v.Reconciler().Reconcile(views.SlotAllocation, views.AllocationChart(model), force)
			}
			return model
		})
	}
	return nil
}

// RefreshPrices re-fetches the portfolio, live prices and account and updates
// the summary and holdings. The chart header's value and P&L follow the
// summary; its range stats stay until the next full refresh. An unknown or
// empty portfolio changes nothing.
func (v *View) RefreshPrices(ctx context.Context) error {
	seq := v.Begin()

	portfolio := v.client.Portfolio(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}
	if unauthenticated(portfolio.Failure()) {
		return ErrSessionExpired
	}
	p, ok := portfolio.Get()
	if !ok || len(p.Positions) == 0 {
		return nil
	}

	live := v.client.LivePrices(ctx, p.Symbols())
	account := v.client.Account(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}

	summary := views.Summary(account, portfolio, live)
	v.Set(SectionSummary, seq, summary)
	v.Update(SectionChartHeader, seq, func(prev interface{}) interface{} {
		header, ok := prev.(views.ChartHeaderModel)
		if !ok {
			return nil
		}
		return header.WithSummary(summary)
	})
	v.Set(SectionHoldings, seq, views.Holdings(portfolio, live))
	return nil
}

func unauthenticated(failures ...*domain.Failure) bool {
	for _, f := range failures {
		if f != nil && f.Kind == domain.FailureUnauthenticated {
			return true
		}
	}
	return false
}

// IsSessionError reports whether err means the user has to sign in again
func IsSessionError(err error) bool {
	return errors.Is(err, domain.ErrNoSession)
}
