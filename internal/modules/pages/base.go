// Package pages owns mounted dashboard views: their lifecycle, refresh
// timers and the ordering of concurrent refresh results.
package pages

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aristath/minty/internal/domain"
	"github.com/aristath/minty/internal/events"
	"github.com/aristath/minty/internal/modules/charts"
	"github.com/rs/zerolog"
)

// Page names
const (
	PageStock     = "stock"
	PagePortfolio = "portfolio"
)

// Timer is a periodic refresh a view wants while it is mounted
type Timer struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// View is a mounted page
type View interface {
	ID() string
	Page() string
	// Refresh re-fetches everything the page shows; force recreates charts
	Refresh(ctx context.Context, force bool) error
	SetTimeframe(ctx context.Context, tf domain.Timeframe) error
	Snapshot() Snapshot
	Timers() []Timer
	Surface() *charts.StreamSurface
	Close()
}

// Snapshot is the rendered state of a view
type Snapshot struct {
	ID        string                 `json:"id"`
	Page      string                 `json:"page"`
	Timeframe domain.Timeframe       `json:"timeframe"`
	Sections  map[string]interface{} `json:"sections"`
	Charts    []*events.ChartData    `json:"charts"`
}

// Base carries the state every view shares: identity, chart surface, the
// sequencer and the last rendered model of each section.
// Apply is the only way sections change; it runs under the view lock.
type Base struct {
	id     string
	page   string
	bus    *events.Bus
	log    zerolog.Logger
	seq    *Sequencer
	stream *charts.StreamSurface
	rec    *charts.Reconciler

	mu       sync.Mutex
	tf       domain.Timeframe
	sections map[string]interface{}
	closed   bool
}

// NewBase creates the shared state of a view
func NewBase(id, page string, tf domain.Timeframe, bus *events.Bus, log zerolog.Logger) *Base {
	l := log.With().Str("view", id).Str("page", page).Logger()
	stream := charts.NewStreamSurface(id, bus)
	return &Base{
		id:       id,
		page:     page,
		bus:      bus,
		log:      l,
		seq:      NewSequencer(),
		stream:   stream,
		rec:      charts.NewReconciler(stream, l),
		tf:       tf,
		sections: make(map[string]interface{}),
	}
}

// ID returns the view id
func (b *Base) ID() string { return b.id }

// Page returns the page name
func (b *Base) Page() string { return b.page }

// Log returns the view's logger
func (b *Base) Log() zerolog.Logger { return b.log }

// Surface returns the chart surface streamed to browsers
func (b *Base) Surface() *charts.StreamSurface { return b.stream }

// Reconciler returns the view's chart reconciler
func (b *Base) Reconciler() *charts.Reconciler { return b.rec }

// Begin starts a refresh and returns its sequence number
func (b *Base) Begin() uint64 { return b.seq.Next() }

// Timeframe returns the selected timeframe
func (b *Base) Timeframe() domain.Timeframe {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tf
}

// SwapTimeframe selects tf and reports whether it changed
func (b *Base) SwapTimeframe(tf domain.Timeframe) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if tf == b.tf {
		return false
	}
	b.tf = tf
	return true
}

// Apply runs render for section under the view lock when seq is still current
// for it. A non-nil model is stored and published. Apply reports whether
// render ran; it never runs after Close.
func (b *Base) Apply(section string, seq uint64, render func() interface{}) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return false
	}
	return b.applyLocked(section, seq, render)
}

// Update re-renders an already rendered section from its previous model.
// A section that was never rendered is left alone and its sequence untouched.
func (b *Base) Update(section string, seq uint64, render func(prev interface{}) interface{}) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return false
	}
	prev, ok := b.sections[section]
	if !ok {
		return false
	}
	return b.applyLocked(section, seq, func() interface{} { return render(prev) })
}

func (b *Base) applyLocked(section string, seq uint64, render func() interface{}) bool {
	if !b.seq.TryApply(section, seq) {
		b.log.Debug().
			Str("section", section).
			Uint64("sequence", seq).
			Uint64("applied", b.seq.Last(section)).
			Msg("Discarding stale refresh result")
		return false
	}

	model := render()
	if model == nil {
		return true
	}
	b.sections[section] = model
	b.bus.Publish(b.id, &events.ViewRenderedData{
		ViewID:   b.id,
		Page:     b.page,
		Section:  section,
		Sequence: seq,
		Model:    model,
	})
	return true
}

// Set stores model for section when seq is still current for it
func (b *Base) Set(section string, seq uint64, model interface{}) bool {
	return b.Apply(section, seq, func() interface{} { return model })
}

// Section returns the last model applied to section
func (b *Base) Section(section string) (interface{}, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	model, ok := b.sections[section]
	return model, ok
}

// Snapshot returns the rendered sections and live charts
func (b *Base) Snapshot() Snapshot {
	b.mu.Lock()
	sections := make(map[string]interface{}, len(b.sections))
	for k, v := range b.sections {
		sections[k] = v
	}
	tf := b.tf
	b.mu.Unlock()

	return Snapshot{
		ID:        b.id,
		Page:      b.page,
		Timeframe: tf,
		Sections:  sections,
		Charts:    b.stream.Snapshot(),
	}
}

// Close destroys every chart and stops later results from applying
func (b *Base) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.rec.Close()
}

// Closed reports whether the view was closed
func (b *Base) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// ReportError publishes a refresh error to the view's stream
func (b *Base) ReportError(err error) {
	if err == nil {
		return
	}
	b.bus.Publish(b.id, &events.ErrorEventData{ViewID: b.id, Message: err.Error()})
}

// ErrInvalidTimeframe is returned when a page does not support the requested timeframe
var ErrInvalidTimeframe = errors.New("unsupported timeframe")
