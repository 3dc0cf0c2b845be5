package charts

import (
	"sync"

	"github.com/rs/zerolog"
)

type slotState struct {
	labels []string
	chart  Chart
}

// Reconciler holds the chart state of one view: per slot, the last rendered
// labels and the live handle. It is created on mount and closed on unmount.
type Reconciler struct {
	mu      sync.Mutex
	surface Surface
	slots   map[string]*slotState
	log     zerolog.Logger
}

// NewReconciler creates a reconciler drawing on surface
func NewReconciler(surface Surface, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		surface: surface,
		slots:   make(map[string]*slotState),
		log:     log.With().Str("component", "chart_reconciler").Logger(),
	}
}

// Reconcile brings the chart in slot up to date with cfg.
//
// With force set, an existing chart is destroyed first. A chart is created when
// the slot has none or the label count changed; otherwise labels and dataset
// values are replaced in place and the chart is redrawn, keeping its identity.
// Datasets beyond the live chart's count are ignored.
func (r *Reconciler) Reconcile(slot string, cfg Config, force bool) Chart {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := r.slots[slot]
	if force && state != nil && state.chart != nil {
		state.chart.Destroy()
		state.chart = nil
	}

	if state == nil || state.chart == nil || len(state.labels) != len(cfg.Labels) {
		if state != nil && state.chart != nil {
			state.chart.Destroy()
		}
		chart := r.surface.NewChart(slot, cfg)
		r.slots[slot] = &slotState{labels: copyLabels(cfg.Labels), chart: chart}

		r.log.Debug().
			Str("slot", slot).
			Str("chart_id", chart.ID()).
			Int("points", len(cfg.Labels)).
			Msg("Created chart")
		return chart
	}

	chart := state.chart
	chart.SetLabels(cfg.Labels)
	for i, ds := range cfg.Datasets {
		if i >= chart.DatasetCount() {
			break
		}
		chart.SetData(i, ds.Values)
	}
	chart.Update()
	state.labels = copyLabels(cfg.Labels)
	return chart
}

// Chart returns the live chart in slot, or nil
func (r *Reconciler) Chart(slot string) Chart {
	r.mu.Lock()
	defer r.mu.Unlock()

	if state := r.slots[slot]; state != nil {
		return state.chart
	}
	return nil
}

// Clear destroys the chart in slot and forgets its labels
func (r *Reconciler) Clear(slot string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if state := r.slots[slot]; state != nil && state.chart != nil {
		state.chart.Destroy()
	}
	delete(r.slots, slot)
}

// Close destroys every chart held by the reconciler
func (r *Reconciler) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for slot, state := range r.slots {
		if state.chart != nil {
			state.chart.Destroy()
		}
		delete(r.slots, slot)
	}
}
