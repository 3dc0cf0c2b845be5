package charts

import (
	"sort"
	"sync"

	"github.com/aristath/minty/internal/events"
	"github.com/google/uuid"
)

// StreamSurface mirrors chart state in memory and publishes every chart
// lifecycle step on the event bus, scoped to the owning view
type StreamSurface struct {
	mu     sync.Mutex
	viewID string
	bus    *events.Bus
	charts map[string]*streamChart
}

// NewStreamSurface creates a surface publishing under viewID
func NewStreamSurface(viewID string, bus *events.Bus) *StreamSurface {
	return &StreamSurface{
		viewID: viewID,
		bus:    bus,
		charts: make(map[string]*streamChart),
	}
}

// NewChart implements Surface
func (s *StreamSurface) NewChart(slot string, cfg Config) Chart {
	c := &streamChart{
		surface:  s,
		id:       uuid.New().String(),
		slot:     slot,
		kind:     cfg.Kind,
		labels:   copyLabels(cfg.Labels),
		datasets: make([]Dataset, len(cfg.Datasets)),
		options:  cfg.Options,
	}
	for i, ds := range cfg.Datasets {
		c.datasets[i] = Dataset{Label: ds.Label, Values: copyValues(ds.Values), Style: ds.Style}
	}

	s.mu.Lock()
	s.charts[c.id] = c
	s.mu.Unlock()

	s.bus.Publish(s.viewID, c.payload(events.ChartCreated))
	return c
}

// Snapshot returns a created-event payload for every live chart, ordered by slot.
// New stream subscribers replay it before receiving live events.
func (s *StreamSurface) Snapshot() []*events.ChartData {
	s.mu.Lock()
	charts := make([]*streamChart, 0, len(s.charts))
	for _, c := range s.charts {
		charts = append(charts, c)
	}
	s.mu.Unlock()

	sort.Slice(charts, func(i, j int) bool { return charts[i].slot < charts[j].slot })

	out := make([]*events.ChartData, len(charts))
	for i, c := range charts {
		out[i] = c.payload(events.ChartCreated)
	}
	return out
}

// Len returns the number of live charts
func (s *StreamSurface) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.charts)
}

type streamChart struct {
	mu        sync.Mutex
	surface   *StreamSurface
	id        string
	slot      string
	kind      Kind
	labels    []string
	datasets  []Dataset
	options   map[string]interface{}
	destroyed bool
}

func (c *streamChart) ID() string { return c.id }

func (c *streamChart) SetLabels(labels []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.labels = copyLabels(labels)
}

func (c *streamChart) SetData(i int, values []float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.datasets) {
		return
	}
	c.datasets[i].Values = copyValues(values)
}

func (c *streamChart) DatasetCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.datasets)
}

func (c *streamChart) Update() {
	c.mu.Lock()
	destroyed := c.destroyed
	c.mu.Unlock()
	if destroyed {
		return
	}
	c.surface.bus.Publish(c.surface.viewID, c.payload(events.ChartUpdated))
}

func (c *streamChart) Destroy() {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return
	}
	c.destroyed = true
	c.mu.Unlock()

	c.surface.mu.Lock()
	delete(c.surface.charts, c.id)
	c.surface.mu.Unlock()

	data := events.NewChartData(events.ChartDestroyed)
	data.ViewID = c.surface.viewID
	data.Slot = c.slot
	data.ChartID = c.id
	c.surface.bus.Publish(c.surface.viewID, data)
}

func (c *streamChart) payload(eventType events.EventType) *events.ChartData {
	c.mu.Lock()
	defer c.mu.Unlock()

	data := events.NewChartData(eventType)
	data.ViewID = c.surface.viewID
	data.Slot = c.slot
	data.ChartID = c.id
	data.Kind = string(c.kind)
	data.Labels = copyLabels(c.labels)
	data.Options = c.options
	data.Datasets = make([]events.DatasetPayload, len(c.datasets))
	for i, ds := range c.datasets {
		data.Datasets[i] = events.DatasetPayload{Label: ds.Label, Data: copyValues(ds.Values), Style: ds.Style}
	}
	return data
}
