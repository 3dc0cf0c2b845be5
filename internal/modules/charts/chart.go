// Package charts reconciles derived chart data against live chart objects.
//
// A Surface is the opaque drawing surface (in production, the browser's chart
// library reached through an event stream). The Reconciler decides per slot
// whether to mutate an existing chart in place or recreate it, and the
// SummaryChart skips reconciliation entirely when the payload is unchanged.
package charts

// Kind is the chart type understood by the drawing surface
type Kind string

const (
	KindLine     Kind = "line"
	KindBar      Kind = "bar"
	KindDoughnut Kind = "doughnut"
)

// Dataset is one positional value series of a chart
type Dataset struct {
	Label  string                 `msgpack:"label" json:"label"`
	Values []float64              `msgpack:"values" json:"data"`
	Style  map[string]interface{} `msgpack:"-" json:"style,omitempty"`
}

// Config is everything needed to create a chart
type Config struct {
	Kind     Kind
	Labels   []string
	Datasets []Dataset
	Options  map[string]interface{}
}

// Chart is a handle to a live chart object on a surface
type Chart interface {
	ID() string
	SetLabels(labels []string)
	// SetData replaces the values of dataset i; out of range indexes are ignored
	SetData(i int, values []float64)
	DatasetCount() int
	// Update redraws the chart after mutation
	Update()
	Destroy()
}

// Surface creates chart objects bound to a named slot
type Surface interface {
	NewChart(slot string, cfg Config) Chart
}

func copyLabels(labels []string) []string {
	out := make([]string, len(labels))
	copy(out, labels)
	return out
}

func copyValues(values []float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	return out
}
