package charts

import "fmt"

type fakeChart struct {
	id        string
	labels    []string
	data      [][]float64
	draws     int
	destroyed bool
}

func (c *fakeChart) ID() string               { return c.id }
func (c *fakeChart) SetLabels(labels []string) { c.labels = copyLabels(labels) }
func (c *fakeChart) DatasetCount() int         { return len(c.data) }
func (c *fakeChart) Update()                   { c.draws++ }
func (c *fakeChart) Destroy()                  { c.destroyed = true }

func (c *fakeChart) SetData(i int, values []float64) {
	if i < 0 || i >= len(c.data) {
		return
	}
	c.data[i] = copyValues(values)
}

// fakeSurface records every chart it creates
type fakeSurface struct {
	created []*fakeChart
}

func (s *fakeSurface) NewChart(slot string, cfg Config) Chart {
	c := &fakeChart{
		id:     fmt.Sprintf("%s-%d", slot, len(s.created)+1),
		labels: copyLabels(cfg.Labels),
		data:   make([][]float64, len(cfg.Datasets)),
	}
	for i, ds := range cfg.Datasets {
		c.data[i] = copyValues(ds.Values)
	}
	s.created = append(s.created, c)
	return c
}

// mutations counts creations plus in-place redraws
func (s *fakeSurface) mutations() int {
	n := len(s.created)
	for _, c := range s.created {
		n += c.draws
	}
	return n
}

func lineConfig(labels []string, values ...[]float64) Config {
	cfg := Config{Kind: KindLine, Labels: labels}
	for i, v := range values {
		cfg.Datasets = append(cfg.Datasets, Dataset{Label: fmt.Sprintf("ds%d", i), Values: v})
	}
	return cfg
}
