package pages

import (
	"testing"
	"time"

	"github.com/aristath/minty/internal/domain"
	"github.com/aristath/minty/internal/events"
	"github.com/aristath/minty/internal/modules/charts"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineChart(labels []string, values []float64) charts.Config {
	return charts.Config{
		Kind:     charts.KindLine,
		Labels:   labels,
		Datasets: []charts.Dataset{{Label: "value", Values: values}},
	}
}

func drain(ch <-chan events.Event) []events.Event {
	var out []events.Event
	for {
		select {
		case ev := <-ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestBase_ApplyStoresAndPublishes(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	b := NewBase("view-1", PageStock, domain.Timeframe1Y, bus, zerolog.Nop())
	ch, cancel := bus.Subscribe("view-1", 8)
	defer cancel()

	seq := b.Begin()
	require.True(t, b.Set("news", seq, []string{"headline"}))

	model, ok := b.Section("news")
	require.True(t, ok)
	assert.Equal(t, []string{"headline"}, model)

	published := drain(ch)
	require.Len(t, published, 1)
	assert.Equal(t, events.ViewRendered, published[0].Type)
	data := published[0].Data.(*events.ViewRenderedData)
	assert.Equal(t, "news", data.Section)
	assert.Equal(t, seq, data.Sequence)
}

func TestBase_OutOfOrderCompletionKeepsNewerData(t *testing.T) {
	b := NewBase("view-1", PagePortfolio, domain.Timeframe1M, events.NewBus(zerolog.Nop()), zerolog.Nop())

	slow := b.Begin()
	fast := b.Begin()

	require.True(t, b.Set("summary", fast, "fresh"))
	ran := false
	assert.False(t, b.Apply("summary", slow, func() interface{} {
		ran = true
		return "stale"
	}))
	assert.False(t, ran)

	model, _ := b.Section("summary")
	assert.Equal(t, "fresh", model)
}

func TestBase_NilModelIsNotStored(t *testing.T) {
	b := NewBase("view-1", PageStock, domain.Timeframe1Y, events.NewBus(zerolog.Nop()), zerolog.Nop())

	assert.True(t, b.Apply("charts", b.Begin(), func() interface{} { return nil }))
	_, ok := b.Section("charts")
	assert.False(t, ok)
}

func TestBase_UpdateRerendersFromPrevious(t *testing.T) {
	b := NewBase("view-1", PagePortfolio, domain.Timeframe1M, events.NewBus(zerolog.Nop()), zerolog.Nop())

	assert.False(t, b.Update("header", b.Begin(), func(prev interface{}) interface{} { return "never" }))
	_, ok := b.Section("header")
	assert.False(t, ok)

	first := b.Begin()
	require.True(t, b.Set("header", b.Begin(), "v1"))
	require.True(t, b.Update("header", b.Begin(), func(prev interface{}) interface{} {
		return prev.(string) + "+prices"
	}))
	model, _ := b.Section("header")
	assert.Equal(t, "v1+prices", model)

	// An older refresh finishing late cannot overwrite the update
	assert.False(t, b.Set("header", first, "stale"))
	model, _ = b.Section("header")
	assert.Equal(t, "v1+prices", model)
}

func TestBase_CloseDestroysChartsAndStopsApplies(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	b := NewBase("view-1", PageStock, domain.Timeframe1Y, bus, zerolog.Nop())

	b.Reconciler().Reconcile("price", lineChart([]string{"a", "b"}, []float64{1, 2}), false)
	require.Equal(t, 1, b.Surface().Len())

	b.Close()
	b.Close()
	assert.True(t, b.Closed())
	assert.Equal(t, 0, b.Surface().Len())
	assert.False(t, b.Set("news", b.Begin(), "late"))
}

func TestBase_TimeframeAndSnapshot(t *testing.T) {
	b := NewBase("view-1", PageStock, domain.Timeframe1Y, events.NewBus(zerolog.Nop()), zerolog.Nop())

	assert.False(t, b.SwapTimeframe(domain.Timeframe1Y))
	assert.True(t, b.SwapTimeframe(domain.Timeframe1W))
	assert.Equal(t, domain.Timeframe1W, b.Timeframe())

	b.Set("about", b.Begin(), "NVIDIA")
	b.Reconciler().Reconcile("price", lineChart([]string{"a"}, []float64{1}), false)

	snap := b.Snapshot()
	assert.Equal(t, "view-1", snap.ID)
	assert.Equal(t, PageStock, snap.Page)
	assert.Equal(t, domain.Timeframe1W, snap.Timeframe)
	assert.Equal(t, "NVIDIA", snap.Sections["about"])
	require.Len(t, snap.Charts, 1)
	assert.Equal(t, "price", snap.Charts[0].Slot)
}

func TestBase_ReportError(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	b := NewBase("view-1", PageStock, domain.Timeframe1Y, bus, zerolog.Nop())
	ch, cancel := bus.Subscribe("view-1", 8)
	defer cancel()

	b.ReportError(nil)
	b.ReportError(assert.AnError)

	select {
	case ev := <-ch:
		assert.Equal(t, events.ErrorOccurred, ev.Type)
		assert.Equal(t, assert.AnError.Error(), ev.Data.(*events.ErrorEventData).Message)
	case <-time.After(time.Second):
		t.Fatal("no error event")
	}
}
