package events

import (
	"encoding/json"
	"time"
)

// EventData is the interface that all event data types must implement
// This allows for type-safe event data while maintaining flexibility
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// DatasetPayload is one dataset of a chart as sent to the browser
type DatasetPayload struct {
	Label string                 `json:"label"`
	Data  []float64              `json:"data"`
	Style map[string]interface{} `json:"style,omitempty"`
}

// ChartData describes a chart lifecycle step on one view.
// Created and updated events carry the full label/data payload; destroyed events only identify the chart.
type ChartData struct {
	ViewID   string                 `json:"view_id"`
	Slot     string                 `json:"slot"`
	ChartID  string                 `json:"chart_id"`
	Kind     string                 `json:"kind,omitempty"`
	Labels   []string               `json:"labels,omitempty"`
	Datasets []DatasetPayload       `json:"datasets,omitempty"`
	Options  map[string]interface{} `json:"options,omitempty"`

	eventType EventType
}

// NewChartData builds chart event data of the given lifecycle type
func NewChartData(eventType EventType) *ChartData {
	return &ChartData{eventType: eventType}
}

// EventType returns the event type for ChartData
func (d *ChartData) EventType() EventType {
	if d.eventType == "" {
		return ChartUpdated
	}
	return d.eventType
}

// ViewRenderedData carries a freshly rendered view section
type ViewRenderedData struct {
	ViewID   string      `json:"view_id"`
	Page     string      `json:"page"`
	Section  string      `json:"section"`
	Sequence uint64      `json:"sequence"`
	Model    interface{} `json:"model"`
}

// EventType returns the event type for ViewRenderedData
func (d *ViewRenderedData) EventType() EventType {
	return ViewRendered
}

// ViewLifecycleData marks a view being mounted or unmounted
// An unmount carries the reason and, when the user must sign in again, the
// page to redirect to.
type ViewLifecycleData struct {
	ViewID   string `json:"view_id"`
	Page     string `json:"page"`
	Reason   string `json:"reason,omitempty"`
	Redirect string `json:"redirect,omitempty"`

	eventType EventType
}

// NewViewLifecycleData builds lifecycle data of the given type
func NewViewLifecycleData(eventType EventType, viewID, page string) *ViewLifecycleData {
	return &ViewLifecycleData{ViewID: viewID, Page: page, eventType: eventType}
}

// EventType returns the event type for ViewLifecycleData
func (d *ViewLifecycleData) EventType() EventType {
	if d.eventType == "" {
		return ViewMounted
	}
	return d.eventType
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	ViewID  string `json:"view_id,omitempty"`
	Message string `json:"message"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}

// Event is one published event with typed data
type Event struct {
	Type      EventType `json:"type"`
	Scope     string    `json:"scope"`
	Timestamp time.Time `json:"timestamp"`
	Data      EventData `json:"data"`
}

// MarshalJSON customizes JSON serialization for Event
func (e *Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	aux := &struct {
		Data json.RawMessage `json:"data"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}

	if e.Data != nil {
		dataBytes, err := json.Marshal(e.Data)
		if err != nil {
			return nil, err
		}
		aux.Data = dataBytes
	}

	return json.Marshal(aux)
}

// UnmarshalJSON customizes JSON deserialization for Event
func (e *Event) UnmarshalJSON(data []byte) error {
	type Alias Event
	aux := &struct {
		Data json.RawMessage `json:"data"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}

	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	if len(aux.Data) == 0 {
		return nil
	}

	var eventData EventData
	switch aux.Type {
	case ChartCreated, ChartUpdated, ChartDestroyed:
		eventData = NewChartData(aux.Type)
	case ViewRendered:
		eventData = &ViewRenderedData{}
	case ViewMounted, ViewUnmounted:
		eventData = &ViewLifecycleData{eventType: aux.Type}
	case ErrorOccurred:
		eventData = &ErrorEventData{}
	default:
		var rawData map[string]interface{}
		if err := json.Unmarshal(aux.Data, &rawData); err != nil {
			return err
		}
		e.Data = &GenericEventData{Type: aux.Type, Data: rawData}
		return nil
	}

	if err := json.Unmarshal(aux.Data, eventData); err != nil {
		return err
	}
	e.Data = eventData
	return nil
}

// GenericEventData is a fallback for events that don't have a specific type
type GenericEventData struct {
	Type EventType              `json:"-"`
	Data map[string]interface{} `json:"-"`
}

// EventType returns the event type for GenericEventData
func (d *GenericEventData) EventType() EventType {
	return d.Type
}

// MarshalJSON customizes JSON serialization for GenericEventData
func (d *GenericEventData) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Data)
}

// UnmarshalJSON customizes JSON deserialization for GenericEventData
func (d *GenericEventData) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &d.Data)
}
