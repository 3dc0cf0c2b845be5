package backend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/minty/internal/domain"
)

// Each parse function validates one endpoint's body and fails closed:
// a wrong type, a missing required field or an impossible value rejects
// the whole body instead of letting undefined values reach arithmetic.

// object is a decoded JSON object whose fields are decoded lazily
type object map[string]json.RawMessage

func decodeObject(body []byte) (object, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil, errors.New("expected a JSON object")
	}
	var obj object
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return obj, nil
}

func decodeArray(raw json.RawMessage, field string) ([]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("%s: expected an array", field)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return items, nil
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || string(raw) == "null"
}

// toNumber accepts a JSON number or a numeric string
func toNumber(raw json.RawMessage, field string) (float64, error) {
	raw = bytes.TrimSpace(raw)
	var v float64
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("%s: %w", field, err)
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("%s: not a number: %q", field, s)
		}
		v = parsed
	} else if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("%s: not a number", field)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s: not a finite number", field)
	}
	return v, nil
}

func (o object) optionalNumber(field string) (*float64, error) {
	raw, ok := o[field]
	if !ok || isNull(raw) {
		return nil, nil
	}
	v, err := toNumber(raw, field)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (o object) number(field string) (float64, error) {
	raw, ok := o[field]
	if !ok || isNull(raw) {
		return 0, fmt.Errorf("%s: missing", field)
	}
	return toNumber(raw, field)
}

func (o object) nonNegative(field string) (float64, error) {
	v, err := o.number(field)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("%s: negative value %v", field, v)
	}
	return v, nil
}

// text accepts a string, or a number rendered as text; missing gives ""
func (o object) text(field string) (string, error) {
	raw, ok := o[field]
	if !ok || isNull(raw) {
		return "", nil
	}
	raw = bytes.TrimSpace(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("%s: %w", field, err)
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("%s: expected text", field)
	}
	return n.String(), nil
}

func (o object) requiredText(field string) (string, error) {
	s, err := o.text(field)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%s: missing", field)
	}
	return s, nil
}

func (o object) numberSeries(field string, required bool) ([]float64, error) {
	raw, ok := o[field]
	if !ok || isNull(raw) {
		if required {
			return nil, fmt.Errorf("%s: missing", field)
		}
		return nil, nil
	}
	items, err := decodeArray(raw, field)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(items))
	for i, item := range items {
		v, err := toNumber(item, fmt.Sprintf("%s[%d]", field, i))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (o object) textSeries(field string, required bool) ([]string, error) {
	raw, ok := o[field]
	if !ok || isNull(raw) {
		if required {
			return nil, fmt.Errorf("%s: missing", field)
		}
		return nil, nil
	}
	items, err := decodeArray(raw, field)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(items))
	for i, item := range items {
		if err := json.Unmarshal(item, &out[i]); err != nil {
			return nil, fmt.Errorf("%s[%d]: expected a string", field, i)
		}
	}
	return out, nil
}

// backendError rejects bodies that report an error with a success status
func (o object) backendError() error {
	msg, err := o.text("error")
	if err != nil || msg == "" {
		return nil
	}
	return fmt.Errorf("backend error: %s", msg)
}

func parseLiveData(body []byte) (domain.LiveData, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return domain.LiveData{}, err
	}
	if err := obj.backendError(); err != nil {
		return domain.LiveData{}, err
	}

	var data domain.LiveData
	fields := []struct {
		name string
		dst  **float64
	}{
		{"price", &data.Price},
		{"price_change", &data.PriceChange},
		{"price_change_pct", &data.PriceChangePct},
		{"open", &data.Open},
		{"dayHigh", &data.DayHigh},
		{"dayLow", &data.DayLow},
		{"volume", &data.Volume},
	}
	for _, f := range fields {
		v, err := obj.optionalNumber(f.name)
		if err != nil {
			return domain.LiveData{}, err
		}
		*f.dst = v
	}
	return data, nil
}

func parseHistoricalData(body []byte) (domain.HistoricalData, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return domain.HistoricalData{}, err
	}
	if err := obj.backendError(); err != nil {
		return domain.HistoricalData{}, err
	}

	var data domain.HistoricalData
	if data.Dates, err = obj.textSeries("dates", true); err != nil {
		return domain.HistoricalData{}, err
	}
	if data.Prices, err = obj.numberSeries("prices", true); err != nil {
		return domain.HistoricalData{}, err
	}
	if len(data.Dates) != len(data.Prices) {
		return domain.HistoricalData{}, fmt.Errorf("dates/prices length mismatch: %d != %d", len(data.Dates), len(data.Prices))
	}

	// Indicator series are optional; gaps are filled by the caller
	if data.RSI, err = obj.numberSeries("rsi", false); err != nil {
		return domain.HistoricalData{}, err
	}
	if data.MACD, err = obj.numberSeries("macd", false); err != nil {
		return domain.HistoricalData{}, err
	}
	if data.MACDSignal, err = obj.numberSeries("macd_signal", false); err != nil {
		return domain.HistoricalData{}, err
	}
	return data, nil
}

func parsePrediction(body []byte) (domain.Prediction, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return domain.Prediction{}, err
	}
	if err := obj.backendError(); err != nil {
		return domain.Prediction{}, err
	}

	var p domain.Prediction
	if p.PredictedPrice, err = obj.optionalNumber("predicted_price"); err != nil {
		return domain.Prediction{}, err
	}
	if p.News, err = obj.textSeries("news", false); err != nil {
		return domain.Prediction{}, err
	}
	return p, nil
}

// parseRecommendation keeps the backend's "Not enough data" answer, it carries an error field too
func parseRecommendation(body []byte) (domain.Recommendation, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return domain.Recommendation{}, err
	}

	var r domain.Recommendation
	if r.Recommendation, err = obj.text("recommendation"); err != nil {
		return domain.Recommendation{}, err
	}
	if r.Confidence, err = obj.text("confidence"); err != nil {
		return domain.Recommendation{}, err
	}
	return r, nil
}

func parseUser(body []byte) (domain.UserInfo, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return domain.UserInfo{}, err
	}
	username, err := obj.text("username")
	if err != nil {
		return domain.UserInfo{}, err
	}
	return domain.UserInfo{Username: username}, nil
}

func parseAccount(body []byte) (domain.AccountSnapshot, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return domain.AccountSnapshot{}, err
	}
	cash, err := obj.number("cash")
	if err != nil {
		return domain.AccountSnapshot{}, err
	}
	return domain.AccountSnapshot{Cash: cash}, nil
}

func parsePortfolio(body []byte) (domain.Portfolio, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return domain.Portfolio{}, err
	}
	raw, ok := obj["positions"]
	if !ok {
		return domain.Portfolio{}, errors.New("positions: missing")
	}
	if isNull(raw) {
		return domain.Portfolio{Positions: []domain.Position{}}, nil
	}
	items, err := decodeArray(raw, "positions")
	if err != nil {
		return domain.Portfolio{}, err
	}

	positions := make([]domain.Position, len(items))
	for i, item := range items {
		pos, err := parsePosition(item)
		if err != nil {
			return domain.Portfolio{}, fmt.Errorf("positions[%d]: %w", i, err)
		}
		positions[i] = pos
	}
	return domain.Portfolio{Positions: positions}, nil
}

func parsePosition(raw json.RawMessage) (domain.Position, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return domain.Position{}, err
	}

	var pos domain.Position
	if pos.Symbol, err = obj.requiredText("symbol"); err != nil {
		return domain.Position{}, err
	}
	pos.Symbol = normalizeSymbol(pos.Symbol)
	if pos.Quantity, err = obj.nonNegative("qty"); err != nil {
		return domain.Position{}, err
	}
	if pos.AvgEntryPrice, err = obj.nonNegative("avg_entry_price"); err != nil {
		return domain.Position{}, err
	}
	if pos.CurrentPrice, err = obj.optionalNumber("current_price"); err != nil {
		return domain.Position{}, err
	}
	return pos, nil
}

func (c *Client) parseOrders(body []byte) ([]domain.Order, error) {
	trimmed := bytes.TrimSpace(body)
	// Some backends wrap the log as {"orders": [...]}
	if len(trimmed) > 0 && trimmed[0] == '{' {
		obj, err := decodeObject(trimmed)
		if err != nil {
			return nil, err
		}
		raw, ok := obj["orders"]
		if !ok {
			return nil, errors.New("orders: missing")
		}
		trimmed = raw
	}

	items, err := decodeArray(trimmed, "orders")
	if err != nil {
		return nil, err
	}

	// A malformed order that may have executed invalidates the whole log since
	// replay would be wrong without it. Other malformed orders are dropped.
	orders := make([]domain.Order, 0, len(items))
	for i, item := range items {
		order, err := c.parseOrder(item)
		if err == nil {
			orders = append(orders, order)
			continue
		}
		if mayHaveExecuted(item) {
			return nil, fmt.Errorf("orders[%d]: %w", i, err)
		}
		c.log.Warn().Err(err).Int("index", i).Msg("Skipping malformed order that did not execute")
	}
	return orders, nil
}

// mayHaveExecuted reads only the status of a raw order. An unreadable status
// counts as executed.
func mayHaveExecuted(raw json.RawMessage) bool {
	obj, err := decodeObject(raw)
	if err != nil {
		return true
	}
	status, err := obj.text("status")
	if err != nil {
		return true
	}
	return domain.NormalizeOrderStatus(status) != domain.OrderStatusOther
}

func (c *Client) parseOrder(raw json.RawMessage) (domain.Order, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return domain.Order{}, err
	}

	var o domain.Order
	if o.Symbol, err = obj.requiredText("symbol"); err != nil {
		return domain.Order{}, err
	}
	o.Symbol = normalizeSymbol(o.Symbol)

	side, err := obj.requiredText("side")
	if err != nil {
		return domain.Order{}, err
	}
	switch domain.OrderSide(strings.ToLower(strings.TrimSpace(side))) {
	case domain.OrderSideBuy:
		o.Side = domain.OrderSideBuy
	case domain.OrderSideSell:
		o.Side = domain.OrderSideSell
	default:
		return domain.Order{}, fmt.Errorf("side: unknown value %q", side)
	}

	if o.Quantity, err = obj.number("qty"); err != nil {
		return domain.Order{}, err
	}
	if o.Quantity <= 0 {
		return domain.Order{}, fmt.Errorf("qty: must be positive, got %v", o.Quantity)
	}
	if o.Price, err = obj.nonNegative("price"); err != nil {
		return domain.Order{}, err
	}

	if o.RawStatus, err = obj.text("status"); err != nil {
		return domain.Order{}, err
	}
	o.Status = domain.NormalizeOrderStatus(o.RawStatus)

	ts, err := obj.requiredText("timestamp")
	if err != nil {
		return domain.Order{}, err
	}
	if o.Timestamp, err = parseTimestamp(ts, c.loc); err != nil {
		return domain.Order{}, fmt.Errorf("timestamp: %w", err)
	}
	return o, nil
}

func (c *Client) parseHistory(body []byte) ([]domain.HistoryPoint, error) {
	obj, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	raw, ok := obj["data"]
	if !ok || isNull(raw) {
		return []domain.HistoryPoint{}, nil
	}
	items, err := decodeArray(raw, "data")
	if err != nil {
		return nil, err
	}

	points := make([]domain.HistoryPoint, len(items))
	for i, item := range items {
		p, err := decodeObject(item)
		if err != nil {
			return nil, fmt.Errorf("data[%d]: %w", i, err)
		}
		date, err := p.requiredText("date")
		if err != nil {
			return nil, fmt.Errorf("data[%d]: %w", i, err)
		}
		if points[i].Date, err = parseTimestamp(date, c.loc); err != nil {
			return nil, fmt.Errorf("data[%d].date: %w", i, err)
		}
		if points[i].Value, err = p.number("value"); err != nil {
			return nil, fmt.Errorf("data[%d]: %w", i, err)
		}
	}
	return points, nil
}

// zonedLayouts carry their own offset; localLayouts are read in the client's location
var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999-0700",
		time.RFC1123Z,
		time.RFC1123,
	}
	localLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		"2006-01-02",
	}
)

func parseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
