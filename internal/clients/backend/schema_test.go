package backend

import (
	"testing"
	"time"

	"github.com/aristath/minty/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-06-01T10:00:00Z", time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)},
		{"2025-06-01T10:00:00+02:00", time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)},
		{"2025-06-01T10:00:00.5", time.Date(2025, 6, 1, 10, 0, 0, 500000000, ny)},
		{"2025-06-01 10:00:00", time.Date(2025, 6, 1, 10, 0, 0, 0, ny)},
		{"2025-06-01 10:00", time.Date(2025, 6, 1, 10, 0, 0, 0, ny)},
		{"2025-06-01", time.Date(2025, 6, 1, 0, 0, 0, 0, ny)},
	}
	for _, tt := range tests {
		got, err := parseTimestamp(tt.in, ny)
		require.NoError(t, err, tt.in)
		assert.True(t, tt.want.Equal(got), "%s: got %v want %v", tt.in, got, tt.want)
	}

	_, err = parseTimestamp("06/01/2025", ny)
	assert.Error(t, err)
}

func TestParseLiveData_AcceptsNumericStrings(t *testing.T) {
	data, err := parseLiveData([]byte(`{"price":"148.50","volume":1000}`))
	require.NoError(t, err)
	assert.Equal(t, 148.5, *data.Price)
}

func TestParseRecommendation_NumericConfidence(t *testing.T) {
	rec, err := parseRecommendation([]byte(`{"recommendation":"BUY","confidence":0.82}`))
	require.NoError(t, err)
	assert.Equal(t, "0.82", rec.Confidence)

	_, err = parseRecommendation([]byte(`{"recommendation":true}`))
	assert.Error(t, err)
}

func TestParsePrediction_NewsMustBeStrings(t *testing.T) {
	_, err := parsePrediction([]byte(`{"predicted_price":1,"news":[1,2]}`))
	assert.Error(t, err)

	p, err := parsePrediction([]byte(`{"predicted_price":null}`))
	require.NoError(t, err)
	assert.Nil(t, p.PredictedPrice)
	assert.Nil(t, p.News)
}

func TestParsePortfolio_NullPositionsIsEmpty(t *testing.T) {
	p, err := parsePortfolio([]byte(`{"positions":null}`))
	require.NoError(t, err)
	assert.Empty(t, p.Positions)
}

func TestFillIndicators_ShortSeries(t *testing.T) {
	data, changed := fillIndicators(domain.HistoricalData{
		Dates:  []string{"a", "b", "c", "d", "e"},
		Prices: []float64{1, 2, 3, 4, 5},
	})
	assert.True(t, changed)
	assert.Equal(t, make([]float64, 5), data.RSI)
	assert.Equal(t, make([]float64, 5), data.MACD)
}
