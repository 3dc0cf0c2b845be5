package clientdata

import "time"

// TTL defaults per cached endpoint.
// Live quotes use the configured MARKET_CACHE_TTL instead.
const (
	TTLLiveData       = 10 * time.Second
	TTLHistoricalData = time.Minute
	// Predictions retrain a model on the backend, so they are cached longer
	TTLPrediction     = 5 * time.Minute
	TTLRecommendation = 5 * time.Minute
)

// TTLs maps each table to its time-to-live
type TTLs map[string]time.Duration

// DefaultTTLs returns the TTLs with live data bounded by liveTTL
func DefaultTTLs(liveTTL time.Duration) TTLs {
	if liveTTL <= 0 {
		liveTTL = TTLLiveData
	}
	return TTLs{
		TableLiveData:        liveTTL,
		TableHistoricalData:  TTLHistoricalData,
		TablePredictions:     TTLPrediction,
		TableRecommendations: TTLRecommendation,
	}
}
