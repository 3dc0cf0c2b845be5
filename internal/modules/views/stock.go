package views

import (
	"strings"

	"github.com/aristath/minty/internal/domain"
	"github.com/aristath/minty/internal/modules/formatting"
)

const (
	msgNoRecommendation = "Not enough data for recommendation"
	msgNotEnoughData    = "Not enough data"
	msgNoNews           = "No news available."
)

// LiveStatsModel is the price header and key stats of the stock page
type LiveStatsModel struct {
	Price       string `json:"price"`
	Change      string `json:"change"`
	ChangeClass string `json:"change_class"`
	Open        string `json:"open"`
	High        string `json:"high"`
	Low         string `json:"low"`
	Volume      string `json:"volume"`
}

// LiveStats renders a live_data result; every unknown field is the placeholder
func LiveStats(live domain.Result[domain.LiveData]) LiveStatsModel {
	data, _ := live.Get()

	model := LiveStatsModel{
		Price:       formatting.OptionalPrice(data.Price),
		Change:      formatting.Placeholder,
		ChangeClass: formatting.ClassNeutral,
		Open:        formatting.OptionalDollar(data.Open),
		High:        formatting.OptionalDollar(data.DayHigh),
		Low:         formatting.OptionalDollar(data.DayLow),
		Volume:      formatting.OptionalVolume(data.Volume),
	}

	if data.PriceChange != nil && data.PriceChangePct != nil {
		change, pct := *data.PriceChange, *data.PriceChangePct
		model.Change = formatting.SignedFixed(change) + " (" + formatting.SignedFixed(pct) + "%)"
		model.ChangeClass = formatting.ChangeClass(change)
	}
	return model
}

// RecommendationModel is the AI recommendation card
type RecommendationModel struct {
	Recommendation string `json:"recommendation"`
	// Class styles the recommendation ("BUY", "SELL", ...); empty when there is none
	Class      string `json:"class"`
	Confidence string `json:"confidence"`
}

// Recommendation renders a recommend result
func Recommendation(rec domain.Result[domain.Recommendation]) RecommendationModel {
	data, _ := rec.Get()

	model := RecommendationModel{
		Recommendation: msgNoRecommendation,
		Confidence:     msgNotEnoughData,
	}
	if r := strings.TrimSpace(data.Recommendation); r != "" && r != msgNotEnoughData {
		model.Recommendation = r
		model.Class = r
	}
	if c := strings.TrimSpace(data.Confidence); c != "" && c != msgNotEnoughData {
		model.Confidence = c
	}
	return model
}

// News renders the headlines of a predict result
func News(pred domain.Result[domain.Prediction]) []string {
	data, _ := pred.Get()
	if len(data.News) == 0 {
		return []string{msgNoNews}
	}
	out := make([]string, len(data.News))
	copy(out, data.News)
	return out
}

// PredictionModel is the predicted price line
type PredictionModel struct {
	PredictedPrice string `json:"predicted_price"`
}

// Prediction renders the predicted price of a predict result
func Prediction(pred domain.Result[domain.Prediction]) PredictionModel {
	data, _ := pred.Get()
	return PredictionModel{PredictedPrice: formatting.OptionalPrice(data.PredictedPrice)}
}
