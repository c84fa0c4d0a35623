// pkg/ai/mock_client.go

package ai

import (
	"context"
	"math"
	"strings"
)

type mockClient struct{}

// NewMock returns a deterministic heuristic predictor for running without an API key.
func NewMock() Predictor { return &mockClient{} }

// ideal storage temperature in °C for crops the heuristic knows about
var idealTemp = map[string]float64{
	"tomatoes": 12,
	"onions":   2,
	"potatoes": 5,
	"apples":   1,
	"bananas":  14,
	"grapes":   0,
	"wheat":    15,
	"rice":     15,
}

func ideal(crop string) float64 {
	if t, ok := idealTemp[strings.ToLower(strings.TrimSpace(crop))]; ok {
		return t
	}
	return 10
}

func risk(in SpoilageInput) float64 {
	target := ideal(in.CropType)
	r := in.HistoricalSpoilageRate
	r += math.Abs(in.Temperature-target) * 1.5
	if in.Humidity > 85 {
		r += (in.Humidity - 85) * 0.8
	}
	if in.Humidity < 50 {
		r += (50 - in.Humidity) * 0.4
	}
	r += float64(in.StorageDays) * 0.3
	return math.Round(math.Min(100, math.Max(0, r))*10) / 10
}

func (m *mockClient) PredictSpoilage(_ context.Context, in SpoilageInput) (*Prediction, error) {
	target := ideal(in.CropType)

	recs := make([]string, 0, 4)
	if in.Temperature > target+2 {
		recs = append(recs, "Lower the chamber temperature closer to the crop's ideal range")
	}
	if in.Temperature < target-2 {
		recs = append(recs, "Raise the chamber temperature to avoid chilling injury")
	}
	if in.Humidity > 85 {
		recs = append(recs, "Improve ventilation to bring humidity down")
	}
	if in.StorageDays > 30 {
		recs = append(recs, "Prioritise this lot for dispatch")
	}
	// always keep an inspection routine
	recs = append(recs, "Inspect a sample of the lot every week")

	return &Prediction{PredictedSpoilageRisk: risk(in), Recommendations: recs}, nil
}
