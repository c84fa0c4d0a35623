// pkg/ai/client.go

package ai

import (
	"context"
	"errors"
)

// SpoilageInput describes a stored lot for a spoilage estimate.
type SpoilageInput struct {
	CropType               string
	Temperature            float64
	Humidity               float64
	StorageDays            int
	HistoricalSpoilageRate float64
}

// Prediction is the model's estimate. Risk is a percentage in [0, 100].
type Prediction struct {
	PredictedSpoilageRisk float64  `json:"predictedSpoilageRisk"`
	Recommendations       []string `json:"recommendations"`
}

var ErrBadPrediction = errors.New("model returned an unusable prediction")

type Predictor interface {
	PredictSpoilage(ctx context.Context, in SpoilageInput) (*Prediction, error)
}
