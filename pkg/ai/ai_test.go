package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMock_PredictSpoilage(t *testing.T) {
	p := NewMock()

	good, err := p.PredictSpoilage(context.Background(), SpoilageInput{
		CropType: "Tomatoes", Temperature: 12, Humidity: 70, StorageDays: 0, HistoricalSpoilageRate: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 2.0, good.PredictedSpoilageRisk)
	assert.Equal(t, []string{"Inspect a sample of the lot every week"}, good.Recommendations)

	bad, err := p.PredictSpoilage(context.Background(), SpoilageInput{
		CropType: "Tomatoes", Temperature: 30, Humidity: 95, StorageDays: 40, HistoricalSpoilageRate: 10,
	})
	require.NoError(t, err)
	assert.Greater(t, bad.PredictedSpoilageRisk, good.PredictedSpoilageRisk)
	assert.LessOrEqual(t, bad.PredictedSpoilageRisk, 100.0)
	assert.Len(t, bad.Recommendations, 4)
}

func TestMock_RiskIsCapped(t *testing.T) {
	p := NewMock()

	got, err := p.PredictSpoilage(context.Background(), SpoilageInput{
		CropType: "Bananas", Temperature: 70, Humidity: 100, StorageDays: 365, HistoricalSpoilageRate: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.PredictedSpoilageRisk)
}

func TestParsePrediction(t *testing.T) {
	p, err := parsePrediction("```json\n{\"predictedSpoilageRisk\": 37.5, \"recommendations\": [\"Cool it\"]}\n```")
	require.NoError(t, err)
	assert.Equal(t, 37.5, p.PredictedSpoilageRisk)
	assert.Equal(t, []string{"Cool it"}, p.Recommendations)

	p, err = parsePrediction(`{"predictedSpoilageRisk": 5}`)
	require.NoError(t, err)
	assert.Empty(t, p.Recommendations)

	_, err = parsePrediction("not json")
	assert.ErrorIs(t, err, ErrBadPrediction)

	_, err = parsePrediction(`{"predictedSpoilageRisk": 140}`)
	assert.ErrorIs(t, err, ErrBadPrediction)
}

func TestNewGenAI_RequiresKey(t *testing.T) {
	_, err := NewGenAI(context.Background(), "", "")
	assert.Error(t, err)
}
