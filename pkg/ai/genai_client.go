// pkg/ai/genai_client.go

package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const promptTemplate = `You are an agronomist advising an Indian cold-storage warehouse.
Estimate the spoilage risk for this stored lot.

Crop: %s
Storage temperature: %.1f °C
Relative humidity: %.1f %%
Days in storage: %d
Historical spoilage rate: %.1f %%

Respond with JSON only, shaped as:
{"predictedSpoilageRisk": <number 0-100>, "recommendations": ["<short action>", ...]}
Give at most 4 recommendations.`

type genaiClient struct {
	client *genai.Client
	model  string
}

func NewGenAI(ctx context.Context, apiKey, model string) (Predictor, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &genaiClient{client: client, model: model}, nil
}

func (c *genaiClient) PredictSpoilage(ctx context.Context, in SpoilageInput) (*Prediction, error) {
	prompt := fmt.Sprintf(promptTemplate,
		in.CropType, in.Temperature, in.Humidity, in.StorageDays, in.HistoricalSpoilageRate)

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0.2),
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("GenAI generate failed: %w", err)
	}
	return parsePrediction(resp.Text())
}

// parsePrediction accepts the model's JSON, tolerating a markdown code fence.
func parsePrediction(raw string) (*Prediction, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	var p Prediction
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPrediction, err)
	}
	if p.PredictedSpoilageRisk < 0 || p.PredictedSpoilageRisk > 100 {
		return nil, fmt.Errorf("%w: risk %.1f out of range", ErrBadPrediction, p.PredictedSpoilageRisk)
	}
	if p.Recommendations == nil {
		p.Recommendations = []string{}
	}
	return &p, nil
}
