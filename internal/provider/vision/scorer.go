package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/saturnino-fabrica-de-software/validoc/internal/domain"
	"github.com/saturnino-fabrica-de-software/validoc/internal/provider"
)

const (
	defaultModel = "gpt-4o-mini"
	maxTokens    = 256

	systemPrompt = "You classify identity photos. Answer with a JSON object " +
		`{"top_label": string, "top_score": number between 0 and 1, "real_person": boolean}. ` +
		"top_label is the dominant subject (person, screen, print, drawing, other)."
)

// Scorer implements provider.VisionScorer over an OpenAI vision model. It is
// an optional capability: callers treat any error as "scorer absent".
type Scorer struct {
	client *openai.Client
	model  string
}

var _ provider.VisionScorer = (*Scorer)(nil)

// New creates a vision scorer. An empty model selects the default.
func New(apiKey, model string) *Scorer {
	if model == "" {
		model = defaultModel
	}
	return &Scorer{client: openai.NewClient(apiKey), model: model}
}

type verdictPayload struct {
	TopLabel   string  `json:"top_label"`
	TopScore   float64 `json:"top_score"`
	RealPerson bool    `json:"real_person"`
}

// Score asks the model whether the image shows a real, directly photographed
// person.
func (s *Scorer) Score(ctx context.Context, image []byte) (*domain.VisionVerdict, error) {
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)

	req := openai.ChatCompletionRequest{
		Model:     s.model,
		MaxTokens: maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision scorer: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("vision scorer: empty response")
	}

	var payload verdictPayload
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &payload); err != nil {
		return nil, fmt.Errorf("vision scorer: decode verdict: %w", err)
	}

	return &domain.VisionVerdict{
		OK:       payload.RealPerson,
		TopLabel: payload.TopLabel,
		TopScore: payload.TopScore,
	}, nil
}
