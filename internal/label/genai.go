package label

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.0-flash"

const promptTemplate = `You are an assistant classifying discussion-forum comments. Label each comment as either "Informative" or "Not Informative".

Informative comments provide facts, explanations, answers, or helpful advice.
Not Informative comments are jokes, sarcasm, vague, or add no value.

Comment: %q

Label: [Informative / Not Informative]
`

// GenAIClassifier labels comments with a Gemini model.
type GenAIClassifier struct {
	client *genai.Client
	model  string
}

// NewGenAIClassifier creates a classifier using the Gemini API.
func NewGenAIClassifier(ctx context.Context, apiKey, model string) (*GenAIClassifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating GenAI client: %w", err)
	}
	return &GenAIClassifier{client: client, model: model}, nil
}

// Model returns the model name recorded with each label.
func (c *GenAIClassifier) Model() string { return c.model }

// Classify asks the model for a label and parses its reply.
func (c *GenAIClassifier) Classify(ctx context.Context, text string) (string, error) {
	var temp float32 = 0
	var maxTokens int32 = 20
	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		genai.Text(Prompt(text)),
		&genai.GenerateContentConfig{
			Temperature:     &temp,
			MaxOutputTokens: maxTokens,
		})
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	reply := resp.Text()
	if reply == "" {
		return "", fmt.Errorf("empty reply from %s", c.model)
	}
	return Parse(reply), nil
}

// Prompt builds the classification prompt for one comment.
func Prompt(text string) string {
	return fmt.Sprintf(promptTemplate, text)
}
