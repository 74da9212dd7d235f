package nlu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// GroqBaseURL is the OpenAI-compatible endpoint for Groq.
const GroqBaseURL = "https://api.groq.com/openai/v1"

// DefaultGroqModel is used when no model is configured.
const DefaultGroqModel = "llama-3.3-70b-versatile"

// OpenAIClassifier classifies text through any OpenAI-compatible chat
// completion endpoint. Confidence is the mean token log-probability of
// the completion.
type OpenAIClassifier struct {
	client   openai.Client
	model    string
	prompt   string
	provider string
}

// NewGroqClassifier creates a classifier backed by Groq's
// OpenAI-compatible API. Returns nil if apiKey is empty.
func NewGroqClassifier(apiKey, model string, labels []string) (*OpenAIClassifier, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: provider disabled when no API key
	}
	if model == "" {
		model = DefaultGroqModel
	}
	return newOpenAIClassifier("groq", GroqBaseURL, apiKey, model, labels)
}

func newOpenAIClassifier(provider, baseURL, apiKey, model string, labels []string) (*OpenAIClassifier, error) {
	if model == "" {
		return nil, fmt.Errorf("model is required for provider %s", provider)
	}
	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)
	return &OpenAIClassifier{
		client:   client,
		model:    model,
		prompt:   systemPrompt(labels),
		provider: provider,
	}, nil
}

// Classify implements TextClassifier.
func (c *OpenAIClassifier) Classify(ctx context.Context, text string) (*Classification, error) {
	if c == nil {
		return nil, errors.New("classifier is nil")
	}

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(c.prompt),
			openai.UserMessage(text),
		},
		Temperature: openai.Float(0),
		MaxTokens:   openai.Int(16),
		Logprobs:    openai.Bool(true),
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	duration := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "classification API call failed",
			"provider", c.provider,
			"model", c.model,
			"input_length", len(text),
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("empty response from model")
	}
	choice := resp.Choices[0]

	label := normalizeLabel(choice.Message.Content)
	if label == "" {
		return nil, errors.New("blank label in response")
	}

	confidence := meanLogprob(choice.Logprobs.Content)

	slog.DebugContext(ctx, "classification completed",
		"provider", c.provider,
		"model", c.model,
		"label", label,
		"avg_logprobs", confidence,
		"duration_ms", duration.Milliseconds())

	return &Classification{
		Label:      label,
		Confidence: confidence,
		Provider:   c.provider,
	}, nil
}

// Provider implements TextClassifier.
func (c *OpenAIClassifier) Provider() string {
	return c.provider
}

func meanLogprob(tokens []openai.ChatCompletionTokenLogprob) float64 {
	if len(tokens) == 0 {
		return 0
	}
	var sum float64
	for _, t := range tokens {
		sum += t.Logprob
	}
	return sum / float64(len(tokens))
}
