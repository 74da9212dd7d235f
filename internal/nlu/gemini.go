package nlu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash-lite"

// GeminiClassifier classifies text with the Gemini API. Confidence comes
// from the candidate's average log-probability.
type GeminiClassifier struct {
	client *genai.Client
	model  string
	prompt string
}

// NewGeminiClassifier creates a Gemini-backed classifier.
// Returns nil if apiKey is empty (provider disabled).
func NewGeminiClassifier(ctx context.Context, apiKey, model string, labels []string) (*GeminiClassifier, error) {
	if apiKey == "" {
		return nil, nil //nolint:nilnil // Intentional: provider disabled when no API key
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiClassifier{
		client: client,
		model:  model,
		prompt: systemPrompt(labels),
	}, nil
}

// Classify implements TextClassifier.
func (c *GeminiClassifier) Classify(ctx context.Context, text string) (*Classification, error) {
	if c == nil {
		return nil, errors.New("classifier is nil")
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(c.prompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0), // Deterministic label choice
		MaxOutputTokens:   16,
		ResponseLogprobs:  true,
	}

	start := time.Now()
	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(text), config)
	duration := time.Since(start)

	if err != nil {
		slog.WarnContext(ctx, "classification API call failed",
			"provider", "gemini",
			"model", c.model,
			"input_length", len(text),
			"duration_ms", duration.Milliseconds(),
			"error", err)
		return nil, fmt.Errorf("generate content failed: %w", err)
	}

	if len(result.Candidates) == 0 {
		return nil, errors.New("empty response from model")
	}
	candidate := result.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, errors.New("no content in response")
	}

	label := normalizeLabel(result.Text())
	if label == "" {
		return nil, errors.New("blank label in response")
	}

	slog.DebugContext(ctx, "classification completed",
		"provider", "gemini",
		"model", c.model,
		"label", label,
		"avg_logprobs", candidate.AvgLogprobs,
		"duration_ms", duration.Milliseconds())

	return &Classification{
		Label:      label,
		Confidence: candidate.AvgLogprobs,
		Provider:   "gemini",
	}, nil
}

// Provider implements TextClassifier.
func (c *GeminiClassifier) Provider() string {
	return "gemini"
}
