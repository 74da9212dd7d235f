// Package nlu integrates the external text-classification providers
// (Gemini and OpenAI-compatible endpoints such as Groq). A classifier
// maps free text to one label from a closed set and reports the model's
// average token log-probability as confidence.
package nlu

import (
	"context"
	"fmt"
	"strings"
)

// Classification is one provider verdict. Confidence is the average
// log-probability of the generated label tokens (0 is certain, more
// negative is less certain).
type Classification struct {
	Label      string
	Confidence float64
	Provider   string
}

// TextClassifier maps free text to one label from the configured set.
type TextClassifier interface {
	Classify(ctx context.Context, text string) (*Classification, error)
	Provider() string
}

// systemPrompt instructs the model to answer with exactly one label.
func systemPrompt(labels []string) string {
	var b strings.Builder
	b.WriteString("You classify messages sent to a campus student assistant.\n")
	b.WriteString("Reply with exactly one label from this list and nothing else:\n")
	for _, label := range labels {
		fmt.Fprintf(&b, "- %s\n", label)
	}
	b.WriteString("If none fits, reply with: unrecognized")
	return b.String()
}

// normalizeLabel strips whitespace and quoting the model may add around
// the label.
func normalizeLabel(raw string) string {
	return strings.ToLower(strings.Trim(strings.TrimSpace(raw), "\"'`."))
}
