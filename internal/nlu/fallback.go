package nlu

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	domerrors "github.com/campuskit/campus-wabot-go/internal/errors"
	"github.com/campuskit/campus-wabot-go/internal/metrics"
)

// FallbackClassifier tries each configured provider in order and returns
// the first successful verdict. When every provider fails it reports
// domerrors.ErrClassifierUnavailable so the caller can degrade.
type FallbackClassifier struct {
	chain   []TextClassifier
	metrics *metrics.Metrics
}

// NewFallbackClassifier builds a provider chain; nil entries are skipped.
func NewFallbackClassifier(m *metrics.Metrics, classifiers ...TextClassifier) *FallbackClassifier {
	chain := make([]TextClassifier, 0, len(classifiers))
	for _, c := range classifiers {
		if c != nil {
			chain = append(chain, c)
		}
	}
	return &FallbackClassifier{chain: chain, metrics: m}
}

// Enabled reports whether at least one provider is configured.
func (f *FallbackClassifier) Enabled() bool {
	return f != nil && len(f.chain) > 0
}

// Classify implements TextClassifier.
func (f *FallbackClassifier) Classify(ctx context.Context, text string) (*Classification, error) {
	if !f.Enabled() {
		return nil, domerrors.ErrClassifierUnavailable
	}

	var lastErr error
	for i, classifier := range f.chain {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		start := time.Now()
		result, err := classifier.Classify(ctx, text)
		if f.metrics != nil {
			status := "success"
			if err != nil {
				status = "error"
			}
			f.metrics.RecordClassification(classifier.Provider(), status, time.Since(start).Seconds())
		}
		if err == nil {
			return result, nil
		}

		lastErr = err
		if i < len(f.chain)-1 {
			slog.WarnContext(ctx, "classifier provider failed, trying next",
				"provider", classifier.Provider(),
				"error", err)
		}
	}

	slog.ErrorContext(ctx, "all classifier providers failed", "error", lastErr)
	return nil, fmt.Errorf("%w: %w", domerrors.ErrClassifierUnavailable, lastErr)
}

// Provider implements TextClassifier.
func (f *FallbackClassifier) Provider() string {
	if len(f.chain) == 1 {
		return f.chain[0].Provider()
	}
	return "fallback"
}
