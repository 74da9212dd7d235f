package intent

import (
	"context"
	"strings"
	"time"

	"github.com/campuskit/campus-wabot-go/internal/audit"
	"github.com/campuskit/campus-wabot-go/internal/event"
	"github.com/campuskit/campus-wabot-go/internal/logger"
	"github.com/campuskit/campus-wabot-go/internal/metrics"
	"github.com/campuskit/campus-wabot-go/internal/nlu"
)

// Classifier resolves inbound events to intents. Button replies use the
// static table; text goes to the external classifier behind the
// confidence gate. The literal text "help" never reaches the model.
type Classifier struct {
	text      nlu.TextClassifier
	threshold float64
	timeout   time.Duration
	audit     audit.Recorder
	log       *logger.Logger
	metrics   *metrics.Metrics
}

// Config holds Classifier settings.
type Config struct {
	// Text is the external text classifier; nil disables text
	// classification entirely (every text resolves to Unrecognized).
	Text nlu.TextClassifier

	// ConfidenceThreshold is the minimum average log-probability an
	// accepted verdict needs. Must be negative or zero.
	ConfidenceThreshold float64

	// Timeout bounds one classification call.
	Timeout time.Duration

	Audit   audit.Recorder
	Logger  *logger.Logger
	Metrics *metrics.Metrics
}

// New creates a Classifier.
func New(cfg Config) *Classifier {
	auditRec := cfg.Audit
	if auditRec == nil {
		auditRec = audit.Nop{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Classifier{
		text:      cfg.Text,
		threshold: cfg.ConfidenceThreshold,
		timeout:   timeout,
		audit:     auditRec,
		log:       cfg.Logger,
		metrics:   cfg.Metrics,
	}
}

// Classify resolves one event. It is total: every event yields a
// Resolution and classification failures degrade to Unrecognized.
func (c *Classifier) Classify(ctx context.Context, ev event.Event) Resolution {
	var res Resolution
	switch ev.Type {
	case event.TypeButton, event.TypeInteractive:
		res = ResolveReply(ev.ReplyID, ev.ButtonText)
	case event.TypeText:
		res = c.classifyText(ctx, ev)
	default:
		res = Resolution{Intent: Unrecognized, Source: SourceDegraded}
	}

	if c.metrics != nil {
		c.metrics.RecordIntent(string(res.Intent), string(res.Source))
	}
	return res
}

// helpOverride reports whether the normalized text is the literal "help".
func helpOverride(text string) bool {
	return strings.Trim(strings.ToLower(strings.TrimSpace(text)), "!?.") == "help"
}

func (c *Classifier) classifyText(ctx context.Context, ev event.Event) Resolution {
	// The help override wins before any model is consulted, so help
	// stays reachable when the classifier is down or unsure.
	if helpOverride(ev.Text) {
		return Resolution{Intent: Help, Source: SourceOverride}
	}

	if c.text == nil {
		return Resolution{Intent: Unrecognized, Source: SourceDegraded}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	verdict, err := c.text.Classify(ctx, ev.Text)
	if err != nil {
		if c.log != nil {
			c.log.WithModule("intent").
				WithSender(ev.Sender).
				WithError(err).
				Warn("Text classification unavailable")
		}
		return Resolution{Intent: Unrecognized, Source: SourceDegraded}
	}

	resolved, known := FromLabel(verdict.Label)
	accepted := known && verdict.Confidence >= c.threshold

	// Fire-and-forget: Record never blocks and its failures are only
	// visible through the dropped-entries counter.
	c.audit.Record(audit.Entry{
		Sender:     ev.Sender,
		Input:      ev.Text,
		Label:      verdict.Label,
		Confidence: verdict.Confidence,
		Accepted:   accepted,
		Provider:   verdict.Provider,
	})

	if !known {
		return Resolution{Intent: Unrecognized, Source: SourceText}
	}
	if !accepted {
		return Resolution{Intent: Unrecognized, Source: SourceGate}
	}
	return Resolution{Intent: resolved, Source: SourceText}
}
