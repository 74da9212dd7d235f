// Package bot runs the conversational turn: resolve the sender, classify
// the event, route the intent, and send the resulting payload. One inbound
// event yields at most one outbound message and is never retried.
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/campuskit/campus-wabot-go/internal/ctxutil"
	"github.com/campuskit/campus-wabot-go/internal/dispatch"
	domerrors "github.com/campuskit/campus-wabot-go/internal/errors"
	"github.com/campuskit/campus-wabot-go/internal/event"
	"github.com/campuskit/campus-wabot-go/internal/intent"
	"github.com/campuskit/campus-wabot-go/internal/logger"
	"github.com/campuskit/campus-wabot-go/internal/sentry"
	"github.com/campuskit/campus-wabot-go/internal/session"
	"github.com/campuskit/campus-wabot-go/internal/wamsg"
)

// Reply texts for turns that never reach an action handler.
const (
	unknownSenderText = "Hi! This assistant is only available to enrolled students. If you are a student, please ask the campus office to link your WhatsApp number."
	apologyText       = "Sorry, something went wrong on our side. Please try again in a little while."
)

// Processor runs one conversational turn per inbound event.
type Processor struct {
	sessions   session.Provider
	classifier *intent.Classifier
	router     *dispatch.Router
	sender     wamsg.Sender
	log        *logger.Logger
}

// Config holds Processor dependencies. All fields except Logger are required.
type Config struct {
	Sessions   session.Provider
	Classifier *intent.Classifier
	Router     *dispatch.Router
	Sender     wamsg.Sender
	Logger     *logger.Logger
}

// New creates a Processor.
func New(cfg Config) (*Processor, error) {
	if cfg.Sessions == nil || cfg.Classifier == nil || cfg.Router == nil || cfg.Sender == nil {
		return nil, fmt.Errorf("bot: sessions, classifier, router, and sender are required")
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewWithWriter("error", io.Discard)
	}
	return &Processor{
		sessions:   cfg.Sessions,
		classifier: cfg.Classifier,
		router:     cfg.Router,
		sender:     cfg.Sender,
		log:        log,
	}, nil
}

// ProcessEvent handles one inbound event end to end. Status events are
// logged and discarded; everything else ends in exactly one send attempt.
// The returned error reflects delivery only: handler failures are already
// converted to an apology reply by the time Send runs.
func (p *Processor) ProcessEvent(ctx context.Context, ev event.Event) error {
	log := p.log.WithModule("bot").WithSender(ev.Sender)
	if requestID, ok := ctxutil.GetRequestID(ctx); ok {
		log = log.WithRequestID(requestID)
	}

	switch ev.Type {
	case event.TypeStatus:
		log.WithField("status", ev.Status).Debug("Delivery status received")
		return nil

	case event.TypeUnsupported:
		mediaType := ev.MediaType
		if mediaType == "" {
			mediaType = "this kind of"
		}
		return p.reply(ctx, ev.Sender, fmt.Sprintf("Sorry! I'm unable to process %s messages.", mediaType))

	case event.TypeText, event.TypeButton, event.TypeInteractive:
		// Conversational turn, handled below.

	default:
		// Malformed events end the turn silently: there is nothing safe
		// to reply to.
		log.WithField("event_type", string(ev.Type)).Warn("Discarding malformed event")
		return nil
	}

	if ev.Sender == "" {
		log.Warn("Discarding event without sender")
		return nil
	}

	student, err := p.sessions.ResolveStudent(ctx, ev.Sender)
	if err != nil {
		if errors.Is(err, domerrors.ErrUnknownSender) {
			log.Info("Unknown sender")
			return p.reply(ctx, ev.Sender, unknownSenderText)
		}
		log.WithError(err).Error("Session resolution failed")
		sentry.CaptureExceptionWithContext(ctx, err)
		return p.reply(ctx, ev.Sender, apologyText)
	}

	res := p.classifier.Classify(ctx, ev)
	log.WithField("intent", string(res.Intent)).
		WithField("source", string(res.Source)).
		Debug("Intent resolved")

	payload, err := p.router.Dispatch(ctx, student, res)
	if err != nil {
		log.WithField("intent", string(res.Intent)).
			WithError(err).
			Error("Action handler failed")
		sentry.CaptureExceptionWithContext(ctx, err)
		return p.reply(ctx, ev.Sender, failureText(err))
	}

	return p.send(ctx, ev.Sender, payload)
}

// failureText picks the reply for a failed action. Handlers that wrap
// their errors with a user message get it delivered verbatim; anything
// else falls back to the generic apology.
func failureText(err error) string {
	var wrapped *domerrors.WrappedError
	if errors.As(err, &wrapped) && wrapped.UserMessage != "" {
		return wrapped.UserMessage
	}
	return apologyText
}

func (p *Processor) reply(ctx context.Context, to, text string) error {
	payload, err := wamsg.NewText(text)
	if err != nil {
		return fmt.Errorf("bot: build reply: %w", err)
	}
	return p.send(ctx, to, payload)
}

func (p *Processor) send(ctx context.Context, to string, payload wamsg.Payload) error {
	if err := p.sender.Send(ctx, to, payload); err != nil {
		p.log.WithModule("bot").WithSender(to).WithError(err).Error("Send failed")
		return fmt.Errorf("bot: send: %w", err)
	}
	return nil
}
