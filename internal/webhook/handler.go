// Package webhook terminates the Meta Graph API webhook: the GET
// verification handshake and signed POST notifications. Notifications
// are acknowledged with 200 immediately and processed asynchronously;
// the platform redelivers on non-200, never on a slow handler.
package webhook

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/campuskit/campus-wabot-go/internal/bot"
	"github.com/campuskit/campus-wabot-go/internal/config"
	"github.com/campuskit/campus-wabot-go/internal/ctxutil"
	"github.com/campuskit/campus-wabot-go/internal/event"
	"github.com/campuskit/campus-wabot-go/internal/logger"
	"github.com/campuskit/campus-wabot-go/internal/metrics"
	"github.com/campuskit/campus-wabot-go/internal/ratelimit"
	"github.com/campuskit/campus-wabot-go/internal/sentry"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// maxBodyBytes bounds one webhook request body.
const maxBodyBytes = 1 << 20

// ReadMarker marks inbound messages as read. Optional; satisfied by the
// wamsg client.
type ReadMarker interface {
	MarkRead(ctx context.Context, messageID string) error
}

// Handler handles Graph API webhook requests.
type Handler struct {
	verifyToken string
	appSecret   string
	processor   *bot.Processor
	readMarker  ReadMarker
	metrics     *metrics.Metrics
	logger      *logger.Logger
	userLimiter *ratelimit.KeyedLimiter

	eventTimeout time.Duration
	maxEvents    int

	wg sync.WaitGroup
}

// HandlerConfig holds configuration for creating a new Handler.
type HandlerConfig struct {
	VerifyToken string
	AppSecret   string
	BotConfig   *config.BotConfig
	Processor   *bot.Processor
	ReadMarker  ReadMarker
	Metrics     *metrics.Metrics
	Logger      *logger.Logger
}

// NewHandler creates a webhook handler and starts its per-sender rate
// limiter. Call Shutdown when done. Nil Metrics and Logger get inert
// substitutes so every call site stays unguarded.
func NewHandler(cfg HandlerConfig) *Handler {
	m := cfg.Metrics
	if m == nil {
		m = metrics.New(prometheus.NewRegistry())
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewWithWriter("error", io.Discard)
	}

	h := &Handler{
		verifyToken:  cfg.VerifyToken,
		appSecret:    cfg.AppSecret,
		processor:    cfg.Processor,
		readMarker:   cfg.ReadMarker,
		metrics:      m,
		logger:       log,
		eventTimeout: cfg.BotConfig.WebhookTimeout,
		maxEvents:    cfg.BotConfig.MaxEventsPerWebhook,
	}
	h.userLimiter = ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Burst:      cfg.BotConfig.UserRateLimitBurst,
		RefillRate: cfg.BotConfig.UserRateLimitRefillPerSec,
		OnDrop: func() {
			h.metrics.RecordRateLimiterDrop("user")
		},
	})
	return h
}

// Verify is the Gin handler for the GET verification handshake. Meta
// sends hub.mode=subscribe with the configured verify token and expects
// the challenge echoed back verbatim.
func (h *Handler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != "subscribe" || token != h.verifyToken {
		h.logger.WithField("mode", mode).Warn("Webhook verification rejected")
		c.Status(http.StatusForbidden)
		return
	}
	c.String(http.StatusOK, challenge)
}

// Handle is the Gin handler for POST notifications.
func (h *Handler) Handle(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		h.logger.WithError(err).Error("Failed to read webhook body")
		c.Status(http.StatusInternalServerError)
		return
	}

	if !ValidSignature(body, c.GetHeader("X-Hub-Signature-256"), h.appSecret) {
		h.logger.Warn("Invalid webhook signature")
		h.metrics.RecordWebhook("batch", "bad_signature", 0)
		c.Status(http.StatusForbidden)
		return
	}

	events, err := ParseNotification(body)
	if err != nil {
		// Malformed bodies end here: acknowledged so the platform stops
		// redelivering, logged, and never answered.
		h.logger.WithError(err).Warn("Discarding malformed notification")
		h.metrics.RecordWebhook("batch", "malformed", 0)
		c.Status(http.StatusOK)
		return
	}

	// Acknowledge before processing; redelivery on non-200 is the only
	// retry the platform has and the dispatch core never adds its own.
	c.Status(http.StatusOK)
	h.metrics.RecordWebhook("batch", "received", 0)

	if len(events) > h.maxEvents {
		h.logger.WithField("event_count", len(events)).
			WithField("limit", h.maxEvents).
			Warn("Too many events in webhook batch; truncating")
		events = events[:h.maxEvents]
	}

	start := time.Now()
	// Detach from the request context: gin cancels it once the 200 is
	// written, while tracing values survive for the async pipeline.
	ctx := ctxutil.PreserveTracing(c.Request.Context())
	h.wg.Go(func() {
		defer func() {
			if r := recover(); r != nil {
				h.logger.WithField("panic", r).Error("Panic in async event processing")
				sentry.CaptureException(fmt.Errorf("webhook: panic in event processing: %v", r))
			}
		}()

		for _, ev := range events {
			h.processEvent(ctx, ev, start)
		}
	})
}

func (h *Handler) processEvent(ctx context.Context, ev event.Event, batchStart time.Time) {
	ctx = ctxutil.WithSenderID(ctx, ev.Sender)
	log := h.logger.WithModule("webhook").WithSender(ev.Sender)
	if ev.MessageID != "" {
		ctx = ctxutil.WithRequestID(ctx, ev.MessageID)
		log = log.WithRequestID(ev.MessageID)
	}

	if ev.Type != event.TypeStatus {
		h.markRead(ctx, ev.MessageID, log)

		if !h.userLimiter.Allow(ev.Sender) {
			log.Warn("Sender rate limited; dropping event")
			h.metrics.RecordWebhook(string(ev.Type), "rate_limited", 0)
			return
		}
	}

	eventCtx, cancel := context.WithTimeout(ctx, h.eventTimeout)
	defer cancel()

	eventStart := time.Now()
	err := h.processor.ProcessEvent(eventCtx, ev)

	status := "success"
	if err != nil {
		status = "error"
		log.WithError(err).WithField("event_type", string(ev.Type)).Error("Failed to handle event")
	}
	h.metrics.RecordWebhook(string(ev.Type), status, time.Since(eventStart).Seconds())

	log.WithField("event_type", string(ev.Type)).
		WithField("event_duration_ms", time.Since(eventStart).Milliseconds()).
		WithField("batch_duration_ms", time.Since(batchStart).Milliseconds()).
		Info("Event processed")
}

func (h *Handler) markRead(ctx context.Context, messageID string, log *logger.Logger) {
	if h.readMarker == nil || messageID == "" {
		return
	}
	readCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := h.readMarker.MarkRead(readCtx, messageID); err != nil {
		log.WithError(err).Debug("Failed to mark message read")
	}
}

// Shutdown waits for in-flight event processing to finish or the context
// to expire.
func (h *Handler) Shutdown(ctx context.Context) error {
	h.userLimiter.Stop()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
