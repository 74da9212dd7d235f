package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Webhook metrics
	WebhookRequestsTotal   *prometheus.CounterVec
	WebhookDurationSeconds *prometheus.HistogramVec

	// Classifier metrics
	ClassifierRequestsTotal   *prometheus.CounterVec
	ClassifierDurationSeconds *prometheus.HistogramVec
	IntentResolvedTotal       *prometheus.CounterVec

	// Audit metrics
	AuditEntriesTotal *prometheus.CounterVec
	AuditDroppedTotal prometheus.Counter

	// Data provider metrics
	RepositoryQueriesTotal *prometheus.CounterVec
	RepositoryEmptyResults *prometheus.CounterVec

	// Renderer metrics
	RenderDurationSeconds *prometheus.HistogramVec

	// Outbound transport metrics
	SendTotal           *prometheus.CounterVec
	SendDurationSeconds *prometheus.HistogramVec

	// Rate limiter metrics
	RateLimiterDropped *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		WebhookRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "wabot_webhook_requests_total",
				Help: "Total number of webhook events by event type and status",
			},
			[]string{"event_type", "status"}, // event_type: text, button, interactive, status; status: success, error, discarded
		),

		WebhookDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wabot_webhook_duration_seconds",
				Help:    "Event processing duration in seconds by event type",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"event_type"},
		),

		ClassifierRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "wabot_classifier_requests_total",
				Help: "Total number of text classification calls by provider and status",
			},
			[]string{"provider", "status"}, // status: success, error, below_threshold
		),

		ClassifierDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wabot_classifier_duration_seconds",
				Help:    "Text classification duration in seconds by provider",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 8},
			},
			[]string{"provider"},
		),

		IntentResolvedTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "wabot_intent_resolved_total",
				Help: "Total number of resolved intents by intent and source path",
			},
			[]string{"intent", "path"}, // path: button, text
		),

		AuditEntriesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "wabot_audit_entries_total",
				Help: "Total number of classification audit entries by status",
			},
			[]string{"status"}, // status: recorded, error
		),

		AuditDroppedTotal: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "wabot_audit_dropped_total",
				Help: "Total number of audit entries dropped because the recorder was saturated or failing",
			},
		),

		RepositoryQueriesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "wabot_repository_queries_total",
				Help: "Total number of data provider queries by query and status",
			},
			[]string{"query", "status"}, // status: success, error
		),

		RepositoryEmptyResults: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "wabot_repository_empty_results_total",
				Help: "Total number of data provider queries that returned zero rows",
			},
			[]string{"query"},
		),

		RenderDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wabot_render_duration_seconds",
				Help:    "Attendance chart rendering duration in seconds by mode",
				Buckets: []float64{0.5, 1, 2, 5, 10, 15},
			},
			[]string{"mode"}, // mode: today, overall
		),

		SendTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "wabot_send_total",
				Help: "Total number of outbound messages by payload kind and status",
			},
			[]string{"kind", "status"}, // kind: text, menu, contacts, template, image
		),

		SendDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wabot_send_duration_seconds",
				Help:    "Outbound Graph API call duration in seconds by payload kind",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"kind"},
		),

		RateLimiterDropped: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "wabot_rate_limiter_dropped_total",
				Help: "Total number of events dropped by rate limiter",
			},
			[]string{"limiter_type"}, // limiter_type: user
		),
	}

	return m
}

// RecordWebhook records a processed webhook event
func (m *Metrics) RecordWebhook(eventType, status string, duration float64) {
	m.WebhookRequestsTotal.WithLabelValues(eventType, status).Inc()
	m.WebhookDurationSeconds.WithLabelValues(eventType).Observe(duration)
}

// RecordClassification records a text classification call
func (m *Metrics) RecordClassification(provider, status string, duration float64) {
	m.ClassifierRequestsTotal.WithLabelValues(provider, status).Inc()
	m.ClassifierDurationSeconds.WithLabelValues(provider).Observe(duration)
}

// RecordIntent records a resolved intent
func (m *Metrics) RecordIntent(intent, path string) {
	m.IntentResolvedTotal.WithLabelValues(intent, path).Inc()
}

// RecordAuditEntry records an audit recording attempt
func (m *Metrics) RecordAuditEntry(status string) {
	m.AuditEntriesTotal.WithLabelValues(status).Inc()
}

// RecordAuditDrop records an audit entry that was dropped
func (m *Metrics) RecordAuditDrop() {
	m.AuditDroppedTotal.Inc()
}

// RecordRepositoryQuery records a data provider query
func (m *Metrics) RecordRepositoryQuery(query, status string) {
	m.RepositoryQueriesTotal.WithLabelValues(query, status).Inc()
}

// RecordRepositoryEmpty records a query returning zero rows
func (m *Metrics) RecordRepositoryEmpty(query string) {
	m.RepositoryEmptyResults.WithLabelValues(query).Inc()
}

// RecordRender records a chart rendering round trip
func (m *Metrics) RecordRender(mode string, duration float64) {
	m.RenderDurationSeconds.WithLabelValues(mode).Observe(duration)
}

// RecordSend records an outbound message
func (m *Metrics) RecordSend(kind, status string, duration float64) {
	m.SendTotal.WithLabelValues(kind, status).Inc()
	m.SendDurationSeconds.WithLabelValues(kind).Observe(duration)
}

// RecordRateLimiterDrop records an event dropped by a rate limiter
func (m *Metrics) RecordRateLimiterDrop(limiterType string) {
	m.RateLimiterDropped.WithLabelValues(limiterType).Inc()
}
