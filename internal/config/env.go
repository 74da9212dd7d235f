// Package config defines environment variable keys for configuration.
package config

//nolint:gosec // Environment variable keys are not credentials.
const (
	// WhatsApp Cloud API (Required)
	EnvWAAccessToken   = "WABOT_WA_ACCESS_TOKEN"
	EnvWAPhoneNumberID = "WABOT_WA_PHONE_NUMBER_ID"
	EnvWAVerifyToken   = "WABOT_WA_VERIFY_TOKEN"
	EnvWAAppSecret     = "WABOT_WA_APP_SECRET"
	EnvGraphAPIBaseURL = "WABOT_GRAPH_API_BASE_URL"

	// Server
	EnvPort            = "WABOT_PORT"
	EnvLogLevel        = "WABOT_LOG_LEVEL"
	EnvShutdownTimeout = "WABOT_SHUTDOWN_TIMEOUT"

	// Data
	EnvDataDir = "WABOT_DATA_DIR"

	// Webhook
	EnvWebhookTimeout      = "WABOT_WEBHOOK_TIMEOUT"
	EnvMaxEventsPerWebhook = "WABOT_MAX_EVENTS_PER_WEBHOOK"

	// Rate Limits
	EnvUserRateBurst  = "WABOT_USER_RATE_BURST"
	EnvUserRateRefill = "WABOT_USER_RATE_REFILL"

	// Classifier Feature
	EnvNLUProviders        = "WABOT_NLU_PROVIDERS"
	EnvGeminiAPIKey        = "WABOT_GEMINI_API_KEY"
	EnvGroqAPIKey          = "WABOT_GROQ_API_KEY"
	EnvGeminiModel         = "WABOT_GEMINI_MODEL"
	EnvGroqModel           = "WABOT_GROQ_MODEL"
	EnvConfidenceThreshold = "WABOT_CONFIDENCE_THRESHOLD"

	// Object Storage (R2)
	EnvR2Enabled         = "WABOT_R2_ENABLED"
	EnvR2Endpoint        = "WABOT_R2_ENDPOINT"
	EnvR2AccessKeyID     = "WABOT_R2_ACCESS_KEY_ID"
	EnvR2SecretAccessKey = "WABOT_R2_SECRET_ACCESS_KEY"
	EnvR2BucketName      = "WABOT_R2_BUCKET_NAME"
	EnvR2AuditPrefix     = "WABOT_R2_AUDIT_PREFIX"
	EnvR2ResultPrefix    = "WABOT_R2_RESULT_PREFIX"
	EnvR2PresignTTL      = "WABOT_R2_PRESIGN_TTL"

	// Attendance Chart Renderer
	EnvChartServiceURL = "WABOT_CHART_SERVICE_URL"

	// Sentry Feature
	EnvSentryEnabled     = "WABOT_SENTRY_ENABLED"
	EnvSentryDSN         = "WABOT_SENTRY_DSN"
	EnvSentryEnvironment = "WABOT_SENTRY_ENVIRONMENT"
	EnvSentrySampleRate  = "WABOT_SENTRY_SAMPLE_RATE"

	// Better Stack Feature
	EnvBetterStackToken    = "WABOT_BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "WABOT_BETTERSTACK_ENDPOINT"

	// Metrics Auth Feature
	EnvMetricsUsername = "WABOT_METRICS_USERNAME"
	EnvMetricsPassword = "WABOT_METRICS_PASSWORD"
)
