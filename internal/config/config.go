// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// the WhatsApp transport, the classifier, object storage, and rate limits.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// WhatsApp Cloud API Configuration
	WAAccessToken   string // Bearer token for the Graph API
	WAPhoneNumberID string // Business phone number id used in send URLs
	WAVerifyToken   string // Token echoed during webhook verification handshake
	WAAppSecret     string // Secret for X-Hub-Signature-256 validation
	GraphAPIBaseURL string // Graph API base (default: https://graph.facebook.com/v19.0)

	// Classifier Configuration
	NLUProviders        []string // Ordered provider list: "gemini", "groq"
	GeminiAPIKey        string
	GroqAPIKey          string
	GeminiModel         string  // Empty = nlu package default
	GroqModel           string  // Empty = nlu package default
	ConfidenceThreshold float64 // Log-probability gate for text classification

	// Object Storage (R2) Configuration
	R2Enabled         bool
	R2Endpoint        string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2AuditPrefix     string        // Key prefix for classification audit logs
	R2ResultPrefix    string        // Key prefix for stored result sheets
	R2PresignTTL      time.Duration // Lifetime of presigned document links

	// Attendance Chart Renderer
	ChartServiceURL string // HTTP endpoint that turns attendance rows into a PNG

	// Observability
	SentryEnabled     bool
	SentryDSN         string
	SentryEnvironment string
	SentrySampleRate  float64

	BetterStackToken    string
	BetterStackEndpoint string

	MetricsUsername string
	MetricsPassword string // Empty = no auth on /metrics

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Data Configuration
	DataDir string // Directory for the SQLite database

	// Bot Configuration (embedded)
	Bot BotConfig
}

// BotConfig holds dispatcher-specific configuration
type BotConfig struct {
	// Timeouts
	WebhookTimeout time.Duration // Timeout for processing one inbound event

	// Rate Limits (Token Bucket Algorithm)
	UserRateLimitBurst        float64 // Maximum burst tokens per sender
	UserRateLimitRefillPerSec float64 // Tokens refilled per second

	// WhatsApp Platform Constraints
	MaxMenuOptions      int // Interactive reply buttons per message (platform limit: 3)
	MaxTextLength       int // Message body limit (platform limit: 4096)
	MaxEventsPerWebhook int // Events accepted per webhook batch
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		WAAccessToken:   getEnv(EnvWAAccessToken, ""),
		WAPhoneNumberID: getEnv(EnvWAPhoneNumberID, ""),
		WAVerifyToken:   getEnv(EnvWAVerifyToken, ""),
		WAAppSecret:     getEnv(EnvWAAppSecret, ""),
		GraphAPIBaseURL: getEnv(EnvGraphAPIBaseURL, "https://graph.facebook.com/v19.0"),

		NLUProviders:        getListEnv(EnvNLUProviders, []string{"gemini", "groq"}),
		GeminiAPIKey:        getEnv(EnvGeminiAPIKey, ""),
		GroqAPIKey:          getEnv(EnvGroqAPIKey, ""),
		GeminiModel:         getEnv(EnvGeminiModel, ""),
		GroqModel:           getEnv(EnvGroqModel, ""),
		ConfidenceThreshold: getFloatEnv(EnvConfidenceThreshold, DefaultConfidenceThreshold),

		R2Enabled:         getBoolEnv(EnvR2Enabled, false),
		R2Endpoint:        getEnv(EnvR2Endpoint, ""),
		R2AccessKeyID:     getEnv(EnvR2AccessKeyID, ""),
		R2SecretAccessKey: getEnv(EnvR2SecretAccessKey, ""),
		R2BucketName:      getEnv(EnvR2BucketName, ""),
		R2AuditPrefix:     getEnv(EnvR2AuditPrefix, "audit/classifications"),
		R2ResultPrefix:    getEnv(EnvR2ResultPrefix, "documents/results"),
		R2PresignTTL:      getDurationEnv(EnvR2PresignTTL, 24*time.Hour),

		ChartServiceURL: getEnv(EnvChartServiceURL, ""),

		SentryEnabled:     getBoolEnv(EnvSentryEnabled, false),
		SentryDSN:         getEnv(EnvSentryDSN, ""),
		SentryEnvironment: getEnv(EnvSentryEnvironment, "production"),
		SentrySampleRate:  getFloatEnv(EnvSentrySampleRate, 1.0),

		BetterStackToken:    getEnv(EnvBetterStackToken, ""),
		BetterStackEndpoint: getEnv(EnvBetterStackEndpoint, ""),

		MetricsUsername: getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword: getEnv(EnvMetricsPassword, ""),

		Port:            getEnv(EnvPort, "8000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, 30*time.Second),

		DataDir: getEnv(EnvDataDir, "./data"),

		Bot: BotConfig{
			WebhookTimeout:            getDurationEnv(EnvWebhookTimeout, WebhookProcessing),
			UserRateLimitBurst:        getFloatEnv(EnvUserRateBurst, 15.0),
			UserRateLimitRefillPerSec: getFloatEnv(EnvUserRateRefill, 0.1), // 1 per 10s
			MaxMenuOptions:            WAMaxReplyButtons,
			MaxTextLength:             WAMaxTextLength,
			MaxEventsPerWebhook:       getIntEnv(EnvMaxEventsPerWebhook, 100),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.WAAccessToken == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvWAAccessToken))
	}
	if c.WAPhoneNumberID == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvWAPhoneNumberID))
	}
	if c.WAVerifyToken == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvWAVerifyToken))
	}
	if c.WAAppSecret == "" {
		errs = append(errs, fmt.Errorf("%s is required", EnvWAAppSecret))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("DATA_DIR is required"))
	}
	if c.ConfidenceThreshold >= 0 {
		errs = append(errs, fmt.Errorf("%s must be a negative log-probability, got %v", EnvConfidenceThreshold, c.ConfidenceThreshold))
	}
	if c.R2Enabled {
		if c.R2Endpoint == "" || c.R2AccessKeyID == "" || c.R2SecretAccessKey == "" || c.R2BucketName == "" {
			errs = append(errs, errors.New("R2 endpoint, credentials, and bucket are required when R2 is enabled"))
		}
	}
	if err := c.Bot.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("bot config: %w", err))
	}

	return errors.Join(errs...)
}

// Validate checks bot configuration invariants
func (b *BotConfig) Validate() error {
	var errs []error

	if b.WebhookTimeout <= 0 {
		errs = append(errs, fmt.Errorf("webhook timeout must be positive, got %v", b.WebhookTimeout))
	}
	if b.MaxMenuOptions < 1 || b.MaxMenuOptions > WAMaxReplyButtons {
		errs = append(errs, fmt.Errorf("max menu options must be 1..%d, got %d", WAMaxReplyButtons, b.MaxMenuOptions))
	}
	if b.UserRateLimitBurst <= 0 {
		errs = append(errs, fmt.Errorf("user rate limit burst must be positive, got %v", b.UserRateLimitBurst))
	}
	if b.UserRateLimitRefillPerSec <= 0 {
		errs = append(errs, fmt.Errorf("user rate limit refill must be positive, got %v", b.UserRateLimitRefillPerSec))
	}
	if b.MaxEventsPerWebhook <= 0 {
		errs = append(errs, fmt.Errorf("max events per webhook must be positive, got %d", b.MaxEventsPerWebhook))
	}

	return errors.Join(errs...)
}

// HasNLUProvider returns true if at least one classifier provider is configured.
func (c *Config) HasNLUProvider() bool {
	return c.GeminiAPIKey != "" || c.GroqAPIKey != ""
}

// SQLitePath returns the full path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "campus.db")
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getListEnv retrieves a comma-separated list with fallback to default value
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
