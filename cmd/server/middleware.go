// Package main provides the campus WhatsApp assistant server entry point.
package main

import (
	"time"

	"github.com/campuskit/campus-wabot-go/internal/logger"
	"github.com/gin-gonic/gin"
)

// securityHeadersMiddleware hardens every response. The server only
// serves the webhook, probes, and /metrics, so the strictest defaults
// apply everywhere.
func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		c.Header("Content-Security-Policy", "default-src 'none'")
		c.Next()
	}
}

// loggingMiddleware logs each request. Kubernetes probe endpoints are
// skipped to keep the stream readable; webhook deliveries log at info
// since they are the traffic that matters.
func loggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	httpLog := log.WithModule("http")
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/healthz" || path == "/ready" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := httpLog.WithField("method", c.Request.Method).
			WithField("path", path).
			WithField("status", status).
			WithField("duration_ms", time.Since(start).Milliseconds()).
			WithField("ip", c.ClientIP())

		switch {
		case len(c.Errors) > 0:
			entry.WithField("errors", c.Errors.String()).Error("Request failed")
		case status >= 500:
			entry.Error("Request failed")
		case status >= 400:
			// Bad webhook signatures land here; they are probes, not bugs.
			entry.Warn("Request rejected")
		case path == "/webhook":
			entry.Info("Request completed")
		default:
			entry.Debug("Request completed")
		}
	}
}
