// Package main provides the campus WhatsApp assistant server entry point.
package main

import (
	"net/http"

	"github.com/campuskit/campus-wabot-go/internal/config"
	"github.com/campuskit/campus-wabot-go/internal/storage"
	"github.com/campuskit/campus-wabot-go/internal/webhook"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRoutes configures all HTTP routes
func setupRoutes(router *gin.Engine, cfg *config.Config, webhookHandler *webhook.Handler, db *storage.DB, registry *prometheus.Registry) {
	rootHandler := func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "https://github.com/campuskit/campus-wabot-go")
	}
	router.GET("/", rootHandler)
	router.HEAD("/", rootHandler)

	// Liveness probe - checks only that the process is running.
	// This should NEVER check dependencies.
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)

	// Readiness probe - full dependency check.
	readyHandler := func(c *gin.Context) {
		if err := db.Ready(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": err.Error(),
			})
			return
		}

		studentCount, _ := db.CountStudents(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"status":   "ready",
			"database": "connected",
			"students": studentCount,
		})
	}
	router.GET("/ready", readyHandler)
	router.HEAD("/ready", readyHandler)

	// Graph API webhook: GET for the verification handshake, POST for
	// signed notifications.
	router.GET("/webhook", webhookHandler.Verify)
	router.POST("/webhook", webhookHandler.Handle)

	// Prometheus metrics endpoint, basic auth when a password is set.
	metricsHandler := gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if cfg.MetricsPassword != "" {
		authorized := router.Group("/", gin.BasicAuth(gin.Accounts{
			cfg.MetricsUsername: cfg.MetricsPassword,
		}))
		authorized.GET("/metrics", metricsHandler)
	} else {
		router.GET("/metrics", metricsHandler)
	}
}
