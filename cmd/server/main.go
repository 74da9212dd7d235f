// Package main provides the campus WhatsApp assistant server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campuskit/campus-wabot-go/internal/audit"
	"github.com/campuskit/campus-wabot-go/internal/bot"
	"github.com/campuskit/campus-wabot-go/internal/buildinfo"
	"github.com/campuskit/campus-wabot-go/internal/config"
	"github.com/campuskit/campus-wabot-go/internal/dispatch"
	"github.com/campuskit/campus-wabot-go/internal/intent"
	"github.com/campuskit/campus-wabot-go/internal/logger"
	"github.com/campuskit/campus-wabot-go/internal/metrics"
	"github.com/campuskit/campus-wabot-go/internal/modules/attendance"
	"github.com/campuskit/campus-wabot-go/internal/modules/contacts"
	"github.com/campuskit/campus-wabot-go/internal/modules/menus"
	"github.com/campuskit/campus-wabot-go/internal/modules/result"
	"github.com/campuskit/campus-wabot-go/internal/modules/schedule"
	"github.com/campuskit/campus-wabot-go/internal/nlu"
	"github.com/campuskit/campus-wabot-go/internal/objstore"
	"github.com/campuskit/campus-wabot-go/internal/render"
	"github.com/campuskit/campus-wabot-go/internal/sentry"
	"github.com/campuskit/campus-wabot-go/internal/storage"
	"github.com/campuskit/campus-wabot-go/internal/wamsg"
	"github.com/campuskit/campus-wabot-go/internal/webhook"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, logger.Options{
		BetterStackToken:    cfg.BetterStackToken,
		BetterStackEndpoint: cfg.BetterStackEndpoint,
	})
	log.WithField("version", buildinfo.Version).Info("Starting campus assistant server")

	if cfg.SentryEnabled {
		if err := sentry.Initialize(sentry.Config{
			DSN:         cfg.SentryDSN,
			Environment: cfg.SentryEnvironment,
			Release:     buildinfo.Version,
			SampleRate:  cfg.SentrySampleRate,
		}); err != nil {
			log.WithError(err).Warn("Failed to initialize Sentry, error tracking disabled")
		} else if sentry.IsEnabled() {
			log.Info("Sentry initialized")
		}
	}

	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer func() { _ = db.Close() }()
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())

	m := metrics.New(registry)
	db.SetMetrics(m)
	log.Info("Metrics initialized")

	// Object store: result sheets, rendered attendance images, audit log.
	var store objstore.Store
	if cfg.R2Enabled {
		client, err := objstore.New(context.Background(), objstore.Config{
			Endpoint:    cfg.R2Endpoint,
			AccessKeyID: cfg.R2AccessKeyID,
			SecretKey:   cfg.R2SecretAccessKey,
			BucketName:  cfg.R2BucketName,
		})
		if err != nil {
			log.WithError(err).Fatal("Failed to create object store client")
		}
		store = client
		log.WithField("bucket", cfg.R2BucketName).Info("Object store connected")
	} else {
		log.Info("Object store disabled, document delivery and audit log off")
	}

	var auditRecorder audit.Recorder = audit.Nop{}
	if store != nil {
		recorder, err := audit.NewR2Recorder(audit.Config{
			Store:     store,
			KeyPrefix: cfg.R2AuditPrefix,
			Logger:    log,
			Metrics:   m,
		})
		if err != nil {
			log.WithError(err).Warn("Failed to create audit recorder, classification audit disabled")
		} else {
			auditRecorder = recorder
		}
	}
	defer auditRecorder.Close()

	textClassifier := buildTextClassifier(cfg, m, log)

	classifier := intent.New(intent.Config{
		Text:                textClassifier,
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		Timeout:             config.ClassifierRequest,
		Audit:               auditRecorder,
		Logger:              log,
		Metrics:             m,
	})

	waClient, err := wamsg.NewClient(wamsg.ClientConfig{
		BaseURL:     cfg.GraphAPIBaseURL,
		PhoneID:     cfg.WAPhoneNumberID,
		AccessToken: cfg.WAAccessToken,
		Timeout:     config.OutboundSend,
		Logger:      log,
		Metrics:     m,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create WhatsApp client")
	}

	var renderer render.Renderer
	if cfg.ChartServiceURL != "" && store != nil {
		renderer, err = render.New(render.Config{
			ServiceURL: cfg.ChartServiceURL,
			Store:      store,
			KeyPrefix:  cfg.R2ResultPrefix,
			PresignTTL: cfg.R2PresignTTL,
			Timeout:    config.RenderRequest,
			Logger:     log,
			Metrics:    m,
		})
		if err != nil {
			log.WithError(err).Warn("Failed to create chart renderer, attendance falls back to text")
		}
	} else {
		log.Info("Chart renderer disabled, attendance served as text")
	}

	router, err := buildRouter(cfg, db, store, renderer, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to build action router")
	}

	processor, err := bot.New(bot.Config{
		Sessions:   db,
		Classifier: classifier,
		Router:     router,
		Sender:     waClient,
		Logger:     log,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create event processor")
	}

	webhookHandler := webhook.NewHandler(webhook.HandlerConfig{
		VerifyToken: cfg.WAVerifyToken,
		AppSecret:   cfg.WAAppSecret,
		BotConfig:   &cfg.Bot,
		Processor:   processor,
		ReadMarker:  waClient,
		Metrics:     m,
		Logger:      log,
	})
	log.Info("Webhook handler created")

	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	if sentry.IsEnabled() {
		engine.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	engine.Use(securityHeadersMiddleware())
	engine.Use(loggingMiddleware(log))

	setupRoutes(engine, cfg, webhookHandler, db, registry)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      engine,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := webhookHandler.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("Timeout waiting for in-flight events")
		}
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("Server error")
	}
	if err := db.Close(); err != nil {
		log.WithError(err).Error("Failed to close database")
	}
	if sentry.IsEnabled() {
		sentry.Flush(2 * time.Second)
	}

	log.Info("Server stopped")
}

// buildTextClassifier assembles the provider chain in configured order.
// Returns nil when no provider has credentials; text classification then
// degrades to the unrecognized intent.
func buildTextClassifier(cfg *config.Config, m *metrics.Metrics, log *logger.Logger) nlu.TextClassifier {
	labels := intent.Labels()
	var chain []nlu.TextClassifier

	for _, provider := range cfg.NLUProviders {
		switch provider {
		case "gemini":
			if cfg.GeminiAPIKey == "" {
				continue
			}
			c, err := nlu.NewGeminiClassifier(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, labels)
			if err != nil {
				log.WithError(err).Warn("Failed to create Gemini classifier")
				continue
			}
			if c != nil {
				chain = append(chain, c)
			}
		case "groq":
			if cfg.GroqAPIKey == "" {
				continue
			}
			c, err := nlu.NewGroqClassifier(cfg.GroqAPIKey, cfg.GroqModel, labels)
			if err != nil {
				log.WithError(err).Warn("Failed to create Groq classifier")
				continue
			}
			if c != nil {
				chain = append(chain, c)
			}
		default:
			log.WithField("provider", provider).Warn("Unknown classifier provider, skipping")
		}
	}

	if len(chain) == 0 {
		log.Warn("No classifier provider configured, free-text messages resolve to unrecognized")
		return nil
	}

	fallback := nlu.NewFallbackClassifier(m, chain...)
	log.WithField("providers", len(chain)).Info("Text classifier ready")
	return fallback
}

// buildRouter binds every intent to its action handler.
func buildRouter(cfg *config.Config, db *storage.DB, store objstore.Store, renderer render.Renderer, log *logger.Logger) (*dispatch.Router, error) {
	menu := menus.New()
	resultHandler := result.New(result.Config{
		Repository: db,
		Store:      store,
		KeyPrefix:  cfg.R2ResultPrefix,
		PresignTTL: cfg.R2PresignTTL,
		Logger:     log,
	})
	attendanceHandler := attendance.New(attendance.Config{
		Repository: db,
		Renderer:   renderer,
	})
	contactsHandler := contacts.New(db)
	scheduleHandler := schedule.New(db)

	return dispatch.New(map[intent.Intent]dispatch.Action{
		intent.Greeting:          menu.Greeting,
		intent.Help:              menu.Help,
		intent.ShowResult:        resultHandler.Handle,
		intent.ShowAttendance:    attendanceHandler.Handle,
		intent.ShowSchedule:      scheduleHandler.Handle,
		intent.ContactMentor:     contactsHandler.Mentor,
		intent.ContactDepartment: contactsHandler.Department,
		intent.ContactAuthority:  contactsHandler.Authority,
		intent.ContactFaculty:    contactsHandler.Faculty,
		intent.MoreOptions:       menu.MoreOptions,
		intent.UsageExample:      menu.UsageExample,
		intent.Unrecognized:      menu.NotUnderstood,
	})
}
