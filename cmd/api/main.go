// Package main is the entry point for the briefing API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/telegram-copilot/briefing-api/internal/cache"
	"github.com/telegram-copilot/briefing-api/internal/config"
	"github.com/telegram-copilot/briefing-api/internal/events"
	"github.com/telegram-copilot/briefing-api/internal/handler"
	"github.com/telegram-copilot/briefing-api/internal/llm"
	"github.com/telegram-copilot/briefing-api/internal/middleware"
	"github.com/telegram-copilot/briefing-api/internal/service"
	"github.com/telegram-copilot/briefing-api/pkg/logger"
	"github.com/telegram-copilot/briefing-api/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting briefing API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "briefing-api", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect to Redis. The cache layer is fail-open, so a connection error
	// here only loses caching, never the service.
	redisClient, err := cache.NewClient(cfg.RedisURL)
	if err != nil {
		log.Error("invalid redis URL", zap.Error(err))
		os.Exit(1)
	}
	store := cache.NewStore(redisClient, cfg.CacheTTL, log)
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		log.Warn("redis unreachable, running without cache", zap.Error(err))
	}

	// Connect to NATS for generation events; optional.
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATSURL != "" {
		natsClient, err := events.Connect(events.Config{
			URL:   cfg.NATSURL,
			Token: cfg.NATSToken,
		}, log)
		if err != nil {
			log.Warn("failed to connect to NATS, events disabled", zap.Error(err))
		} else {
			defer natsClient.Close()

			jsPublisher := events.NewPublisher(natsClient, log)
			if err := jsPublisher.EnsureStream(ctx); err != nil {
				log.Warn("failed to ensure events stream", zap.Error(err))
			} else {
				publisher = jsPublisher
			}
		}
	}

	// Initialize LLM client
	var llmClient llm.Client
	switch {
	case cfg.AnthropicAPIKey != "":
		llmClient, err = llm.NewAnthropicClient(cfg.AnthropicAPIKey)
	case cfg.OpenAIAPIKey != "":
		llmClient, err = llm.NewOpenAIClient(cfg.OpenAIAPIKey)
	default:
		log.Error("no LLM API key configured, set ANTHROPIC_API_KEY or OPENAI_API_KEY")
		os.Exit(1)
	}
	if err != nil {
		log.Error("failed to create LLM client", zap.Error(err))
		os.Exit(1)
	}
	retryClient := llm.NewRetryClient(llmClient, log)

	log.Info("LLM client ready",
		zap.String("provider", llmClient.Name()),
		zap.String("model", cfg.Model),
	)

	// Initialize services
	briefingSvc := service.NewBriefingService(retryClient, store, publisher, cfg.Model, cfg.CacheTTL, log)
	summarySvc := service.NewSummaryService(retryClient, store, publisher, cfg.Model, cfg.CacheTTL, log)
	draftSvc := service.NewDraftService(retryClient, publisher, cfg.Model, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(store)
	briefingHandler := handler.NewBriefingHandler(briefingSvc, log)
	summaryHandler := handler.NewSummaryHandler(summarySvc, log)
	draftHandler := handler.NewDraftHandler(draftSvc, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		if cfg.JWTSecret != "" {
			r.Use(middleware.Auth(cfg.JWTSecret))
		}
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Route("/briefing", func(r chi.Router) {
			r.Post("/generate", briefingHandler.Generate)
			r.Post("/v2/generate", briefingHandler.GenerateV2)
			r.Delete("/cache", briefingHandler.ClearCache)
		})

		r.Route("/summary", func(r chi.Router) {
			r.Post("/generate", summaryHandler.Generate)
			r.Post("/batch", summaryHandler.GenerateBatch)
			r.Delete("/cache", summaryHandler.ClearCache)
		})

		r.Post("/draft/generate", draftHandler.Generate)
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
