// Package main is the entry point for the API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/driftwood-collective/driftdeck/internal/api"
	"github.com/driftwood-collective/driftdeck/internal/auth"
	"github.com/driftwood-collective/driftdeck/internal/config"
	"github.com/driftwood-collective/driftdeck/internal/db"
	"github.com/driftwood-collective/driftdeck/internal/deck"
	"github.com/driftwood-collective/driftdeck/internal/health"
	"github.com/driftwood-collective/driftdeck/internal/middleware"
	"github.com/driftwood-collective/driftdeck/internal/recorder"
	"github.com/driftwood-collective/driftdeck/internal/saved"
	"github.com/driftwood-collective/driftdeck/internal/source"
	"github.com/driftwood-collective/driftdeck/internal/viewed"
)

func main() {
	help := flag.Bool("help", false, "display help message")
	configFile := flag.String("config", "", "path to optional YAML config file")
	flag.Parse()

	if *help {
		fmt.Println("Driftdeck API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configFile)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, "config:", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "config", cfg.LogSummary())

	ctx := context.Background()

	// Database
	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	// Stores
	var viewedStore viewed.Store = viewed.NewPostgresStore(conn, logger)
	savedStore := saved.NewPostgresStore(conn, logger)
	eventSource := source.NewPostgresSource(conn, logger)

	// Optional Redis cache in front of the viewed history
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer redisClient.Close()
		viewedStore = viewed.NewCachedStore(viewedStore, redisClient, logger)
		logger.Info("viewed-history cache enabled", "redis_addr", cfg.RedisAddr)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	httpMetrics := middleware.NewMetrics()
	recorderMetrics := recorder.NewMetrics()
	deckMetrics := deck.NewMetrics()
	if err := httpMetrics.Register(registry); err != nil {
		logger.Error("failed to register http metrics", "error", err)
		os.Exit(1)
	}
	if err := recorderMetrics.Register(registry); err != nil {
		logger.Error("failed to register recorder metrics", "error", err)
		os.Exit(1)
	}
	if err := deckMetrics.Register(registry); err != nil {
		logger.Error("failed to register deck metrics", "error", err)
		os.Exit(1)
	}

	// Core services
	decisionRecorder := recorder.NewRecorder(viewedStore, savedStore, recorderMetrics, logger)
	safeSource := source.NewSafeSource(eventSource, logger)
	jwtService := auth.NewJWTService(cfg.JWTSecret)

	// Handlers
	authHandlers := api.NewAuthHandlers(jwtService, cfg.Env != "production", logger)
	discoveryHandlers := api.NewDiscoveryHandlers(eventSource, viewedStore, logger)
	decisionHandlers := api.NewDecisionHandlers(decisionRecorder, logger)
	savedHandlers := api.NewSavedHandlers(savedStore, logger)
	viewedHandlers := api.NewViewedHandlers(viewedStore, logger)
	deckHandlers := api.NewDeckSessionHandlers(viewedStore, safeSource, decisionRecorder, deckMetrics,
		api.DeckSessionConfig{
			LowWaterMark:      cfg.DeckLowWaterMark,
			SettleDelay:       cfg.SettleDelay(),
			VelocityThreshold: cfg.DeckVelocityThreshold,
			ViewportWidth:     cfg.DeckViewportWidth,
		}, logger)

	healthChecks := api.NewHealthHandlers(api.HealthHandlersConfig{
		DBChecker:    health.NewDBChecker(conn),
		RedisChecker: redisCheckerOrNil(redisClient),
	})

	// Routes
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthChecks.Health)
	mux.HandleFunc("/ready", healthChecks.Ready)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/auth/token", authHandlers.MintToken)

	requireAuth := api.RequireAuth(jwtService)
	mux.Handle("/discovery/candidates", requireAuth(http.HandlerFunc(discoveryHandlers.GetCandidates)))
	mux.Handle("/events/", requireAuth(eventsRouter(discoveryHandlers, decisionHandlers)))
	mux.Handle("/saved-events", requireAuth(http.HandlerFunc(savedHandlers.List)))
	mux.Handle("/saved-events/", requireAuth(savedRouter(savedHandlers)))
	mux.Handle("/viewed-events/stats", requireAuth(http.HandlerFunc(viewedHandlers.Stats)))
	mux.Handle("/deck/ws", requireAuth(http.HandlerFunc(deckHandlers.Session)))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// Only handle exact root path, everything else returns 404
		if r.URL.Path != "/" {
			ctx := middleware.SetErrorCode(r.Context(), api.ErrCodeNotFound)
			api.WriteError(w, ctx, http.StatusNotFound, api.ErrCodeNotFound, "The requested resource was not found")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"service":"driftdeck-api","version":"0.1.0"}`)); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	// Apply middleware: RequestID -> Metrics -> Logging
	handler := middleware.RequestID(middleware.HTTPMetrics(httpMetrics)(middleware.Logging(logger)(mux)))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// eventsRouter dispatches /events/{id} and /events/{id}/decision by suffix.
func eventsRouter(disc *api.DiscoveryHandlers, dec *api.DecisionHandlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/decision") {
			dec.RecordDecision(w, r)
			return
		}
		disc.GetEvent(w, r)
	}
}

// savedRouter dispatches /saved-events/{id} and /saved-events/{id}/notes
// by method and suffix.
func savedRouter(h *api.SavedHandlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			h.UpdateNotes(w, r)
			return
		}
		h.Unsave(w, r)
	}
}

// redisCheckerOrNil avoids a typed-nil health checker when Redis is not
// configured.
func redisCheckerOrNil(client *redis.Client) api.HealthChecker {
	if client == nil {
		return nil
	}
	return health.NewRedisChecker(client)
}
