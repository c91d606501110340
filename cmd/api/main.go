package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bimakw/staking-gateway/internal/app"
	"github.com/bimakw/staking-gateway/internal/application/services"
	"github.com/bimakw/staking-gateway/internal/config"
	"github.com/bimakw/staking-gateway/internal/infrastructure/cache"
	"github.com/bimakw/staking-gateway/internal/infrastructure/database"
	"github.com/bimakw/staking-gateway/internal/presentation/handlers"
	"github.com/bimakw/staking-gateway/internal/presentation/middleware"
	"github.com/bimakw/staking-gateway/internal/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg.Log.Level, cfg.Log.Format)
	defer logger.Sync()

	logger.Info("Starting staking-gateway API",
		zap.Int("port", cfg.API.Port),
	)

	// Tracing
	shutdownTracing, err := telemetry.Init(context.Background(), cfg.Telemetry, logger)
	if err != nil {
		logger.Fatal("Failed to initialise tracing", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}()

	txMetrics := middleware.NewTxMetrics(prometheus.DefaultRegisterer)
	notifiers := []services.Notifier{txMetrics}

	// Connect to Redis event bus (optional)
	var eventBus *cache.EventBus
	if cfg.Redis.Enabled {
		eventBus, err = cache.NewEventBus(cfg.Redis, logger)
		if err != nil {
			logger.Warn("Failed to connect to Redis, running without event stream", zap.Error(err))
			eventBus = nil
		} else {
			defer eventBus.Close()
			notifiers = append(notifiers, eventBus)
		}
	}

	// Connect to journal database (optional)
	var db *database.PostgresDB
	var journalService *services.JournalService
	if cfg.Database.Enabled {
		dbCtx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
		db, err = database.NewPostgresDB(dbCtx, cfg.Database, logger)
		cancel()
		if err != nil {
			logger.Warn("Failed to connect to database, running without journal", zap.Error(err))
			db = nil
		} else {
			defer db.Close()
			if err := db.EnsureSchema(context.Background()); err != nil {
				logger.Fatal("Failed to prepare journal schema", zap.Error(err))
			}
			journalService = services.NewJournalService(database.NewJournalRepo(db.DB()), logger)
			notifiers = append(notifiers, journalService)
		}
	}

	// Connect to node and build services
	gateway, err := app.New(cfg, logger, notifiers...)
	if err != nil {
		logger.Fatal("Failed to start gateway", zap.Error(err))
	}
	defer gateway.Close()

	// Create handlers
	dashboardHandler := handlers.NewDashboardHandler(gateway.Dashboard, logger)
	actionHandler := handlers.NewActionHandler(gateway.Transactions, logger)

	var dbChecker, eventsChecker handlers.HealthChecker
	if db != nil {
		dbChecker = db
	}
	if eventBus != nil {
		eventsChecker = eventBus
	}
	healthHandler := handlers.NewHealthHandler(gateway.Client, dbChecker, eventsChecker)

	// Setup router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(chimiddleware.Recoverer)

	// Health endpoints (no rate limiting)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Get("/live", healthHandler.Live)
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimiter(cfg.API.RateLimitRPS))

		dashboardHandler.RegisterRoutes(r)
		actionHandler.RegisterRoutes(r)
		if journalService != nil {
			handlers.NewJournalHandler(journalService, logger).RegisterRoutes(r)
		}
		if eventBus != nil {
			handlers.NewEventsHandler(eventBus, logger).RegisterRoutes(r)
		}
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	// Run server in goroutine
	go func() {
		logger.Info("API server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Received shutdown signal, shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func setupLogger(level, format string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	encoding := "json"
	if format == "console" {
		encoding = "console"
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         encoding,
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, _ := config.Build()
	return logger
}
