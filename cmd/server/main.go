package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/rivermark/aqualink/internal"
	"github.com/rivermark/aqualink/internal/cart"
	"github.com/rivermark/aqualink/internal/events"
	"github.com/rivermark/aqualink/internal/handler/api"
	"github.com/rivermark/aqualink/internal/middleware"
	"github.com/rivermark/aqualink/internal/repository"
	"github.com/rivermark/aqualink/internal/service"
	"github.com/rivermark/aqualink/internal/telemetry"
	"github.com/rivermark/aqualink/internal/worker"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize error tracking
	sentryCleanup, err := telemetry.InitSentry(telemetry.SentryConfig{
		DSN:         cfg.SentryDsn,
		Environment: cfg.Env,
	}, logger)
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	defer sentryCleanup()

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	// Verify database connection
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Initialize repository
	repo := repository.NewPostgres(pool)

	// Initialize event publisher. Dev runs without a broker and captures
	// events in process.
	var publisher events.Publisher
	if cfg.NatsUrl != "" {
		logger.Info("Connecting to NATS...", "url", cfg.NatsUrl)
		natsPublisher, err := events.NewNATSPublisher(cfg.NatsUrl)
		if err != nil {
			return fmt.Errorf("nats connection failed: %w", err)
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
		logger.Info("NATS connection established")
	} else {
		logger.Warn("NATS_URL not set, capturing events in process")
		publisher = events.NewCapture()
	}

	// Initialize business metrics
	businessMetrics := telemetry.NewBusinessMetrics("aqualink")

	// Initialize services
	orderService := service.NewOrderService(repo, publisher, service.Config{
		MaxLineItemQty: int32(cfg.MaxLineItemQty),
		Metrics:        businessMetrics,
	}, logger)
	inventoryService := service.NewInventoryService(repo, logger)

	// Initialize cart storage. Dev runs without Redis and keeps carts in
	// memory.
	var cartStorage cart.Storage
	if cfg.RedisUrl != "" {
		logger.Info("Connecting to Redis...")
		redisStorage, err := cart.NewRedisStorage(ctx, cfg.RedisUrl)
		if err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		defer redisStorage.Close()
		cartStorage = redisStorage
		logger.Info("Redis connection established")
	} else {
		logger.Warn("REDIS_URL not set, carts will not survive restarts")
		cartStorage = cart.NewMemoryStorage()
	}

	placer := service.NewCheckoutPlacer(orderService, businessMetrics)
	registry := cart.NewRegistry(cartStorage, placer, logger)

	// Start low-stock sweep worker
	lowStockWorker := worker.NewLowStockWorker(inventoryService, publisher, worker.Config{
		Threshold: int32(cfg.LowStockThreshold),
		Metrics:   businessMetrics,
	}, logger)
	go func() {
		if err := lowStockWorker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("low-stock worker stopped", "error", err)
		}
	}()

	// Initialize Prometheus metrics
	metrics := middleware.NewMetrics("aqualink")

	// Build the HTTP server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = api.NewHTTPErrorHandler(logger)
	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(metrics.Middleware)

	e.GET("/metrics", metrics.Handler())

	api.RegisterRoutes(e, api.Deps{
		Cart:      api.NewCartHandler(registry, cfg.SecureCookies),
		Orders:    api.NewOrderHandler(orderService),
		Inventory: api.NewInventoryHandler(inventoryService),
	})

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Port)
	go func() {
		logger.Info("Starting server", "address", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info("Shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
