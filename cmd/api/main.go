package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/saturnino-fabrica-de-software/validoc/internal/alert"
	"github.com/saturnino-fabrica-de-software/validoc/internal/analyzer"
	"github.com/saturnino-fabrica-de-software/validoc/internal/api"
	"github.com/saturnino-fabrica-de-software/validoc/internal/audit"
	"github.com/saturnino-fabrica-de-software/validoc/internal/cache"
	"github.com/saturnino-fabrica-de-software/validoc/internal/capability"
	"github.com/saturnino-fabrica-de-software/validoc/internal/config"
	"github.com/saturnino-fabrica-de-software/validoc/internal/database"
	"github.com/saturnino-fabrica-de-software/validoc/internal/dedup"
	"github.com/saturnino-fabrica-de-software/validoc/internal/metrics"
	"github.com/saturnino-fabrica-de-software/validoc/internal/repository"
	"github.com/saturnino-fabrica-de-software/validoc/internal/service"
	"github.com/saturnino-fabrica-de-software/validoc/internal/webhook"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting Validoc API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := database.NewPgxPool(ctx, database.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	// External capabilities
	detector, err := capability.NewFaceDetector(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create face detector: %w", err)
	}

	engine, err := capability.NewOCREngine(cfg)
	if err != nil {
		return fmt.Errorf("failed to create OCR engine: %w", err)
	}

	scorer := capability.NewVisionScorer(cfg)

	// OCR results are content addressed, so cache them across retries of the
	// same upload.
	pgCache := cache.NewPGCache(pool)
	if cfg.OCRCacheTTL > 0 {
		engine = cache.NewCachedOCREngine(engine, pgCache, cfg.OCRCacheTTL, logger)
	}

	// Repositories
	hashRepo := repository.NewDocumentHashRepository(pool)
	draftRepo := repository.NewKYCDraftRepository(pool)

	// Metrics: in-process collector flushed to the database periodically
	collector := metrics.NewCollector()
	metricsRepo := metrics.NewRepository(pool)
	aggregator := metrics.NewAggregator(collector, metricsRepo, logger, cfg.MetricsInterval)
	go aggregator.Start(ctx)

	// Outbound events with a retry queue
	webhookSvc := webhook.NewService(pool, logger)
	webhookWorker := webhook.NewWorker(pool, webhookSvc, logger)
	go webhookWorker.Run(ctx)

	// Fraud spike alerting over the aggregated metrics; workers stop with the
	// signal context.
	alertRepo := alert.NewRepository(pool)
	alertEngine := alert.NewEngine(metricsRepo)
	alertNotifier := alert.NewNotifier(webhookSvc, logger)
	alertWorker := alert.NewWorker(alertRepo, alertEngine, alertNotifier, logger, cfg.AlertInterval)
	go alertWorker.Start(ctx)

	// Validation pipeline
	pipeline := service.NewPipeline(
		analyzer.NewPhotoAnalyzer(detector, scorer, logger, cfg.CapabilityTimeout),
		analyzer.NewDocClassifier(engine, logger, cfg.CapabilityTimeout),
		dedup.NewGate(hashRepo, logger),
		draftRepo,
		collector,
		logger,
		cfg.MaxUploadSize,
	).
		WithEvents(webhookSvc).
		WithAudit(audit.NewSlogLogger(logger))

	// Setup router
	router := api.NewRouter(logger, &api.Dependencies{
		Pipeline: pipeline,
		DB:       pool,
	})
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	<-shutdownCtx.Done()
	logger.Info("server stopped")

	return nil
}
