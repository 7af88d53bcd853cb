package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/luxetrack-api/config"
	"github.com/kendall-kelly/luxetrack-api/models"
	"github.com/kendall-kelly/luxetrack-api/services"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("Starting LuxeTrack API server...", zap.String("env", cfg.GoEnv))

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to open order store", zap.Error(err), zap.String("driver", cfg.StoreDriver))
	}
	defer closeStore()

	metrics := services.NewMetrics()

	// Malformed stored orders stop the server rather than being overwritten by the seed
	ledger := services.NewLedger(store, logger, metrics)
	if err := ledger.Load(ctx); err != nil {
		logger.Fatal("Failed to load orders", zap.Error(err))
	}

	model, err := newGenerativeModel(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to create Gemini client", zap.Error(err))
	}
	if model == nil {
		logger.Warn("GEMINI_API_KEY is not set; chat and vision will answer with fallback messages")
	}

	images, err := newImageService(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize image archive", zap.Error(err))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	app := &application{
		cfg:       cfg,
		logger:    logger,
		store:     store,
		ledger:    ledger,
		assistant: services.NewAssistant(model, cfg.AITimeout, logger, metrics),
		images:    images,
		metrics:   metrics,
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           setupRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server is running", zap.String("addr", "http://localhost"+server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()

	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down HTTP server", zap.Error(err))
	} else {
		logger.Info("HTTP server stopped gracefully")
	}
}

// openStore connects the configured order store and returns a function that releases it
func openStore(ctx context.Context, cfg *config.Config) (services.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreDriverRedis:
		client, err := config.ConnectRedis(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return services.NewRedisStore(client), func() { _ = client.Close() }, nil

	default:
		db, err := config.ConnectDatabase(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.AutoMigrate(&models.KVEntry{}); err != nil {
			return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}

		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return services.NewGormStore(db), closeDB, nil
	}
}

// newGenerativeModel returns nil without an API key so the assistant runs in fallback mode
func newGenerativeModel(ctx context.Context, cfg *config.Config) (services.GenerativeModel, error) {
	if !cfg.AIEnabled() {
		return nil, nil
	}
	return services.NewGeminiService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
}

// newImageService returns nil when no S3 bucket is configured
func newImageService(ctx context.Context, cfg *config.Config) (services.ImageService, error) {
	if !cfg.ImageArchiveEnabled() {
		return nil, nil
	}

	s3Service, err := services.NewS3Service(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return services.NewImageService(s3Service), nil
}
