package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/stockledger/internal/analytics"
	"github.com/andresuchdata/stockledger/internal/api"
	"github.com/andresuchdata/stockledger/internal/cache"
	"github.com/andresuchdata/stockledger/internal/config"
	"github.com/andresuchdata/stockledger/internal/insight"
	"github.com/andresuchdata/stockledger/internal/ledger"
	"github.com/andresuchdata/stockledger/internal/reports"
	"github.com/andresuchdata/stockledger/internal/repository"
	"github.com/andresuchdata/stockledger/internal/service"
	"github.com/andresuchdata/stockledger/internal/storage"
	"github.com/andresuchdata/stockledger/pkg/logger"
	"github.com/gin-gonic/gin"
)

const reportQuotaBytes = 5 << 20

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	level := cfg.Server.LogLevel
	if level == "" {
		level = cfg.Server.Mode
	}
	logger.SetLevel(level)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(ctx, cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("Failed to open snapshot store")
	}

	analyticsCache, err := cache.NewAnalyticsCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Analytics cache unavailable, continuing without it")
		analyticsCache = cache.NewNoopAnalyticsCache()
	}

	svc := service.NewLedgerService(
		ledger.New(),
		store,
		service.WithCache(analyticsCache),
		service.WithParams(analytics.ParamsFromConfig(cfg.Analytics)),
		service.WithGenerator(insight.NewGenerator(cfg.AI)),
		service.WithArchive(reports.NewArchive(openReportStorage(ctx, cfg.Storage))),
	)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Log.Error().Err(err).Msg("Failed to close snapshot store")
		}
	}()

	seeded, err := svc.Bootstrap(ctx, cfg.Store.SeedDemo)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load ledger")
	}
	logger.Log.Info().Bool("seeded", seeded).Str("backend", cfg.Store.Backend).Msg("Ledger ready")

	go svc.RunOverdueMonitor(ctx, time.Duration(cfg.Analytics.OverdueCheckMins)*time.Minute)

	// Initialize HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      api.NewRouter(svc, cfg.Server.AllowedOrigins),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error().Err(err).Msg("Server forced to shutdown")
		os.Exit(1)
	}

	logger.Log.Info().Msg("Server exiting")
}

// openReportStorage prefers the configured bucket and falls back to a bounded
// in-memory store when it is disabled or unreachable.
func openReportStorage(ctx context.Context, cfg config.StorageConfig) storage.ObjectStorage {
	if !cfg.Enabled {
		return storage.NewMemoryStorage(reportQuotaBytes)
	}
	client, err := storage.NewMinIOClient(ctx, cfg)
	if err != nil {
		logger.Log.Warn().Err(err).Str("endpoint", cfg.Endpoint).Msg("Report storage unavailable, keeping reports in memory")
		return storage.NewMemoryStorage(reportQuotaBytes)
	}
	return client
}
