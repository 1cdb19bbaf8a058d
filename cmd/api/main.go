package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/timmy/reelsearch/internal/api"
	"github.com/timmy/reelsearch/internal/app"
	"github.com/timmy/reelsearch/internal/backup"
	"github.com/timmy/reelsearch/internal/config"
	"github.com/timmy/reelsearch/internal/logger"
	"github.com/timmy/reelsearch/internal/metrics"
	"github.com/timmy/reelsearch/internal/storage"
)

func main() {
	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// Support CONFIG_PATH environment variable for production deployments
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	core, err := app.Build(ctx, cfg, m)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize search core")
	}
	defer core.Close()

	var backupSvc *backup.Service
	if cfg.Backup.Enabled {
		backupSvc, err = startBackup(ctx, cfg, core, m)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to start learning backups")
		}
	}

	router := api.SetupRouter(api.Dependencies{
		Searcher:  core.Search,
		Learner:   core.Learner,
		Provider:  core.Source.GetSourceID(),
		Tokenizer: core.Tokenizer.Name(),
		Gatherer:  reg,
	}, cfg.Server, appLogger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.WithFields(logger.Fields{
			"port":               cfg.Server.Port,
			"mode":               cfg.Server.Mode,
			logger.FieldProvider: core.Source.GetSourceID(),
			"provider_name":      core.Source.GetDisplayName(),
			"tokenizer":          core.Tokenizer.Name(),
			"learning_store":     cfg.Learning.Store,
			"backup_enabled":     cfg.Backup.Enabled,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Server forced to shutdown")
	}

	if backupSvc != nil {
		backupSvc.Stop()
		if err := backupSvc.Backup(shutdownCtx); err != nil {
			appLogger.WithError(err).Warn("Final learning backup failed")
		}
	}

	appLogger.Info("Server exited")
}

// startBackup restores an empty learner from the latest snapshot when
// configured, then schedules periodic snapshots.
func startBackup(ctx context.Context, cfg *config.Config, core *app.Core, m *metrics.Metrics) (*backup.Service, error) {
	objectStorage, err := storage.NewStorage(&cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	if s3, ok := objectStorage.(*storage.S3Storage); ok {
		if err := s3.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure storage bucket: %w", err)
		}
	}

	svc, err := backup.NewService(objectStorage, core.Learner, cfg.Backup, m)
	if err != nil {
		return nil, err
	}

	if cfg.Backup.RestoreOnEmpty {
		restored, err := svc.RestoreIfEmpty(ctx)
		if err != nil {
			logger.CtxWarn(ctx, "Learning restore skipped: error=%v", err)
		} else if restored {
			logger.CtxInfo(ctx, "Learning state restored from backup")
		}
	}

	if err := svc.Start(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}
