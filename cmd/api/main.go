package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hirescan/hirescan/internal/api"
	"github.com/hirescan/hirescan/internal/config"
	"github.com/hirescan/hirescan/internal/extract"
	"github.com/hirescan/hirescan/internal/logger"
	"github.com/hirescan/hirescan/internal/repository"
	"github.com/hirescan/hirescan/internal/service"
	"github.com/hirescan/hirescan/internal/storage"
)

func corsOrigins(cfg *config.CORSConfig) []string {
	if cfg.AllowAllOrigins {
		return nil
	}
	return cfg.AllowedOrigins
}

func main() {
	// Support CONFIG_PATH environment variable for production deployments
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(&logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "hirescan-api",
		LogFile:     cfg.Log.File,
		MaxSizeMB:   cfg.Log.MaxSizeMB,
		MaxBackups:  cfg.Log.MaxBackups,
		MaxAgeDays:  cfg.Log.MaxAgeDays,
		Compress:    cfg.Log.Compress,
	})
	logger.SetDefaultLogger(appLogger)

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	candidateRepo := repository.NewCandidateRepository(db)
	resumeRepo := repository.NewResumeRepository(db)
	batchRepo := repository.NewBatchRepository(db)
	jobRepo := repository.NewJobRepository(db)
	scoreRepo := repository.NewScoreRepository(db)
	timelineRepo := repository.NewTimelineRepository(db)

	documents, err := storage.NewS3Store(&storage.S3Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize storage")
	}
	if err := documents.EnsureBucket(context.Background()); err != nil {
		appLogger.WithError(err).Fatal("Failed to ensure storage bucket")
	}

	inferrer, err := service.NewOpenRouterService(&service.OpenRouterConfig{
		APIKey:     cfg.OpenRouter.APIKey,
		BaseURL:    cfg.OpenRouter.BaseURL,
		ParseModel: cfg.OpenRouter.ParseModel,
		RankModel:  cfg.OpenRouter.RankModel,
		Timeout:    cfg.OpenRouter.Timeout,
		Referer:    cfg.OpenRouter.Referer,
		Title:      cfg.OpenRouter.Title,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize inference client")
	}

	parseService := service.NewParseService(documents, extract.NewExtractor(), inferrer, candidateRepo, resumeRepo)
	batchService := service.NewBatchService(batchRepo, documents, parseService, &service.BatchConfig{
		Workers:      cfg.Batch.Workers,
		CallDelay:    cfg.Batch.CallDelay,
		MaxBatchSize: cfg.Batch.MaxBatchSize,
	})
	queue := service.NewBatchQueue(batchService, cfg.Batch.QueueSize, appLogger)
	rankService := service.NewRankService(jobRepo, candidateRepo, resumeRepo, scoreRepo, inferrer)

	router := api.SetupRouter(&api.Deps{
		Batches:       batchService,
		Queue:         queue,
		Rank:          rankService,
		BatchRepo:     batchRepo,
		ScoreRepo:     scoreRepo,
		JobRepo:       jobRepo,
		CandidateRepo: candidateRepo,
		ResumeRepo:    resumeRepo,
		TimelineRepo:  timelineRepo,
		Logger:        appLogger,
		CORSOrigins:   corsOrigins(&cfg.Server.CORS),
	}, cfg.Server.Mode)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
