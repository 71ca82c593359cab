package main

import (
	"context"
	"flag"
	"os"

	"github.com/hirescan/hirescan/internal/config"
	"github.com/hirescan/hirescan/internal/logger"
	"github.com/hirescan/hirescan/internal/repository"
	"github.com/hirescan/hirescan/internal/service"
)

func main() {
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "hirescan-rank",
	})
	logger.SetDefaultLogger(appLogger)

	jobID := flag.String("job", "", "Job ID to refresh scores and ranking for")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	if *jobID == "" {
		appLogger.Fatal("Flag -job is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	candidateRepo := repository.NewCandidateRepository(db)
	resumeRepo := repository.NewResumeRepository(db)
	jobRepo := repository.NewJobRepository(db)
	scoreRepo := repository.NewScoreRepository(db)

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

	rankService := service.NewRankService(jobRepo, candidateRepo, resumeRepo, scoreRepo, inferrer)

	ctx := appLogger.WithField(logger.FieldJobID, *jobID).WithContext(context.Background())
	result, err := rankService.RefreshJob(ctx, *jobID)
	if err != nil {
		appLogger.WithError(err).Error("Ranking refresh failed")
		os.Exit(1)
	}

	appLogger.WithFields(logger.Fields{
		"scored":   result.Scored,
		"rejected": result.Rejected,
		"ranked":   result.Ranked,
	}).Info("Ranking refresh finished")
}
