package api

import (
	"github.com/gin-gonic/gin"

	"github.com/hirescan/hirescan/internal/api/handler"
	"github.com/hirescan/hirescan/internal/api/middleware"
	"github.com/hirescan/hirescan/internal/logger"
	"github.com/hirescan/hirescan/internal/repository"
	"github.com/hirescan/hirescan/internal/service"
)

// Deps bundles everything the router needs.
type Deps struct {
	Batches       *service.BatchService
	Queue         *service.BatchQueue
	Rank          *service.RankService
	BatchRepo     *repository.BatchRepository
	ScoreRepo     *repository.ScoreRepository
	JobRepo       *repository.JobRepository
	CandidateRepo *repository.CandidateRepository
	ResumeRepo    *repository.ResumeRepository
	TimelineRepo  *repository.TimelineRepository
	Logger        *logger.Logger

	// CORSOrigins lists allowed origins; empty allows all.
	CORSOrigins []string
}

// SetupRouter configures the Gin router with all routes.
func SetupRouter(deps *Deps, mode string) *gin.Engine {
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS(deps.CORSOrigins))

	healthHandler := handler.NewHealthHandler()
	batchHandler := handler.NewBatchHandler(deps.Batches, deps.Queue, deps.BatchRepo)
	rankHandler := handler.NewRankHandler(deps.Rank, deps.ScoreRepo, deps.JobRepo)
	candidateHandler := handler.NewCandidateHandler(deps.CandidateRepo, deps.ResumeRepo, deps.TimelineRepo)

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		// Batches
		v1.POST("/batches", batchHandler.Create)
		v1.GET("/batches/:id", batchHandler.Get)
		v1.POST("/batches/:id/process", batchHandler.Process)

		// Ranking
		v1.POST("/jobs/:id/ranking/refresh", rankHandler.Refresh)
		v1.GET("/review", rankHandler.Review)

		// Candidates
		v1.GET("/candidates/:id", candidateHandler.Get)
	}

	return r
}
