package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hirescan/hirescan/internal/api/middleware"
	"github.com/hirescan/hirescan/internal/repository"
	"github.com/hirescan/hirescan/internal/service"
)

// RankHandler handles ranking and review endpoints.
type RankHandler struct {
	rank      *service.RankService
	scoreRepo *repository.ScoreRepository
	jobRepo   *repository.JobRepository
}

// NewRankHandler creates a new ranking handler.
func NewRankHandler(rank *service.RankService, scoreRepo *repository.ScoreRepository, jobRepo *repository.JobRepository) *RankHandler {
	return &RankHandler{
		rank:      rank,
		scoreRepo: scoreRepo,
		jobRepo:   jobRepo,
	}
}

// Refresh handles POST /api/v1/jobs/:id/ranking/refresh. Re-scores every
// candidate against the job and runs a model ranking pass over the
// non-rejected pool.
func (h *RankHandler) Refresh(c *gin.Context) {
	jobID := c.Param("id")

	result, err := h.rank.RefreshJob(c.Request.Context(), jobID)
	if err != nil {
		var provErr *service.ProviderError
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		case errors.As(err, &provErr):
			middleware.GetLogger(c).WithError(err).Error("Ranking provider call failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		default:
			middleware.GetLogger(c).WithError(err).Error("Ranking refresh failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// Review handles GET /api/v1/review?job_id=... It returns the per-job
// review dashboard: aggregates plus the scored candidate list, best first.
func (h *RankHandler) Review(c *gin.Context) {
	jobID := c.Query("job_id")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'job_id' is required"})
		return
	}

	job, err := h.jobRepo.GetByID(c.Request.Context(), jobID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}

	stats, err := h.scoreRepo.GetJobStats(c.Request.Context(), jobID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	scores, err := h.scoreRepo.ListByJob(c.Request.Context(), jobID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job":        gin.H{"id": job.ID, "title": job.Title},
		"stats":      stats,
		"candidates": scores,
	})
}
