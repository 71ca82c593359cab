package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hirescan/hirescan/internal/repository"
)

// CandidateHandler handles candidate detail endpoints.
type CandidateHandler struct {
	candidateRepo *repository.CandidateRepository
	resumeRepo    *repository.ResumeRepository
	timelineRepo  *repository.TimelineRepository
}

// NewCandidateHandler creates a new candidate handler.
func NewCandidateHandler(
	candidateRepo *repository.CandidateRepository,
	resumeRepo *repository.ResumeRepository,
	timelineRepo *repository.TimelineRepository,
) *CandidateHandler {
	return &CandidateHandler{
		candidateRepo: candidateRepo,
		resumeRepo:    resumeRepo,
		timelineRepo:  timelineRepo,
	}
}

// Get handles GET /api/v1/candidates/:id. Returns the candidate record with
// its assembled profile and recent timeline.
func (h *CandidateHandler) Get(c *gin.Context) {
	candidateID := c.Param("id")

	candidate, err := h.candidateRepo.GetByID(c.Request.Context(), candidateID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Candidate not found"})
		return
	}

	// A candidate may exist before any of its resumes parsed successfully.
	profile, err := h.resumeRepo.GetProfile(c.Request.Context(), candidateID)
	if err != nil {
		profile = nil
	}

	events, err := h.timelineRepo.ListByCandidate(c.Request.Context(), candidateID, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"candidate": candidate,
		"profile":   profile,
		"timeline":  events,
	})
}
