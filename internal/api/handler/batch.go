package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hirescan/hirescan/internal/api/middleware"
	"github.com/hirescan/hirescan/internal/domain"
	"github.com/hirescan/hirescan/internal/repository"
	"github.com/hirescan/hirescan/internal/service"
)

// BatchHandler handles batch upload endpoints.
type BatchHandler struct {
	batches   *service.BatchService
	queue     *service.BatchQueue
	batchRepo *repository.BatchRepository
}

// NewBatchHandler creates a new batch handler.
func NewBatchHandler(batches *service.BatchService, queue *service.BatchQueue, batchRepo *repository.BatchRepository) *BatchHandler {
	return &BatchHandler{
		batches:   batches,
		queue:     queue,
		batchRepo: batchRepo,
	}
}

// Create handles POST /api/v1/batches. Expects a multipart form with one or
// more "files" parts. Files with unsupported extensions are rejected per
// file and reported; the accepted rest forms the batch.
func (h *BatchHandler) Create(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form: " + err.Error()})
		return
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files uploaded"})
		return
	}

	files := make([]service.BatchFile, 0, len(headers))
	var closers []interface{ Close() error }
	defer func() {
		for _, cl := range closers {
			cl.Close()
		}
	}()

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read " + fh.Filename + ": " + err.Error()})
			return
		}
		closers = append(closers, f)
		files = append(files, service.BatchFile{
			Filename: fh.Filename,
			Size:     fh.Size,
			Reader:   f,
		})
	}

	sub, err := h.batches.Submit(c.Request.Context(), c.PostForm("user_id"), files)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBatchTooLarge), errors.Is(err, service.ErrEmptyBatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			middleware.GetLogger(c).WithError(err).Error("Batch submission failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Batch submission failed: " + err.Error()})
		}
		return
	}

	if _, err := h.queue.Submit(sub.Batch.ID); err != nil {
		if errors.Is(err, service.ErrQueueFull) {
			// Batch is stored in pending state; processing can be
			// started later via the process endpoint.
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":    err.Error(),
				"batch_id": sub.Batch.ID,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"batch":    sub.Batch,
		"items":    sub.Items,
		"rejected": sub.Rejected,
	})
}

// Get handles GET /api/v1/batches/:id. Returns the batch with its progress
// and file items.
func (h *BatchHandler) Get(c *gin.Context) {
	batchID := c.Param("id")

	batch, err := h.batchRepo.GetBatch(c.Request.Context(), batchID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Batch not found"})
		return
	}

	items, err := h.batchRepo.ListFileItems(c.Request.Context(), batchID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"batch":    batch,
		"progress": batch.ProgressPercentage(),
		"items":    items,
	})
}

// Process handles POST /api/v1/batches/:id/process. Re-enqueues a pending
// batch, for batches that were stored while the queue was saturated.
func (h *BatchHandler) Process(c *gin.Context) {
	batchID := c.Param("id")

	batch, err := h.batchRepo.GetBatch(c.Request.Context(), batchID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Batch not found"})
		return
	}
	if batch.Status != domain.BatchStatusPending {
		c.JSON(http.StatusConflict, gin.H{"error": "Batch is not pending", "status": batch.Status})
		return
	}

	if _, err := h.queue.Submit(batchID); err != nil {
		if errors.Is(err, service.ErrQueueFull) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"batch_id": batchID, "status": "queued"})
}
