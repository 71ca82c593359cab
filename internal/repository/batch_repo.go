package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/hirescan/hirescan/internal/domain"
)

// BatchRepository handles batch uploads and their file items.
type BatchRepository struct {
	db *gorm.DB
}

// NewBatchRepository creates a new BatchRepository.
func NewBatchRepository(db *gorm.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// CreateBatch inserts a batch together with its file items in one transaction.
func (r *BatchRepository) CreateBatch(ctx context.Context, batch *domain.BatchUpload, items []domain.FileItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		batch.TotalFiles = len(items)
		if err := tx.Create(batch).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetBatch retrieves a batch by ID.
func (r *BatchRepository) GetBatch(ctx context.Context, id string) (*domain.BatchUpload, error) {
	var batch domain.BatchUpload
	if err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

// ListFileItems returns the file items of a batch in submission order.
func (r *BatchRepository) ListFileItems(ctx context.Context, batchID string) ([]domain.FileItem, error) {
	var items []domain.FileItem
	if err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("created_at").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// MarkBatchProcessing moves a pending batch to processing and stamps the
// start time. The status guard keeps the transition monotonic: a batch never
// returns to pending and a terminal batch is never revived.
func (r *BatchRepository) MarkBatchProcessing(ctx context.Context, batchID string) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&domain.BatchUpload{}).
		Where("id = ? AND status = ?", batchID, domain.BatchStatusPending).
		Updates(map[string]interface{}{
			"status":     domain.BatchStatusProcessing,
			"started_at": &now,
		}).Error
}

// MarkFileProcessing claims a pending file item by moving it to processing.
// The returned bool reports whether this caller won the claim; false means
// the item was already claimed or is terminal, and a replayed run must not
// process it again.
func (r *BatchRepository) MarkFileProcessing(ctx context.Context, itemID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.FileItem{}).
		Where("id = ? AND status = ?", itemID, domain.FileStatusPending).
		Update("status", domain.FileStatusProcessing)
	return res.RowsAffected > 0, res.Error
}

// MarkFileTerminal records a file item's terminal state and bumps the batch
// counters in the same transaction. The increment is a DB-side expression so
// concurrent workers never lose updates, and the status guard makes the call
// idempotent: a second terminal transition for the same item is a no-op and
// does not double-count. Pending items are accepted too, so an item whose
// claim failed can still be parked as failed instead of sticking in pending.
func (r *BatchRepository) MarkFileTerminal(
	ctx context.Context,
	itemID, batchID string,
	status domain.FileStatus,
	errorMessage, candidateID string,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.FileItem{}).
			Where("id = ? AND status IN ?", itemID,
				[]domain.FileStatus{domain.FileStatusPending, domain.FileStatusProcessing}).
			Updates(map[string]interface{}{
				"status":        status,
				"error_message": errorMessage,
				"candidate_id":  candidateID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		updates := map[string]interface{}{
			"processed_files": gorm.Expr("processed_files + 1"),
		}
		if status == domain.FileStatusFailed {
			updates["failed_files"] = gorm.Expr("failed_files + 1")
		}
		return tx.Model(&domain.BatchUpload{}).
			Where("id = ?", batchID).
			Updates(updates).Error
	})
}

// FinalizeBatch records the batch's terminal status and completion time.
func (r *BatchRepository) FinalizeBatch(ctx context.Context, batchID string, status domain.BatchStatus) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&domain.BatchUpload{}).
		Where("id = ? AND status = ?", batchID, domain.BatchStatusProcessing).
		Updates(map[string]interface{}{
			"status":       status,
			"completed_at": &now,
		}).Error
}
