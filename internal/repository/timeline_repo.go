package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/hirescan/hirescan/internal/domain"
)

// TimelineRepository handles candidate timeline events.
type TimelineRepository struct {
	db *gorm.DB
}

// NewTimelineRepository creates a new TimelineRepository.
func NewTimelineRepository(db *gorm.DB) *TimelineRepository {
	return &TimelineRepository{db: db}
}

// Create inserts a timeline event.
func (r *TimelineRepository) Create(ctx context.Context, event *domain.TimelineEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// ListByCandidate returns a candidate's events, newest first.
func (r *TimelineRepository) ListByCandidate(ctx context.Context, candidateID string, limit int) ([]domain.TimelineEvent, error) {
	var events []domain.TimelineEvent
	q := r.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
