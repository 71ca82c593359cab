package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/hirescan/hirescan/internal/domain"
)

// JobRepository handles job position reads. Jobs are authored elsewhere; the
// pipeline only consumes them.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new JobRepository.
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// GetByID retrieves a job by ID.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	var job domain.Job
	if err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &job, nil
}
