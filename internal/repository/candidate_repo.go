package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/hirescan/hirescan/internal/domain"
)

// CandidateRepository handles candidate data operations.
type CandidateRepository struct {
	db *gorm.DB
}

// NewCandidateRepository creates a new CandidateRepository.
func NewCandidateRepository(db *gorm.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

// Create inserts a new candidate record.
func (r *CandidateRepository) Create(ctx context.Context, c *domain.Candidate) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// GetByID retrieves a candidate by ID.
func (r *CandidateRepository) GetByID(ctx context.Context, id string) (*domain.Candidate, error) {
	var c domain.Candidate
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByEmail retrieves a candidate by email.
func (r *CandidateRepository) GetByEmail(ctx context.Context, email string) (*domain.Candidate, error) {
	var c domain.Candidate
	if err := r.db.WithContext(ctx).First(&c, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// Update saves an existing candidate record.
func (r *CandidateRepository) Update(ctx context.Context, c *domain.Candidate) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// ListIDsWithParsedResumes returns the IDs of candidates that have at least
// one parsed resume, i.e. the pool eligible for scoring and ranking.
func (r *CandidateRepository) ListIDsWithParsedResumes(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&domain.Candidate{}).
		Distinct("candidates.id").
		Joins("JOIN resumes ON resumes.candidate_id = candidates.id").
		Joins("JOIN parsed_resumes ON parsed_resumes.resume_id = resumes.id").
		Pluck("candidates.id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
