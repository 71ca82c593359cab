package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hirescan/hirescan/internal/domain"
)

// ScoreRepository handles job scores and ranking markers.
type ScoreRepository struct {
	db *gorm.DB
}

// NewScoreRepository creates a new ScoreRepository.
func NewScoreRepository(db *gorm.DB) *ScoreRepository {
	return &ScoreRepository{db: db}
}

// UpsertScore creates or updates the score row for a (candidate, job) pair.
// Rank is cleared on refresh; a subsequent ranking pass fills it back in.
func (r *ScoreRepository) UpsertScore(ctx context.Context, score *domain.JobScore) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "candidate_id"}, {Name: "job_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"score", "rank", "auto_rejected", "rejection_reason", "updated_at",
		}),
	}).Create(score).Error
}

// GetByPair retrieves the score row for one (candidate, job) pair.
func (r *ScoreRepository) GetByPair(ctx context.Context, candidateID, jobID string) (*domain.JobScore, error) {
	var score domain.JobScore
	if err := r.db.WithContext(ctx).
		First(&score, "candidate_id = ? AND job_id = ?", candidateID, jobID).Error; err != nil {
		return nil, err
	}
	return &score, nil
}

// ListByJob returns all score rows for a job, best score first.
func (r *ScoreRepository) ListByJob(ctx context.Context, jobID string) ([]domain.JobScore, error) {
	var scores []domain.JobScore
	if err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("score DESC").
		Find(&scores).Error; err != nil {
		return nil, err
	}
	return scores, nil
}

// ListRankable returns the non-rejected score rows for a job. Auto-rejected
// candidates never enter a ranking pass.
func (r *ScoreRepository) ListRankable(ctx context.Context, jobID string) ([]domain.JobScore, error) {
	var scores []domain.JobScore
	if err := r.db.WithContext(ctx).
		Where("job_id = ? AND auto_rejected = ?", jobID, false).
		Order("score DESC").
		Find(&scores).Error; err != nil {
		return nil, err
	}
	return scores, nil
}

// UpdateRank overwrites rank and score for one (candidate, job) pair.
// Returns the number of rows touched so callers can skip candidate IDs the
// model fabricated.
func (r *ScoreRepository) UpdateRank(ctx context.Context, candidateID, jobID string, rank int, score float64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.JobScore{}).
		Where("candidate_id = ? AND job_id = ?", candidateID, jobID).
		Updates(map[string]interface{}{
			"rank":  rank,
			"score": score,
		})
	return res.RowsAffected, res.Error
}

// UpsertRanking records that a ranking pass completed for a (job, batch) pair.
func (r *ScoreRepository) UpsertRanking(ctx context.Context, ranking *domain.Ranking) error {
	ranking.RankedAt = time.Now()
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "job_id"}, {Name: "batch_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"ranked_at"}),
	}).Create(ranking).Error
}

// JobStats aggregates review-dashboard figures for one job.
type JobStats struct {
	TotalCandidates int64   `json:"total_candidates"`
	AutoRejected    int64   `json:"auto_rejected"`
	AverageScore    float64 `json:"average_score"`
}

// GetJobStats computes the dashboard aggregates for one job.
func (r *ScoreRepository) GetJobStats(ctx context.Context, jobID string) (*JobStats, error) {
	var stats JobStats
	base := r.db.WithContext(ctx).Model(&domain.JobScore{}).Where("job_id = ?", jobID)

	if err := base.Session(&gorm.Session{}).Count(&stats.TotalCandidates).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).
		Where("auto_rejected = ?", true).
		Count(&stats.AutoRejected).Error; err != nil {
		return nil, err
	}
	var avg *float64
	if err := base.Session(&gorm.Session{}).
		Select("AVG(score)").Scan(&avg).Error; err != nil {
		return nil, err
	}
	if avg != nil {
		stats.AverageScore = *avg
	}
	return &stats, nil
}
