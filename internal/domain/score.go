package domain

import "time"

// JobScore is the scoring result for one (candidate, job) pair, unique per
// pair and mutated in place on re-scoring. Rank is filled by a ranking pass
// and stays nil for candidates the model omitted. A rejected candidate still
// carries its locally computed score for diagnostic visibility.
type JobScore struct {
	ID              string     `gorm:"type:text;primaryKey" json:"id"`
	CandidateID     string     `gorm:"type:text;not null;uniqueIndex:idx_job_scores_pair" json:"candidate_id"`
	JobID           string     `gorm:"type:text;not null;uniqueIndex:idx_job_scores_pair" json:"job_id"`
	Score           float64    `json:"score"`
	Rank            *int       `json:"rank,omitempty"`
	AutoRejected    bool       `gorm:"default:false;index:idx_job_scores_rejected" json:"auto_rejected"`
	RejectionReason string     `gorm:"type:text" json:"rejection_reason,omitempty"`
	ScoredAt        time.Time  `gorm:"autoCreateTime" json:"scored_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName returns the database table name for JobScore.
func (JobScore) TableName() string {
	return "job_scores"
}

// Ranking marks that a ranking pass completed for a (job, batch) pair.
// BatchID is empty for job-wide passes.
type Ranking struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	JobID     string    `gorm:"type:text;not null;uniqueIndex:idx_rankings_job_batch" json:"job_id"`
	BatchID   string    `gorm:"type:text;uniqueIndex:idx_rankings_job_batch" json:"batch_id,omitempty"`
	RankedAt  time.Time `json:"ranked_at"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Ranking.
func (Ranking) TableName() string {
	return "rankings"
}

// Timeline event types.
const (
	EventResumeUploaded = "uploaded"
	EventResumeParsed   = "parsed"
	EventScored         = "scored"
	EventRanked         = "ranked"
	EventAutoRejected   = "auto_rejected"
	EventBatchCompleted = "batch_completed"
	EventBatchFailed    = "batch_failed"
)

// TimelineEvent is one audit entry on a candidate's history. The pipeline
// emits them outward; an external notification collaborator consumes them.
type TimelineEvent struct {
	ID          string    `gorm:"type:text;primaryKey" json:"id"`
	CandidateID string    `gorm:"type:text;index:idx_timeline_events_candidate" json:"candidate_id"`
	EventType   string    `gorm:"type:text;not null" json:"event_type"`
	Description string    `gorm:"type:text" json:"description"`
	Metadata    JSONMap   `gorm:"type:text" json:"metadata"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the database table name for TimelineEvent.
func (TimelineEvent) TableName() string {
	return "timeline_events"
}
