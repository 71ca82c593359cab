package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hirescan/hirescan/internal/domain"
	"github.com/hirescan/hirescan/internal/logger"
)

// JobStore reads job definitions.
type JobStore interface {
	GetByID(ctx context.Context, id string) (*domain.Job, error)
}

// CandidatePool lists the candidates eligible for scoring.
type CandidatePool interface {
	ListIDsWithParsedResumes(ctx context.Context) ([]string, error)
}

// ProfileStore assembles candidate profiles.
type ProfileStore interface {
	GetProfile(ctx context.Context, candidateID string) (*domain.CandidateProfile, error)
}

// ScoreStore persists scoring and ranking results.
type ScoreStore interface {
	UpsertScore(ctx context.Context, score *domain.JobScore) error
	ListRankable(ctx context.Context, jobID string) ([]domain.JobScore, error)
	UpdateRank(ctx context.Context, candidateID, jobID string, rank int, score float64) (int64, error)
	UpsertRanking(ctx context.Context, ranking *domain.Ranking) error
}

// CandidateRanker submits candidate summaries for relative ranking.
type CandidateRanker interface {
	RankCandidates(ctx context.Context, jobDescription string, candidates interface{}) ([]RankedCandidate, error)
}

// CandidateSummary is the per-candidate view submitted for ranking.
type CandidateSummary struct {
	CandidateID     string   `json:"candidate_id"`
	Name            string   `json:"name"`
	Summary         string   `json:"summary,omitempty"`
	Skills          []string `json:"skills"`
	ExperienceCount int      `json:"experience_count"`
	EducationCount  int      `json:"education_count"`
	Score           float64  `json:"score"`
}

// RefreshResult summarizes one refresh-then-rank pass.
type RefreshResult struct {
	JobID    string `json:"job_id"`
	Scored   int    `json:"scored"`
	Rejected int    `json:"rejected"`
	Ranked   int    `json:"ranked"`
}

// RankService refreshes local scores and synchronizes model-computed ranks
// for a job. The JobScore table is written by both the refresh pass and the
// rank merge; a per-job mutex keeps the two phases a single logical
// transaction so concurrent refreshes of the same job never interleave.
type RankService struct {
	jobs       JobStore
	candidates CandidatePool
	profiles   ProfileStore
	scores     ScoreStore
	ranker     CandidateRanker

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRankService creates a new ranking synchronizer.
func NewRankService(jobs JobStore, candidates CandidatePool, profiles ProfileStore, scores ScoreStore, ranker CandidateRanker) *RankService {
	return &RankService{
		jobs:       jobs,
		candidates: candidates,
		profiles:   profiles,
		scores:     scores,
		ranker:     ranker,
		locks:      make(map[string]*sync.Mutex),
	}
}

func (s *RankService) jobLock(jobID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[jobID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[jobID] = l
	}
	return l
}

// RefreshJob scores every eligible candidate against the job, then submits
// the non-rejected pool for model ranking and merges the returned tuples.
// A returned candidate_id with no matching JobScore row is skipped; a row
// omitted from the model's reply keeps its local score and a nil rank.
// Re-running with an unchanged pool and job is idempotent up to model
// non-determinism.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - jobID: the job to refresh.
//
// Returns:
//   - *RefreshResult: counts of scored, rejected and rank-merged candidates.
//   - error: non-nil when the job is missing or a phase failed.
func (s *RankService) RefreshJob(ctx context.Context, jobID string) (*RefreshResult, error) {
	lock := s.jobLock(jobID)
	lock.Lock()
	defer lock.Unlock()

	log := logger.FromContext(ctx).WithField(logger.FieldJobID, jobID)
	start := time.Now()

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("load job: %w", err)
	}

	result := &RefreshResult{JobID: jobID}

	// Phase 1: local scores and rules for every candidate with parsed data.
	ids, err := s.candidates.ListIDsWithParsedResumes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	profilesByID := make(map[string]*domain.CandidateProfile, len(ids))
	for _, candidateID := range ids {
		profile, err := s.profiles.GetProfile(ctx, candidateID)
		if err != nil {
			return nil, fmt.Errorf("load profile %s: %w", candidateID, err)
		}
		profilesByID[candidateID] = profile

		rejected, reason := EvaluateRules(profile, job)
		score := &domain.JobScore{
			ID:              uuid.New().String(),
			CandidateID:     candidateID,
			JobID:           jobID,
			Score:           ScoreCandidate(profile, job),
			AutoRejected:    rejected,
			RejectionReason: reason,
		}
		if err := s.scores.UpsertScore(ctx, score); err != nil {
			return nil, fmt.Errorf("upsert score %s: %w", candidateID, err)
		}

		result.Scored++
		if rejected {
			result.Rejected++
		}
	}

	// Phase 2: model ranking over the non-rejected pool.
	rankable, err := s.scores.ListRankable(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("list rankable: %w", err)
	}

	if len(rankable) > 0 {
		summaries := make([]CandidateSummary, 0, len(rankable))
		for _, sc := range rankable {
			profile := profilesByID[sc.CandidateID]
			if profile == nil {
				profile, err = s.profiles.GetProfile(ctx, sc.CandidateID)
				if err != nil {
					return nil, fmt.Errorf("load profile %s: %w", sc.CandidateID, err)
				}
			}
			summaries = append(summaries, summarize(profile, sc.Score))
		}

		ranked, err := s.ranker.RankCandidates(ctx, job.Description, summaries)
		if err != nil {
			return nil, fmt.Errorf("rank candidates: %w", err)
		}

		for _, r := range ranked {
			affected, err := s.scores.UpdateRank(ctx, r.CandidateID, jobID, r.Rank, r.Score)
			if err != nil {
				return nil, fmt.Errorf("merge rank %s: %w", r.CandidateID, err)
			}
			if affected == 0 {
				// The model is not allowed to fabricate scoring targets.
				log.WithField(logger.FieldCandidateID, r.CandidateID).
					Warn("Ranked candidate has no score row, skipping")
				continue
			}
			result.Ranked++
		}
	}

	ranking := &domain.Ranking{
		ID:       uuid.New().String(),
		JobID:    jobID,
		RankedAt: time.Now(),
	}
	if err := s.scores.UpsertRanking(ctx, ranking); err != nil {
		return nil, fmt.Errorf("upsert ranking marker: %w", err)
	}

	log.WithFields(logger.Fields{
		"scored":               result.Scored,
		"rejected":             result.Rejected,
		"ranked":               result.Ranked,
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
	}).Info("Ranking refreshed")

	return result, nil
}

func summarize(profile *domain.CandidateProfile, score float64) CandidateSummary {
	skills := make([]string, 0, len(profile.Skills))
	for _, s := range profile.Skills {
		skills = append(skills, s.Name)
	}
	return CandidateSummary{
		CandidateID:     profile.CandidateID,
		Name:            profile.Personal.Name,
		Summary:         profile.Summary,
		Skills:          skills,
		ExperienceCount: len(profile.Experiences),
		EducationCount:  len(profile.Educations),
		Score:           score,
	}
}
