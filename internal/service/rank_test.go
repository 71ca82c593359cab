package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirescan/hirescan/internal/domain"
)

type fakeJobStore struct {
	job *domain.Job
}

func (f *fakeJobStore) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	return f.job, nil
}

type fakePool struct {
	ids []string
}

func (f *fakePool) ListIDsWithParsedResumes(ctx context.Context) ([]string, error) {
	return f.ids, nil
}

type fakeProfiles struct {
	profiles map[string]*domain.CandidateProfile
}

func (f *fakeProfiles) GetProfile(ctx context.Context, candidateID string) (*domain.CandidateProfile, error) {
	return f.profiles[candidateID], nil
}

// fakeScores keys rows by candidate ID, mirroring the unique
// (candidate_id, job_id) pair for a single job.
type fakeScores struct {
	mu       sync.Mutex
	rows     map[string]*domain.JobScore
	rankings []*domain.Ranking
}

func newFakeScores() *fakeScores {
	return &fakeScores{rows: make(map[string]*domain.JobScore)}
}

func (f *fakeScores) UpsertScore(ctx context.Context, score *domain.JobScore) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.rows[score.CandidateID]; ok {
		existing.Score = score.Score
		existing.AutoRejected = score.AutoRejected
		existing.RejectionReason = score.RejectionReason
		return nil
	}
	copied := *score
	f.rows[score.CandidateID] = &copied
	return nil
}

func (f *fakeScores) ListRankable(ctx context.Context, jobID string) ([]domain.JobScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.JobScore
	for _, row := range f.rows {
		if !row.AutoRejected {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeScores) UpdateRank(ctx context.Context, candidateID, jobID string, rank int, score float64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[candidateID]
	if !ok {
		return 0, nil
	}
	r := rank
	row.Rank = &r
	row.Score = score
	return 1, nil
}

func (f *fakeScores) UpsertRanking(ctx context.Context, ranking *domain.Ranking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rankings = append(f.rankings, ranking)
	return nil
}

// scriptedRanker replays a fixed model reply and records what it was sent.
type scriptedRanker struct {
	reply []RankedCandidate
	calls int
	sent  []CandidateSummary
}

func (f *scriptedRanker) RankCandidates(ctx context.Context, jobDescription string, candidates interface{}) ([]RankedCandidate, error) {
	f.calls++
	if summaries, ok := candidates.([]CandidateSummary); ok {
		f.sent = summaries
	}
	return f.reply, nil
}

func rankFixture() (*RankService, *fakeScores, *scriptedRanker) {
	job := &domain.Job{
		ID:          "job-1",
		Title:       "Backend Engineer",
		Description: "Go services",
		RequiredSkills: domain.RequiredSkillList{
			{Name: "Go"},
		},
		RequiredSkillsAutoReject: true,
	}

	profiles := &fakeProfiles{profiles: map[string]*domain.CandidateProfile{
		"c1": {
			CandidateID: "c1",
			Skills:      []domain.Skill{{Name: "Go"}},
			Experiences: []domain.Experience{{Company: "Acme"}},
		},
		"c2": {
			CandidateID: "c2",
			Skills:      []domain.Skill{{Name: "Go"}, {Name: "SQL"}},
		},
		"c3": {
			CandidateID: "c3",
			Skills:      []domain.Skill{{Name: "Python"}}, // missing Go, rejected
		},
	}}

	scores := newFakeScores()
	ranker := &scriptedRanker{reply: []RankedCandidate{
		{CandidateID: "c2", Rank: 1, Score: 95},
		{CandidateID: "c1", Rank: 2, Score: 85},
		{CandidateID: "ghost", Rank: 3, Score: 50}, // fabricated, must be skipped
	}}

	svc := NewRankService(
		&fakeJobStore{job: job},
		&fakePool{ids: []string{"c1", "c2", "c3"}},
		profiles,
		scores,
		ranker,
	)
	return svc, scores, ranker
}

func TestRefreshJobScoresAndRanks(t *testing.T) {
	svc, scores, ranker := rankFixture()

	result, err := svc.RefreshJob(context.Background(), "job-1")
	require.NoError(t, err)

	assert.Equal(t, 3, result.Scored)
	assert.Equal(t, 1, result.Rejected)
	assert.Equal(t, 2, result.Ranked)

	// Rejected candidate never reaches the model.
	assert.Len(t, ranker.sent, 2)
	for _, s := range ranker.sent {
		assert.NotEqual(t, "c3", s.CandidateID)
	}

	// Merged ranks overwrite in place; the fabricated ID left no row.
	require.NotNil(t, scores.rows["c2"].Rank)
	assert.Equal(t, 1, *scores.rows["c2"].Rank)
	assert.InDelta(t, 95, scores.rows["c2"].Score, 0.001)
	require.NotNil(t, scores.rows["c1"].Rank)
	assert.Equal(t, 2, *scores.rows["c1"].Rank)
	assert.NotContains(t, scores.rows, "ghost")

	// Rejected candidate keeps its score row with reason and nil rank.
	c3 := scores.rows["c3"]
	require.NotNil(t, c3)
	assert.True(t, c3.AutoRejected)
	assert.Contains(t, c3.RejectionReason, "Missing required skills: go")
	assert.Nil(t, c3.Rank)

	assert.Len(t, scores.rankings, 1)
	assert.Equal(t, "job-1", scores.rankings[0].JobID)
}

func TestRefreshJobIdempotent(t *testing.T) {
	svc, scores, ranker := rankFixture()

	_, err := svc.RefreshJob(context.Background(), "job-1")
	require.NoError(t, err)

	snapshot := make(map[string]domain.JobScore)
	for id, row := range scores.rows {
		snapshot[id] = *row
	}

	// Same pool, same job, same model reply: rows must be unchanged.
	_, err = svc.RefreshJob(context.Background(), "job-1")
	require.NoError(t, err)

	assert.Equal(t, 2, ranker.calls)
	for id, before := range snapshot {
		after := scores.rows[id]
		assert.Equal(t, before.Score, after.Score, id)
		assert.Equal(t, before.AutoRejected, after.AutoRejected, id)
		if before.Rank == nil {
			assert.Nil(t, after.Rank, id)
		} else {
			require.NotNil(t, after.Rank, id)
			assert.Equal(t, *before.Rank, *after.Rank, id)
		}
	}
}

func TestRefreshJobConcurrentSameJobSerialized(t *testing.T) {
	svc, scores, _ := rankFixture()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RefreshJob(context.Background(), "job-1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Four passes, one row per candidate, four ranking markers.
	assert.Len(t, scores.rows, 3)
	assert.Len(t, scores.rankings, 4)
}
