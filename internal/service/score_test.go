package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hirescan/hirescan/internal/domain"
)

func TestScoreCandidatePartialSkillMatch(t *testing.T) {
	// 1 of 2 required skills matched, case-insensitive: 20 skill points.
	job := &domain.Job{
		RequiredSkills: domain.RequiredSkillList{
			{Name: "Go"},
			{Name: "SQL"},
		},
	}
	profile := profileWith([]string{"go", "Python"}, nil, nil)

	assert.InDelta(t, 20.0, ScoreCandidate(profile, job), 0.001)
}

func TestScoreCandidateNoRequiredSkills(t *testing.T) {
	// No required skills declared: zero skill points, not a free 40.
	job := &domain.Job{}
	profile := profileWith([]string{"Go", "SQL"}, nil, nil)

	assert.InDelta(t, 0.0, ScoreCandidate(profile, job), 0.001)
}

func TestScoreCandidateMaximaSumToHundred(t *testing.T) {
	// All four sub-score maxima hit simultaneously: 40+30+20+10 = 100,
	// so the clamp is a no-op by construction.
	job := &domain.Job{
		RequiredSkills: domain.RequiredSkillList{{Name: "Go"}},
	}
	profile := &domain.CandidateProfile{
		Skills: []domain.Skill{{Name: "Go"}},
		Experiences: []domain.Experience{
			{Company: "A"}, {Company: "B"}, {Company: "C"}, {Company: "D"},
		},
		Educations: []domain.Education{{Degree: "BSc"}},
		Certifications: []domain.Certification{
			{Name: "Cert1"}, {Name: "Cert2"}, {Name: "Cert3"},
		},
	}

	assert.InDelta(t, 100.0, ScoreCandidate(profile, job), 0.001)
}

func TestScoreCandidateCaps(t *testing.T) {
	tests := []struct {
		name    string
		profile *domain.CandidateProfile
		want    float64
	}{
		{"empty profile", &domain.CandidateProfile{}, 0},
		{
			"experience capped at 30",
			&domain.CandidateProfile{Experiences: make([]domain.Experience, 10)},
			30,
		},
		{
			"certifications capped at 10",
			&domain.CandidateProfile{Certifications: make([]domain.Certification, 5)},
			10,
		},
		{
			"single experience",
			&domain.CandidateProfile{Experiences: make([]domain.Experience, 1)},
			10,
		},
		{
			"education flat 20",
			&domain.CandidateProfile{Educations: make([]domain.Education, 3)},
			20,
		},
	}

	job := &domain.Job{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreCandidate(tt.profile, job)
			assert.InDelta(t, tt.want, got, 0.001)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 100.0)
		})
	}
}

func TestScoreCandidateIndependentOfRejection(t *testing.T) {
	// A candidate that would be auto-rejected still gets its full score.
	job := &domain.Job{
		RequiredSkills:           domain.RequiredSkillList{{Name: "Go"}},
		RequiredSkillsAutoReject: true,
		Gender:                   domain.GenderFemale,
		GenderAutoReject:         true,
	}
	profile := profileWith([]string{"Go"}, nil, nil)

	rejected, _ := EvaluateRules(profile, job)
	assert.True(t, rejected)
	assert.InDelta(t, 40.0, ScoreCandidate(profile, job), 0.001)
}
