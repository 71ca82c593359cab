package service

import (
	"strings"

	"github.com/hirescan/hirescan/internal/domain"
)

// Sub-score weights. The four maxima sum to exactly 100, so the final clamp
// is a no-op by construction.
const (
	skillScoreMax         = 40.0
	experienceScoreMax    = 30.0
	experienceScorePerRow = 10.0
	educationScore        = 20.0
	certificationScoreMax = 10.0
	certificationPerRow   = 5.0
)

// ScoreCandidate computes the local baseline fit score in [0, 100] for one
// (candidate, job) pair. It is deterministic and makes no external calls, so
// every candidate has an immediate, explainable score before any model-based
// ranking pass runs. Auto-reject status does not affect it; a rejected
// candidate still gets a score for diagnostic visibility.
func ScoreCandidate(profile *domain.CandidateProfile, job *domain.Job) float64 {
	score := 0.0

	// Skill match: fraction of required skills the candidate has,
	// case-insensitive. No required skills means no skill points.
	if len(job.RequiredSkills) > 0 {
		have := make(map[string]bool, len(profile.Skills))
		for _, s := range profile.Skills {
			have[strings.ToLower(strings.TrimSpace(s.Name))] = true
		}
		matched := 0
		for _, req := range job.RequiredSkills {
			if have[strings.ToLower(strings.TrimSpace(req.Name))] {
				matched++
			}
		}
		score += skillScoreMax * float64(matched) / float64(len(job.RequiredSkills))
	}

	// Experience breadth: entry count as a coarse proxy, capped.
	expScore := experienceScorePerRow * float64(len(profile.Experiences))
	if expScore > experienceScoreMax {
		expScore = experienceScoreMax
	}
	score += expScore

	// Education presence: flat award for at least one entry.
	if len(profile.Educations) > 0 {
		score += educationScore
	}

	// Certifications: count-based, capped.
	certScore := certificationPerRow * float64(len(profile.Certifications))
	if certScore > certificationScoreMax {
		certScore = certificationScoreMax
	}
	score += certScore

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}
