package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hirescan/hirescan/internal/domain"
)

// ResumeRepository handles resumes, parsed resumes and their sub-collections.
type ResumeRepository struct {
	db *gorm.DB
}

// NewResumeRepository creates a new ResumeRepository.
func NewResumeRepository(db *gorm.DB) *ResumeRepository {
	return &ResumeRepository{db: db}
}

// Create inserts a new resume record.
func (r *ResumeRepository) Create(ctx context.Context, resume *domain.Resume) error {
	return r.db.WithContext(ctx).Create(resume).Error
}

// GetByID retrieves a resume by ID.
func (r *ResumeRepository) GetByID(ctx context.Context, id string) (*domain.Resume, error) {
	var resume domain.Resume
	if err := r.db.WithContext(ctx).First(&resume, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &resume, nil
}

// GetParsedByResumeID retrieves the parsed record for a resume, if any.
func (r *ResumeRepository) GetParsedByResumeID(ctx context.Context, resumeID string) (*domain.ParsedResume, error) {
	var parsed domain.ParsedResume
	if err := r.db.WithContext(ctx).First(&parsed, "resume_id = ?", resumeID).Error; err != nil {
		return nil, err
	}
	return &parsed, nil
}

// SaveParseResult commits one parse outcome in a single transaction: the
// ParsedResume upsert, the full replacement of every sub-collection, the
// candidate backfill and the lifecycle event. Either everything lands or
// nothing does; a reader never observes the empty window between delete and
// re-insert.
func (r *ResumeRepository) SaveParseResult(
	ctx context.Context,
	parsed *domain.ParsedResume,
	subs domain.SubCollections,
	candidate *domain.Candidate,
	event *domain.TimelineEvent,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "resume_id"}},
			UpdateAll: true,
		}).Create(parsed).Error; err != nil {
			return err
		}

		// Re-read the row ID: on conflict the insert keeps the existing
		// primary key, and the sub-collections must attach to it.
		var existing domain.ParsedResume
		if err := tx.Select("id").First(&existing, "resume_id = ?", parsed.ResumeID).Error; err != nil {
			return err
		}
		parsedID := existing.ID

		if err := replaceSubCollections(tx, parsedID, subs); err != nil {
			return err
		}

		if candidate != nil {
			if err := tx.Save(candidate).Error; err != nil {
				return err
			}
		}

		if event != nil {
			if err := tx.Create(event).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// replaceSubCollections swaps the full row set for every sub-collection of
// one parsed resume. Stale entries must not survive a re-parse.
func replaceSubCollections(tx *gorm.DB, parsedResumeID string, subs domain.SubCollections) error {
	retarget := func(id *string) { *id = parsedResumeID }

	if err := tx.Where("parsed_resume_id = ?", parsedResumeID).Delete(&domain.Experience{}).Error; err != nil {
		return err
	}
	for i := range subs.Experiences {
		retarget(&subs.Experiences[i].ParsedResumeID)
		subs.Experiences[i].ID = 0
	}
	if len(subs.Experiences) > 0 {
		if err := tx.Create(&subs.Experiences).Error; err != nil {
			return err
		}
	}

	if err := tx.Where("parsed_resume_id = ?", parsedResumeID).Delete(&domain.Education{}).Error; err != nil {
		return err
	}
	for i := range subs.Educations {
		retarget(&subs.Educations[i].ParsedResumeID)
		subs.Educations[i].ID = 0
	}
	if len(subs.Educations) > 0 {
		if err := tx.Create(&subs.Educations).Error; err != nil {
			return err
		}
	}

	if err := tx.Where("parsed_resume_id = ?", parsedResumeID).Delete(&domain.Skill{}).Error; err != nil {
		return err
	}
	for i := range subs.Skills {
		retarget(&subs.Skills[i].ParsedResumeID)
		subs.Skills[i].ID = 0
	}
	if len(subs.Skills) > 0 {
		if err := tx.Create(&subs.Skills).Error; err != nil {
			return err
		}
	}

	if err := tx.Where("parsed_resume_id = ?", parsedResumeID).Delete(&domain.Certification{}).Error; err != nil {
		return err
	}
	for i := range subs.Certifications {
		retarget(&subs.Certifications[i].ParsedResumeID)
		subs.Certifications[i].ID = 0
	}
	if len(subs.Certifications) > 0 {
		if err := tx.Create(&subs.Certifications).Error; err != nil {
			return err
		}
	}

	if err := tx.Where("parsed_resume_id = ?", parsedResumeID).Delete(&domain.Language{}).Error; err != nil {
		return err
	}
	for i := range subs.Languages {
		retarget(&subs.Languages[i].ParsedResumeID)
		subs.Languages[i].ID = 0
	}
	if len(subs.Languages) > 0 {
		if err := tx.Create(&subs.Languages).Error; err != nil {
			return err
		}
	}

	return nil
}

// GetProfile assembles the in-memory candidate profile from the candidate's
// most recent parsed resume and its sub-collections. Returns
// gorm.ErrRecordNotFound when the candidate has no parsed resume.
func (r *ResumeRepository) GetProfile(ctx context.Context, candidateID string) (*domain.CandidateProfile, error) {
	var parsed domain.ParsedResume
	err := r.db.WithContext(ctx).
		Joins("JOIN resumes ON resumes.id = parsed_resumes.resume_id").
		Where("resumes.candidate_id = ?", candidateID).
		Order("parsed_resumes.parsed_at DESC").
		First(&parsed).Error
	if err != nil {
		return nil, err
	}

	profile := &domain.CandidateProfile{
		CandidateID: candidateID,
		Summary:     parsed.Summary,
		Personal: domain.PersonalInfo{
			Name:            parsed.FullName,
			Email:           parsed.Email,
			Phone:           parsed.Phone,
			Address:         parsed.Address,
			BirthDate:       parsed.BirthDate,
			Gender:          parsed.Gender,
			MilitaryService: parsed.MilitaryService,
		},
	}

	if err := r.db.WithContext(ctx).Where("parsed_resume_id = ?", parsed.ID).
		Order("sort_order").Find(&profile.Experiences).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Where("parsed_resume_id = ?", parsed.ID).
		Order("sort_order").Find(&profile.Educations).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Where("parsed_resume_id = ?", parsed.ID).
		Order("sort_order").Find(&profile.Skills).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Where("parsed_resume_id = ?", parsed.ID).
		Order("sort_order").Find(&profile.Certifications).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Where("parsed_resume_id = ?", parsed.ID).
		Order("sort_order").Find(&profile.Languages).Error; err != nil {
		return nil, err
	}

	return profile, nil
}
