package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hirescan/hirescan/internal/domain"
	"github.com/hirescan/hirescan/internal/logger"
)

// DocumentSource is the slice of document storage the orchestrator reads.
type DocumentSource interface {
	Download(ctx context.Context, key string) (io.ReadCloser, error)
}

// TextExtractor converts a stored document into plain text.
type TextExtractor interface {
	Extract(filename string, r io.Reader) (string, error)
}

// ResumeInferrer is the slice of the inference client the orchestrator uses.
type ResumeInferrer interface {
	ParseResume(ctx context.Context, resumeText string) (json.RawMessage, error)
}

// CandidateStore resolves and creates candidate identity records.
type CandidateStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.Candidate, error)
	Create(ctx context.Context, c *domain.Candidate) error
}

// ParseStore persists parse outcomes.
type ParseStore interface {
	Create(ctx context.Context, resume *domain.Resume) error
	SaveParseResult(ctx context.Context, parsed *domain.ParsedResume, subs domain.SubCollections,
		candidate *domain.Candidate, event *domain.TimelineEvent) error
}

// ParseService turns one stored resume file into a candidate with structured
// data. Every step either fully commits or leaves no trace; the returned
// error carries enough detail for the FileItem's error message.
type ParseService struct {
	documents  DocumentSource
	extractor  TextExtractor
	inferrer   ResumeInferrer
	candidates CandidateStore
	store      ParseStore
}

// NewParseService creates a new ParseService.
func NewParseService(
	documents DocumentSource,
	extractor TextExtractor,
	inferrer ResumeInferrer,
	candidates CandidateStore,
	store ParseStore,
) *ParseService {
	return &ParseService{
		documents:  documents,
		extractor:  extractor,
		inferrer:   inferrer,
		candidates: candidates,
		store:      store,
	}
}

// ProcessFileItem parses one file of a batch end to end: download, text
// extraction, model inference, payload decomposition and the transactional
// save. The candidate is resolved by parsed email when present, otherwise a
// placeholder identity is created and backfilled later by re-parses.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - item: the file item to process; only read, never mutated.
//
// Returns:
//   - string: ID of the candidate the resume was attached to.
//   - error: non-nil when any step failed; nothing was persisted in that case.
func (s *ParseService) ProcessFileItem(ctx context.Context, item *domain.FileItem) (string, error) {
	log := logger.FromContext(ctx).WithFields(logger.Fields{
		logger.FieldFileItemID: item.ID,
		logger.FieldBatchID:    item.BatchID,
	})

	start := time.Now()

	body, err := s.documents.Download(ctx, item.StorageKey)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", item.StorageKey, err)
	}
	defer body.Close()

	text, err := s.extractor.Extract(item.Filename, body)
	if err != nil {
		return "", err
	}

	raw, err := s.inferrer.ParseResume(ctx, text)
	if err != nil {
		return "", err
	}

	payload, err := domain.DecodePayload(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	candidate, err := s.resolveCandidate(ctx, item, payload)
	if err != nil {
		return "", fmt.Errorf("resolve candidate: %w", err)
	}

	resume := &domain.Resume{
		ID:          uuid.New().String(),
		CandidateID: candidate.ID,
		StorageKey:  item.StorageKey,
		Filename:    item.Filename,
		FileSize:    item.FileSize,
	}
	if err := s.store.Create(ctx, resume); err != nil {
		return "", fmt.Errorf("create resume record: %w", err)
	}

	parsedID := uuid.New().String()
	info := payload.PersonalInfo()

	var payloadMap domain.JSONMap
	if err := json.Unmarshal(raw, &payloadMap); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	parsed := &domain.ParsedResume{
		ID:              parsedID,
		ResumeID:        resume.ID,
		RawText:         text,
		Payload:         payloadMap,
		FullName:        info.Name,
		Email:           info.Email,
		Phone:           info.Phone,
		Address:         info.Address,
		BirthDate:       info.BirthDate,
		Gender:          info.Gender,
		MilitaryService: info.MilitaryService,
		Summary:         payload.Summary,
	}

	merged, changed := domain.MergeIfEmpty(*candidate, info)
	var toSave *domain.Candidate
	if changed {
		toSave = &merged
	}

	event := &domain.TimelineEvent{
		ID:          uuid.New().String(),
		CandidateID: candidate.ID,
		EventType:   domain.EventResumeParsed,
		Description: "Resume parsed: " + item.Filename,
		Metadata: domain.JSONMap{
			"resume_id": resume.ID,
			"batch_id":  item.BatchID,
		},
	}

	if err := s.store.SaveParseResult(ctx, parsed, payload.SubCollections(parsedID), toSave, event); err != nil {
		return "", fmt.Errorf("save parse result: %w", err)
	}

	log.WithFields(logger.Fields{
		logger.FieldCandidateID: candidate.ID,
		logger.FieldResumeID:    resume.ID,
		logger.FieldDurationMs:  time.Since(start).Milliseconds(),
	}).Info("resume parsed")

	return candidate.ID, nil
}

// resolveCandidate finds the candidate a resume belongs to. Parsed email is
// the identity key; without one, each file gets its own placeholder identity
// so sibling uploads never collapse into a single record.
func (s *ParseService) resolveCandidate(ctx context.Context, item *domain.FileItem, payload *domain.ParsedPayload) (*domain.Candidate, error) {
	if payload.Email != "" {
		existing, err := s.candidates.GetByEmail(ctx, payload.Email)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	email := payload.Email
	if email == "" {
		email = fmt.Sprintf("candidate_%s@placeholder.local", item.ID)
	}

	candidate := &domain.Candidate{
		ID:    uuid.New().String(),
		Email: email,
		Name:  payload.Name,
	}
	if err := s.candidates.Create(ctx, candidate); err != nil {
		return nil, err
	}
	return candidate, nil
}
