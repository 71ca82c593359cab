package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/hirescan/hirescan/internal/domain"
	"github.com/hirescan/hirescan/internal/extract"
	"github.com/hirescan/hirescan/internal/logger"
	"github.com/hirescan/hirescan/internal/storage"
)

// ErrBatchTooLarge signals a submission exceeding the per-batch file limit.
var ErrBatchTooLarge = errors.New("batch exceeds maximum file count")

// ErrEmptyBatch signals a submission with no processable files.
var ErrEmptyBatch = errors.New("batch contains no supported files")

// BatchStore is the slice of persistence the coordinator drives.
type BatchStore interface {
	CreateBatch(ctx context.Context, batch *domain.BatchUpload, items []domain.FileItem) error
	GetBatch(ctx context.Context, id string) (*domain.BatchUpload, error)
	ListFileItems(ctx context.Context, batchID string) ([]domain.FileItem, error)
	MarkBatchProcessing(ctx context.Context, batchID string) error
	MarkFileProcessing(ctx context.Context, itemID string) (bool, error)
	MarkFileTerminal(ctx context.Context, itemID, batchID string, status domain.FileStatus,
		errorMessage, candidateID string) error
	FinalizeBatch(ctx context.Context, batchID string, status domain.BatchStatus) error
}

// FileProcessor parses one file item end to end.
type FileProcessor interface {
	ProcessFileItem(ctx context.Context, item *domain.FileItem) (string, error)
}

// DocumentSink is the slice of document storage submissions write to.
type DocumentSink interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
}

// BatchConfig holds coordinator tuning.
type BatchConfig struct {
	// Workers caps concurrent parses per batch.
	Workers int
	// CallDelay is slept by each worker before its inference call so the
	// aggregate call rate stays under the provider's per-minute ceiling.
	CallDelay time.Duration
	// MaxBatchSize is the per-submission file limit.
	MaxBatchSize int
}

// BatchService drives parsing for every file of a batch under concurrency
// and rate limits. Batches are independent; each run owns its own worker
// pool and there is no global lock serializing them.
type BatchService struct {
	store     BatchStore
	documents DocumentSink
	processor FileProcessor
	workers   int
	callDelay time.Duration
	maxFiles  int
}

// NewBatchService creates a new batch coordinator.
func NewBatchService(store BatchStore, documents DocumentSink, processor FileProcessor, cfg *BatchConfig) *BatchService {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 3
	}
	maxFiles := cfg.MaxBatchSize
	if maxFiles <= 0 {
		maxFiles = 100
	}
	return &BatchService{
		store:     store,
		documents: documents,
		processor: processor,
		workers:   workers,
		callDelay: cfg.CallDelay,
		maxFiles:  maxFiles,
	}
}

// BatchFile is one uploaded file of a submission.
type BatchFile struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

// RejectedFile records a file refused at submission time, before any
// FileItem was created for it.
type RejectedFile struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// Submission is the outcome of accepting a batch. Rejected files never enter
// the batch; TotalFiles counts accepted files only.
type Submission struct {
	Batch    *domain.BatchUpload
	Items    []domain.FileItem
	Rejected []RejectedFile
}

// Submit validates a set of uploaded files, stores the accepted ones and
// persists the batch with its file items in pending state. Files with
// unsupported extensions are rejected here, per file; the rest proceed.
// Execution is not started; the caller hands the batch to the queue.
// Parameters:
//   - ctx: request context.
//   - userID: submitting user, may be empty.
//   - files: uploaded files; readers are consumed for accepted files only.
//
// Returns:
//   - *Submission: the persisted batch, its items and the rejected files.
//   - error: ErrBatchTooLarge, ErrEmptyBatch, or a storage/persistence error.
func (s *BatchService) Submit(ctx context.Context, userID string, files []BatchFile) (*Submission, error) {
	if len(files) > s.maxFiles {
		return nil, fmt.Errorf("%w: %d files (limit %d)", ErrBatchTooLarge, len(files), s.maxFiles)
	}

	batchID := uuid.New().String()
	var items []domain.FileItem
	var rejected []RejectedFile

	for _, f := range files {
		if !extract.Supported(f.Filename) {
			rejected = append(rejected, RejectedFile{
				Filename: f.Filename,
				Reason:   extract.ErrUnsupportedFormat.Error(),
			})
			continue
		}

		itemID := uuid.New().String()
		key := storage.ResumeKey(batchID, itemID, f.Filename)
		if err := s.documents.Upload(ctx, key, f.Reader, f.Size, extract.MimeType(f.Filename)); err != nil {
			return nil, fmt.Errorf("upload %s: %w", f.Filename, err)
		}

		items = append(items, domain.FileItem{
			ID:         itemID,
			BatchID:    batchID,
			StorageKey: key,
			Filename:   f.Filename,
			FileSize:   f.Size,
			Status:     domain.FileStatusPending,
		})
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("%w: %d files rejected", ErrEmptyBatch, len(rejected))
	}

	batch := &domain.BatchUpload{
		ID:     batchID,
		UserID: userID,
		Status: domain.BatchStatusPending,
	}
	if err := s.store.CreateBatch(ctx, batch, items); err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}

	logger.FromContext(ctx).WithFields(logger.Fields{
		logger.FieldBatchID: batchID,
		"accepted":          len(items),
		"rejected":          len(rejected),
	}).Info("Batch submitted")

	return &Submission{Batch: batch, Items: items, Rejected: rejected}, nil
}

// BatchStats holds counters for one batch run. Workers update them through
// the results collector; reads during the run must use atomic loads.
// SkippedFiles counts items another run already claimed or finished; a
// replayed run reports them here instead of processing them again.
type BatchStats struct {
	TotalFiles     int64
	ProcessedFiles int64
	FailedFiles    int64
	SkippedFiles   int64
	StartTime      time.Time
	EndTime        time.Time
}

type fileResult struct {
	itemID  string
	skipped bool
	err     error
}

// Run processes every pending file of a batch with a bounded worker pool and
// finalizes the batch status. One file's failure never aborts its siblings;
// it is recorded on the item and counted. Implements BatchRunner.
// Parameters:
//   - ctx: run context; not the submitting request's context.
//   - batchID: the batch to execute.
//
// Returns:
//   - *BatchStats: counters for the run, also when the run errored midway.
//   - error: non-nil only for infrastructural failures before the pool ran.
func (s *BatchService) Run(ctx context.Context, batchID string) (*BatchStats, error) {
	log := logger.FromContext(ctx).WithField(logger.FieldBatchID, batchID)

	stats := &BatchStats{StartTime: time.Now()}

	if err := s.store.MarkBatchProcessing(ctx, batchID); err != nil {
		return stats, fmt.Errorf("mark batch processing: %w", err)
	}

	items, err := s.store.ListFileItems(ctx, batchID)
	if err != nil {
		return stats, fmt.Errorf("list file items: %w", err)
	}
	stats.TotalFiles = int64(len(items))

	log.WithField(logger.FieldCount, len(items)).Info("Starting batch run")

	itemsChan := make(chan domain.FileItem, s.workers*2)
	resultsChan := make(chan *fileResult, s.workers*2)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.worker(ctx, batchID, itemsChan, resultsChan)
		}()
	}

	done := make(chan struct{})
	go func() {
		for result := range resultsChan {
			if result.skipped {
				atomic.AddInt64(&stats.SkippedFiles, 1)
				continue
			}
			atomic.AddInt64(&stats.ProcessedFiles, 1)
			if result.err != nil {
				atomic.AddInt64(&stats.FailedFiles, 1)
				log.WithField(logger.FieldFileItemID, result.itemID).
					WithError(result.err).Error("Failed to process file")
			}
		}
		close(done)
	}()

	for _, item := range items {
		itemsChan <- item
	}
	close(itemsChan)
	wg.Wait()

	close(resultsChan)
	<-done

	stats.EndTime = time.Now()

	// Completed if at least one file succeeded; failed only when every
	// attempted file failed. An empty batch completes vacuously, and a
	// replay that skipped everything finalizes nothing new.
	attempted := stats.TotalFiles - stats.SkippedFiles
	status := domain.BatchStatusCompleted
	if attempted > 0 && stats.FailedFiles == attempted {
		status = domain.BatchStatusFailed
	}
	if err := s.store.FinalizeBatch(ctx, batchID, status); err != nil {
		return stats, fmt.Errorf("finalize batch: %w", err)
	}

	log.WithFields(logger.Fields{
		"total":            stats.TotalFiles,
		"processed":        stats.ProcessedFiles,
		"failed":           stats.FailedFiles,
		"skipped":          stats.SkippedFiles,
		logger.FieldStatus: string(status),
		"duration":         stats.EndTime.Sub(stats.StartTime).String(),
	}).Info("Batch run finished")

	return stats, nil
}

func (s *BatchService) worker(ctx context.Context, batchID string, items <-chan domain.FileItem, results chan<- *fileResult) {
	for item := range items {
		result := &fileResult{itemID: item.ID}

		claimed, err := s.store.MarkFileProcessing(ctx, item.ID)
		if err != nil {
			// Park the item as failed so it still reaches a terminal
			// state and the batch counters account for it.
			result.err = fmt.Errorf("mark file processing: %w", err)
			if markErr := s.store.MarkFileTerminal(ctx, item.ID, batchID,
				domain.FileStatusFailed, result.err.Error(), ""); markErr != nil {
				result.err = fmt.Errorf("%w; mark file terminal: %v", result.err, markErr)
			}
			results <- result
			continue
		}
		if !claimed {
			// Another run already claimed or finished this item.
			result.skipped = true
			results <- result
			continue
		}

		// Rate smoothing ahead of the inference call.
		if s.callDelay > 0 {
			select {
			case <-time.After(s.callDelay):
			case <-ctx.Done():
			}
		}

		candidateID, err := s.processor.ProcessFileItem(ctx, &item)

		status := domain.FileStatusCompleted
		errorMessage := ""
		if err != nil {
			status = domain.FileStatusFailed
			errorMessage = err.Error()
			result.err = err
		}

		if markErr := s.store.MarkFileTerminal(ctx, item.ID, batchID, status, errorMessage, candidateID); markErr != nil {
			if result.err == nil {
				result.err = fmt.Errorf("mark file terminal: %w", markErr)
			}
		}

		results <- result
	}
}
