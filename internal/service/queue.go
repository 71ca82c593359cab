package service

import (
	"context"
	"errors"

	"github.com/hirescan/hirescan/internal/logger"
)

// ErrQueueFull signals that the batch queue is saturated and the submission
// was rejected. Callers surface this as a retry-later condition instead of
// letting batches pile up in unbounded background work.
var ErrQueueFull = errors.New("batch queue is full")

// BatchRunner executes one batch to completion.
type BatchRunner interface {
	Run(ctx context.Context, batchID string) (*BatchStats, error)
}

// BatchResult is delivered on the per-batch result channel when a batch run
// finishes.
type BatchResult struct {
	BatchID string
	Stats   *BatchStats
	Err     error
}

// BatchQueue decouples batch submission from execution. Each accepted batch
// runs in its own goroutine; a fixed number of slots bounds how many batches
// may be queued or running at once, and Submit rejects with ErrQueueFull
// once they are taken.
type BatchQueue struct {
	slots  chan struct{}
	runner BatchRunner
	logger *logger.Logger
}

// NewBatchQueue creates a queue with the given capacity.
func NewBatchQueue(runner BatchRunner, capacity int, log *logger.Logger) *BatchQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &BatchQueue{
		slots:  make(chan struct{}, capacity),
		runner: runner,
		logger: log,
	}
}

// Submit enqueues a batch for execution. The returned channel receives
// exactly one BatchResult when the run finishes; it is buffered, so an
// uninterested caller can drop it.
// Parameters:
//   - batchID: ID of an already-persisted batch with pending file items.
//
// Returns:
//   - <-chan BatchResult: delivery channel for the run's outcome.
//   - error: ErrQueueFull when the queue is saturated.
func (q *BatchQueue) Submit(batchID string) (<-chan BatchResult, error) {
	select {
	case q.slots <- struct{}{}:
	default:
		return nil, ErrQueueFull
	}

	result := make(chan BatchResult, 1)

	// Batch execution outlives the submitting request, so the run gets a
	// fresh context carrying only the logger.
	ctx := q.logger.WithField(logger.FieldBatchID, batchID).WithContext(context.Background())

	go func() {
		defer func() { <-q.slots }()

		stats, err := q.runner.Run(ctx, batchID)
		result <- BatchResult{BatchID: batchID, Stats: stats, Err: err}
	}()

	return result, nil
}

// Pending reports how many slots are currently taken.
func (q *BatchQueue) Pending() int {
	return len(q.slots)
}
