package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirescan/hirescan/internal/domain"
	"github.com/hirescan/hirescan/internal/extract"
)

// fakeBatchStore is an in-memory BatchStore with the same transition guards
// and counter semantics as the real one. Items whose filename contains
// claimErrSubstr fail their processing claim with an error.
type fakeBatchStore struct {
	mu             sync.Mutex
	batches        map[string]*domain.BatchUpload
	items          map[string]*domain.FileItem
	claimErrSubstr string
}

func newFakeBatchStore() *fakeBatchStore {
	return &fakeBatchStore{
		batches: make(map[string]*domain.BatchUpload),
		items:   make(map[string]*domain.FileItem),
	}
}

func (f *fakeBatchStore) CreateBatch(ctx context.Context, batch *domain.BatchUpload, items []domain.FileItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := *batch
	b.TotalFiles = len(items)
	f.batches[b.ID] = &b
	batch.TotalFiles = len(items)
	for i := range items {
		item := items[i]
		f.items[item.ID] = &item
	}
	return nil
}

func (f *fakeBatchStore) GetBatch(ctx context.Context, id string) (*domain.BatchUpload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.batches[id]
	if !ok {
		return nil, errors.New("batch not found")
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBatchStore) ListFileItems(ctx context.Context, batchID string) ([]domain.FileItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.FileItem
	for _, item := range f.items {
		if item.BatchID == batchID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (f *fakeBatchStore) MarkBatchProcessing(ctx context.Context, batchID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.batches[batchID]; ok && b.Status == domain.BatchStatusPending {
		b.Status = domain.BatchStatusProcessing
	}
	return nil
}

func (f *fakeBatchStore) MarkFileProcessing(ctx context.Context, itemID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[itemID]
	if !ok {
		return false, nil
	}
	if f.claimErrSubstr != "" && strings.Contains(item.Filename, f.claimErrSubstr) {
		return false, errors.New("claim failed: connection reset")
	}
	if item.Status != domain.FileStatusPending {
		return false, nil
	}
	item.Status = domain.FileStatusProcessing
	return true, nil
}

func (f *fakeBatchStore) MarkFileTerminal(ctx context.Context, itemID, batchID string, status domain.FileStatus, errorMessage, candidateID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[itemID]
	if !ok || (item.Status != domain.FileStatusProcessing && item.Status != domain.FileStatusPending) {
		return nil
	}
	item.Status = status
	item.ErrorMessage = errorMessage
	item.CandidateID = candidateID

	b := f.batches[batchID]
	b.ProcessedFiles++
	if status == domain.FileStatusFailed {
		b.FailedFiles++
	}
	return nil
}

func (f *fakeBatchStore) FinalizeBatch(ctx context.Context, batchID string, status domain.BatchStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.batches[batchID]; ok && b.Status == domain.BatchStatusProcessing {
		b.Status = status
	}
	return nil
}

// fakeDocs keeps uploaded documents in memory.
type fakeDocs struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeDocs() *fakeDocs {
	return &fakeDocs{objects: make(map[string][]byte)}
}

func (f *fakeDocs) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return nil
}

func (f *fakeDocs) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// fakeProcessor fails items whose filename contains "corrupt" with an
// extraction error and succeeds otherwise.
type fakeProcessor struct {
	mu        sync.Mutex
	processed []string
}

func (f *fakeProcessor) ProcessFileItem(ctx context.Context, item *domain.FileItem) (string, error) {
	f.mu.Lock()
	f.processed = append(f.processed, item.Filename)
	f.mu.Unlock()

	if strings.Contains(item.Filename, "corrupt") {
		return "", &extract.CorruptDocumentError{Filename: item.Filename, Err: errors.New("unexpected EOF")}
	}
	return "cand-" + item.ID, nil
}

func newTestBatchService(store BatchStore, docs DocumentSink, proc FileProcessor) *BatchService {
	return NewBatchService(store, docs, proc, &BatchConfig{
		Workers:      3,
		CallDelay:    time.Millisecond,
		MaxBatchSize: 100,
	})
}

func uploadFiles(names ...string) []BatchFile {
	files := make([]BatchFile, 0, len(names))
	for _, n := range names {
		files = append(files, BatchFile{
			Filename: n,
			Size:     4,
			Reader:   strings.NewReader("data"),
		})
	}
	return files
}

func TestSubmitRejectsUnsupportedPerFile(t *testing.T) {
	store := newFakeBatchStore()
	svc := newTestBatchService(store, newFakeDocs(), &fakeProcessor{})

	sub, err := svc.Submit(context.Background(), "user-1",
		uploadFiles("a.pdf", "b.docx", "notes.txt", "image.png", "c.pdf"))
	require.NoError(t, err)

	assert.Len(t, sub.Items, 3)
	assert.Len(t, sub.Rejected, 2)
	assert.Equal(t, 3, sub.Batch.TotalFiles)
	for _, r := range sub.Rejected {
		assert.Contains(t, r.Reason, "unsupported")
	}
}

func TestSubmitAllUnsupported(t *testing.T) {
	svc := newTestBatchService(newFakeBatchStore(), newFakeDocs(), &fakeProcessor{})

	_, err := svc.Submit(context.Background(), "", uploadFiles("a.txt", "b.csv"))
	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestSubmitTooLarge(t *testing.T) {
	svc := NewBatchService(newFakeBatchStore(), newFakeDocs(), &fakeProcessor{}, &BatchConfig{
		Workers:      1,
		MaxBatchSize: 2,
	})

	_, err := svc.Submit(context.Background(), "", uploadFiles("a.pdf", "b.pdf", "c.pdf"))
	assert.ErrorIs(t, err, ErrBatchTooLarge)
}

func TestRunPartialFailureCompletesBatch(t *testing.T) {
	// Five submitted, two rejected at submission, one of the accepted
	// three fails extraction: the batch still completes with
	// processed_files == total_files == 3.
	store := newFakeBatchStore()
	proc := &fakeProcessor{}
	svc := newTestBatchService(store, newFakeDocs(), proc)

	sub, err := svc.Submit(context.Background(), "user-1",
		uploadFiles("a.pdf", "b.docx", "corrupt.pdf", "notes.txt", "image.png"))
	require.NoError(t, err)
	require.Len(t, sub.Items, 3)

	stats, err := svc.Run(context.Background(), sub.Batch.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalFiles)
	assert.Equal(t, int64(3), stats.ProcessedFiles)
	assert.Equal(t, int64(1), stats.FailedFiles)

	batch, err := store.GetBatch(context.Background(), sub.Batch.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchStatusCompleted, batch.Status)
	assert.Equal(t, 3, batch.ProcessedFiles)
	assert.Equal(t, 1, batch.FailedFiles)
	assert.Equal(t, 100, batch.ProgressPercentage())

	items, err := store.ListFileItems(context.Background(), sub.Batch.ID)
	require.NoError(t, err)
	for _, item := range items {
		assert.True(t, item.Status.Terminal())
		if strings.Contains(item.Filename, "corrupt") {
			assert.Equal(t, domain.FileStatusFailed, item.Status)
			assert.Contains(t, item.ErrorMessage, "corrupt document")
		} else {
			assert.Equal(t, domain.FileStatusCompleted, item.Status)
			assert.Empty(t, item.ErrorMessage)
			assert.NotEmpty(t, item.CandidateID)
		}
	}
}

func TestRunAllFailedFailsBatch(t *testing.T) {
	store := newFakeBatchStore()
	svc := newTestBatchService(store, newFakeDocs(), &fakeProcessor{})

	sub, err := svc.Submit(context.Background(), "",
		uploadFiles("corrupt-1.pdf", "corrupt-2.pdf"))
	require.NoError(t, err)

	stats, err := svc.Run(context.Background(), sub.Batch.ID)
	require.NoError(t, err)
	assert.Equal(t, stats.TotalFiles, stats.FailedFiles)

	batch, err := store.GetBatch(context.Background(), sub.Batch.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchStatusFailed, batch.Status)
}

func TestRunProcessesEveryItemOnce(t *testing.T) {
	store := newFakeBatchStore()
	proc := &fakeProcessor{}
	svc := newTestBatchService(store, newFakeDocs(), proc)

	names := make([]string, 9)
	for i := range names {
		names[i] = fmt.Sprintf("resume-%d.pdf", i)
	}
	sub, err := svc.Submit(context.Background(), "", uploadFiles(names...))
	require.NoError(t, err)

	stats, err := svc.Run(context.Background(), sub.Batch.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(9), stats.ProcessedFiles)
	assert.Equal(t, int64(0), stats.FailedFiles)
	assert.Len(t, proc.processed, 9)
}

func TestRunTwiceProcessesEachItemOnce(t *testing.T) {
	// A second run over the same batch must skip terminal items instead of
	// re-parsing them: no duplicate inference calls, no counter drift.
	store := newFakeBatchStore()
	proc := &fakeProcessor{}
	svc := newTestBatchService(store, newFakeDocs(), proc)

	sub, err := svc.Submit(context.Background(), "", uploadFiles("a.pdf", "b.pdf"))
	require.NoError(t, err)

	first, err := svc.Run(context.Background(), sub.Batch.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), first.ProcessedFiles)
	assert.Equal(t, int64(0), first.SkippedFiles)

	second, err := svc.Run(context.Background(), sub.Batch.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), second.ProcessedFiles)
	assert.Equal(t, int64(0), second.FailedFiles)
	assert.Equal(t, int64(2), second.SkippedFiles)

	assert.Len(t, proc.processed, 2)

	batch, err := store.GetBatch(context.Background(), sub.Batch.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchStatusCompleted, batch.Status)
	assert.Equal(t, 2, batch.ProcessedFiles)
	assert.Equal(t, 0, batch.FailedFiles)
}

func TestRunClaimFailureParksItemFailed(t *testing.T) {
	// When the processing claim itself errors, the item must still reach a
	// terminal state instead of sticking in pending inside a finalized batch.
	store := newFakeBatchStore()
	store.claimErrSubstr = "flaky"
	proc := &fakeProcessor{}
	svc := newTestBatchService(store, newFakeDocs(), proc)

	sub, err := svc.Submit(context.Background(), "", uploadFiles("a.pdf", "flaky.pdf"))
	require.NoError(t, err)

	stats, err := svc.Run(context.Background(), sub.Batch.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.ProcessedFiles)
	assert.Equal(t, int64(1), stats.FailedFiles)

	items, err := store.ListFileItems(context.Background(), sub.Batch.ID)
	require.NoError(t, err)
	for _, item := range items {
		assert.True(t, item.Status.Terminal())
		if strings.Contains(item.Filename, "flaky") {
			assert.Equal(t, domain.FileStatusFailed, item.Status)
			assert.Contains(t, item.ErrorMessage, "mark file processing")
		}
	}
	assert.Len(t, proc.processed, 1)

	batch, err := store.GetBatch(context.Background(), sub.Batch.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BatchStatusCompleted, batch.Status)
	assert.Equal(t, 2, batch.ProcessedFiles)
	assert.Equal(t, 1, batch.FailedFiles)
	assert.Equal(t, 100, batch.ProgressPercentage())
}
