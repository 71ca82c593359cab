package storage

import (
	"context"
	"fmt"
	"io"
	"path"
)

// DocumentStore is the interface for resume document storage.
type DocumentStore interface {
	// Upload stores a document under the given key
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download retrieves a document by key
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a document
	Delete(ctx context.Context, key string) error

	// Exists checks whether a document is present
	Exists(ctx context.Context, key string) (bool, error)
}

// ResumeKey builds the object key for an uploaded resume file. Keys are
// namespaced per batch so a batch can be cleaned up with a prefix delete.
func ResumeKey(batchID, fileItemID, filename string) string {
	return fmt.Sprintf("batches/%s/%s%s", batchID, fileItemID, path.Ext(filename))
}
