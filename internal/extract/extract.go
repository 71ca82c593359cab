// Package extract converts uploaded resume documents into plain text.
package extract

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
)

// ErrUnsupportedFormat indicates a file extension outside the accepted set.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// CorruptDocumentError indicates the underlying parser could not open or
// read an accepted document type.
type CorruptDocumentError struct {
	Filename string
	Err      error
}

func (e *CorruptDocumentError) Error() string {
	return fmt.Sprintf("corrupt document %s: %v", e.Filename, e.Err)
}

func (e *CorruptDocumentError) Unwrap() error {
	return e.Err
}

// mimeTypes maps accepted extensions to their MIME types. Only PDF and
// Word-processor formats are accepted; everything else fails fast without
// touching the parser.
var mimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// Supported reports whether the filename carries an accepted extension.
func Supported(filename string) bool {
	_, ok := mimeTypes[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// MimeType returns the MIME type for an accepted filename, or empty string.
func MimeType(filename string) string {
	return mimeTypes[strings.ToLower(filepath.Ext(filename))]
}

// Extractor converts binary documents into best-effort plain text with page
// and paragraph order preserved. It holds no state and is safe for
// concurrent use on independent inputs.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the plain text of the document read from r.
// Parameters:
//   - filename: original filename; its extension selects the parser.
//   - r: document content.
//
// Returns:
//   - string: extracted text, structural markup stripped.
//   - error: ErrUnsupportedFormat for unaccepted extensions,
//     *CorruptDocumentError when the parser cannot read the document.
func (e *Extractor) Extract(filename string, r io.Reader) (string, error) {
	mime := MimeType(filename)
	if mime == "" {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}

	res, err := docconv.Convert(r, mime, true)
	if err != nil {
		return "", &CorruptDocumentError{Filename: filename, Err: err}
	}
	return res.Body, nil
}
