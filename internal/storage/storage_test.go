package storage

import "testing"

func TestResumeKey(t *testing.T) {
	tests := []struct {
		batchID  string
		itemID   string
		filename string
		want     string
	}{
		{"b1", "i1", "resume.pdf", "batches/b1/i1.pdf"},
		{"b1", "i2", "cv.final.docx", "batches/b1/i2.docx"},
		{"b2", "i3", "noext", "batches/b2/i3"},
	}

	for _, tt := range tests {
		if got := ResumeKey(tt.batchID, tt.itemID, tt.filename); got != tt.want {
			t.Errorf("ResumeKey(%q, %q, %q) = %q, want %q",
				tt.batchID, tt.itemID, tt.filename, got, tt.want)
		}
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://s3.example.com", "s3.example.com"},
		{"http://minio:9000/", "minio:9000"},
		{"s3.example.com/some/path", "s3.example.com"},
		{"s3.example.com", "s3.example.com"},
	}

	for _, tt := range tests {
		if got := normalizeEndpoint(tt.in); got != tt.want {
			t.Errorf("normalizeEndpoint(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
