package domain

import "time"

// BatchStatus represents the lifecycle state of a batch upload.
// Transitions are monotonic: pending -> processing -> completed|failed.
type BatchStatus string

const (
	BatchStatusPending    BatchStatus = "pending"
	BatchStatusProcessing BatchStatus = "processing"
	BatchStatusCompleted  BatchStatus = "completed"
	BatchStatusFailed     BatchStatus = "failed"
)

// FileStatus represents the lifecycle state of a single file within a batch.
// Same shape as BatchStatus, one level down.
type FileStatus string

const (
	FileStatusPending    FileStatus = "pending"
	FileStatusProcessing FileStatus = "processing"
	FileStatusCompleted  FileStatus = "completed"
	FileStatusFailed     FileStatus = "failed"
)

// Terminal reports whether the file has reached a terminal state.
func (s FileStatus) Terminal() bool {
	return s == FileStatusCompleted || s == FileStatusFailed
}

// BatchUpload is an aggregate of files submitted together by one user.
// ProcessedFiles counts terminal items (completed or failed alike) and never
// exceeds TotalFiles.
type BatchUpload struct {
	ID             string      `gorm:"type:text;primaryKey" json:"id"`
	UserID         string      `gorm:"type:text;index:idx_batch_uploads_user" json:"user_id,omitempty"`
	Status         BatchStatus `gorm:"type:text;default:pending;index:idx_batch_uploads_status" json:"status"`
	TotalFiles     int         `gorm:"default:0" json:"total_files"`
	ProcessedFiles int         `gorm:"default:0" json:"processed_files"`
	FailedFiles    int         `gorm:"default:0" json:"failed_files"`
	StartedAt      *time.Time  `json:"started_at,omitempty"`
	CompletedAt    *time.Time  `json:"completed_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// TableName returns the database table name for BatchUpload.
func (BatchUpload) TableName() string {
	return "batch_uploads"
}

// ProgressPercentage returns the batch progress in whole percent.
func (b *BatchUpload) ProgressPercentage() int {
	if b.TotalFiles == 0 {
		return 0
	}
	return b.ProcessedFiles * 100 / b.TotalFiles
}

// FileItem is one file's processing record within a batch. CandidateID is a
// weak reference to the candidate created for it; it survives candidate
// deletion as a dangling ID.
type FileItem struct {
	ID           string     `gorm:"type:text;primaryKey" json:"id"`
	BatchID      string     `gorm:"type:text;not null;index:idx_file_items_batch" json:"batch_id"`
	StorageKey   string     `gorm:"type:text;not null" json:"storage_key"`
	Filename     string     `gorm:"type:text;not null" json:"filename"`
	FileSize     int64      `json:"file_size"`
	Status       FileStatus `gorm:"type:text;default:pending;index:idx_file_items_status" json:"status"`
	ErrorMessage string     `gorm:"type:text" json:"error_message,omitempty"`
	CandidateID  string     `gorm:"type:text" json:"candidate_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName returns the database table name for FileItem.
func (FileItem) TableName() string {
	return "file_items"
}
