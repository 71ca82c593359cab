package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Standard tracing fields propagated through the call chain via context.
const (
	// FieldRequestID is the HTTP request ID (UUID).
	FieldRequestID = "request_id"

	// FieldBatchID is the batch upload ID being processed.
	FieldBatchID = "batch_id"

	// FieldFileItemID is the file item ID within a batch.
	FieldFileItemID = "file_item_id"

	// FieldJobID is the job position ID in scoring and ranking flows.
	FieldJobID = "job_id"

	// FieldCandidateID is the candidate ID.
	FieldCandidateID = "candidate_id"

	// FieldResumeID is the resume ID in parse flows.
	FieldResumeID = "resume_id"

	// FieldComponent is the component/module name.
	FieldComponent = "component"
)

// Standard metric fields used for aggregation and alerting.
const (
	// FieldDurationMs is the execution duration in milliseconds.
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field.
	FieldCount = "count"

	// FieldStatus is the operation status.
	FieldStatus = "status"
)
