package workflow

import "fmt"

// The services return typed errors so the HTTP layer can map each failure
// class to a status code without string matching. Upstream store and
// dispatcher failures are wrapped, never swallowed — errors.As digs them out
// where the upstream status code matters.

// ValidationError means the caller's input was missing or malformed. Nothing
// external was touched.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// UploadError means one attachment in a batch was rejected. Uploads before
// Index are already persisted; the status transition was never attempted, so
// the record's status is unchanged.
type UploadError struct {
	Index    int    // zero-based position in the batch
	Filename string // name of the failed file
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %d (%s) failed: %v", e.Index+1, e.Filename, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// StatusUpdateError means every upload in the batch succeeded but the final
// status transition failed. The attachments are durable; retrying just the
// transition is safe — nothing needs re-uploading.
type StatusUpdateError struct {
	RecordID string
	Uploaded int // attachments confirmed before the transition failed
	Err      error
}

func (e *StatusUpdateError) Error() string {
	return fmt.Sprintf("record %s: %d photos uploaded but status update failed: %v",
		e.RecordID, e.Uploaded, e.Err)
}

func (e *StatusUpdateError) Unwrap() error { return e.Err }
