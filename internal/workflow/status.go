// Package workflow contains the application lifecycle orchestration: the
// status state machine, the submission and photo-upload services, and the
// approval sweep. All durable state lives in the record store — these
// services hold nothing between calls.
package workflow

import "strings"

// Airtable field names on the applications table.
const (
	FieldStatus            = "Application Status"
	FieldApprovalEmailSent = "Approval Email Sent"
	FieldEmail             = "Email"
	FieldName              = "Name"
	FieldPhotos            = "Photos"
)

// Status is one stage of the application lifecycle. Stages are ordered and
// transitions are monotonic — nothing in this system ever moves a record
// backwards.
type Status string

const (
	// StatusSubmitted is the implicit initial stage. Submission does not
	// write a status value; an absent field means Submitted.
	StatusSubmitted Status = "Submitted"

	// StatusPhotosReceived is set after every photo in a batch has been
	// attached.
	StatusPhotosReceived Status = "Photos Received"

	// StatusApproved is set by a human reviewer directly in the store. The
	// sweep polls for it; this system never writes it.
	StatusApproved Status = "Approved"
)

// stageRank orders the stages. Higher rank = further along.
var stageRank = map[Status]int{
	StatusSubmitted:      0,
	StatusPhotosReceived: 1,
	StatusApproved:       2,
}

// ParseStatus normalises a raw field value. Whitespace is trimmed and an
// empty value maps to Submitted, mirroring the store's unset-field default.
func ParseStatus(raw string) Status {
	s := Status(strings.TrimSpace(raw))
	if s == "" {
		return StatusSubmitted
	}
	return s
}

// Rank returns the stage's position in the lifecycle. Unknown statuses rank
// below Submitted so they are never treated as progress.
func (s Status) Rank() int {
	if r, ok := stageRank[s]; ok {
		return r
	}
	return -1
}

// CanAdvance reports whether moving from → to respects the monotonic stage
// ordering. Staying put is not an advance.
func CanAdvance(from, to Status) bool {
	return to.Rank() > from.Rank() && from.Rank() >= 0
}

// AdvanceFields returns the patch payload that moves a record to the given
// stage. The status flip is the commit marker for the upload transaction, so
// it must be the only field in the patch.
func AdvanceFields(to Status) map[string]any {
	return map[string]any{FieldStatus: string(to)}
}
