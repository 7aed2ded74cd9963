// Package email defines the interface for transactional email delivery and
// provides a Resend-backed implementation.
package email

import "context"

// ApprovalParams holds the data for the acceptance email the sweep sends
// when an application reaches Approved.
type ApprovalParams struct {
	To   string // recipient email address
	Name string // applicant's first name; may be empty
}

// AckParams holds the data for the best-effort acknowledgment sent right
// after a submission is stored.
type AckParams struct {
	To   string
	Name string
}

// Sender is the interface the workflow services use to send email.
// Tests inject a stub that records calls without hitting the network.
type Sender interface {
	// SendApproval sends the "welcome to SwapSpace" acceptance email.
	// Called by the sweep, and only before the sent-flag is set — never after.
	SendApproval(ctx context.Context, p ApprovalParams) error

	// SendSubmissionAck sends the "application received, send us photos"
	// acknowledgment. Failures here must never fail the submission.
	SendSubmissionAck(ctx context.Context, p AckParams) error
}
