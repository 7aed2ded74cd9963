package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/swapspace/membership-backend/internal/airtable"
	"github.com/swapspace/membership-backend/internal/email"
	"github.com/swapspace/membership-backend/internal/metrics"
)

// Submitter creates new application records and sends the best-effort
// acknowledgment email.
type Submitter struct {
	store  airtable.Store
	mailer email.Sender // nil disables the acknowledgment email
	logger *slog.Logger
}

// NewSubmitter constructs a Submitter. Pass a nil mailer when no dispatcher
// is configured — the acknowledgment is feature-flagged by its presence.
func NewSubmitter(store airtable.Store, mailer email.Sender, logger *slog.Logger) *Submitter {
	return &Submitter{
		store:  store,
		mailer: mailer,
		logger: logger,
	}
}

// SubmitResult reports the primary and secondary outcomes independently:
// RecordID is the durable effect, AckSent the best-effort one. An
// acknowledgment failure shows up as AckSent=false plus a log line and a
// metric — never as an error from Submit.
type SubmitResult struct {
	RecordID string
	AckSent  bool
}

// Submit creates exactly one record with the given fields. No field-level
// validation happens here: the store enforces its own schema and its
// rejection message propagates verbatim. There is no retry — the caller
// resubmits.
func (s *Submitter) Submit(ctx context.Context, fields map[string]any) (SubmitResult, error) {
	if len(fields) == 0 {
		return SubmitResult{}, &ValidationError{Msg: "Missing form fields"}
	}

	rec, err := s.store.CreateRecord(ctx, fields)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("submit: create record: %w", err)
	}

	res := SubmitResult{RecordID: rec.ID}

	// The record is durable from here on. The acknowledgment email must never
	// overturn that, so its failure is logged and counted, not returned.
	to, _ := fields[FieldEmail].(string)
	if s.mailer == nil || to == "" {
		return res, nil
	}

	name, _ := fields[FieldName].(string)
	if err := s.mailer.SendSubmissionAck(ctx, email.AckParams{To: to, Name: name}); err != nil {
		metrics.EmailsFailed.WithLabelValues("ack").Inc()
		s.logger.Error("submit: acknowledgment email failed",
			"record_id", rec.ID,
			"to", to,
			"error", err,
		)
		return res, nil
	}

	metrics.EmailsSent.WithLabelValues("ack").Inc()
	s.logger.Info("submit: acknowledgment email sent", "record_id", rec.ID, "to", to)
	res.AckSent = true
	return res, nil
}
