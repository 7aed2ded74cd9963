package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/swapspace/membership-backend/internal/airtable"
	"github.com/swapspace/membership-backend/internal/email"
	"github.com/swapspace/membership-backend/internal/metrics"
)

// ApprovedUnnotifiedFilter selects exactly the records the sweep owns:
// status Approved (whitespace-normalised) with the sent-flag still unset.
// Re-evaluating this filter on every run is the sole deduplication
// mechanism — there is no lock or queue, so a run that crashes after
// sending but before flagging can produce a duplicate on the next run.
// That window is accepted; the run_id in the logs makes overlapping or
// repeated runs attributable.
const ApprovedUnnotifiedFilter = "AND(TRIM({" + FieldStatus + "}) = '" +
	string(StatusApproved) + "', NOT({" + FieldApprovalEmailSent + "}))"

// Sweeper emails newly-approved applicants and flags them as notified.
type Sweeper struct {
	store  airtable.Store
	mailer email.Sender
	logger *slog.Logger
}

// NewSweeper constructs a Sweeper.
func NewSweeper(store airtable.Store, mailer email.Sender, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		store:  store,
		mailer: mailer,
		logger: logger,
	}
}

// SweepSummary is the per-run accounting. Attempted counts every matching
// record; each one lands in exactly one of Successes or Failures.
type SweepSummary struct {
	Attempted int `json:"attempted"`
	Successes int `json:"successes"`
	Failures  int `json:"failures"`
}

// Run executes one sweep. It is safe to call repeatedly and concurrently:
// every run re-queries the filter, and the flag is only set after a
// confirmed send (send-then-flag, never flag-then-send), so under normal
// operation no record is emailed twice.
//
// Per-record failures are isolated — a bad record is counted and skipped,
// never aborting the batch. Only the initial query can fail the run as a
// whole, because without it there is nothing to iterate.
func (s *Sweeper) Run(ctx context.Context) (SweepSummary, error) {
	// A sweep without a dispatcher could only fail every record. Reject up
	// front, before any store call — the submission path tolerates a nil
	// mailer (the ack is optional there), the sweep does not.
	if s.mailer == nil {
		return SweepSummary{}, errors.New("sweep: no email dispatcher configured, set RESEND_API_KEY")
	}

	log := s.logger.With("run_id", uuid.NewString())

	records, err := s.store.QueryRecords(ctx, ApprovedUnnotifiedFilter)
	if err != nil {
		return SweepSummary{}, fmt.Errorf("sweep: query approved records: %w", err)
	}

	summary := SweepSummary{Attempted: len(records)}
	if len(records) == 0 {
		log.Info("sweep: no approved applications awaiting notification")
		metrics.SweepRuns.Inc()
		return summary, nil
	}

	log.Info("sweep: processing approved applications", "count", len(records))

	for _, rec := range records {
		// Re-verify the precondition locally. The filter already guarantees
		// it at query time, but the store is external and a reviewer may have
		// moved the record between the query and now.
		if ParseStatus(rec.StringField(FieldStatus)) != StatusApproved {
			log.Warn("sweep: record no longer approved, skipping", "record_id", rec.ID)
			summary.Failures++
			metrics.SweepRecords.WithLabelValues("failure").Inc()
			continue
		}

		to := rec.StringField(FieldEmail)
		if to == "" {
			log.Warn("sweep: record has no email address, skipping", "record_id", rec.ID)
			summary.Failures++
			metrics.SweepRecords.WithLabelValues("failure").Inc()
			continue
		}

		// Send first. The flag is only ever set on top of a confirmed send.
		err := s.mailer.SendApproval(ctx, email.ApprovalParams{
			To:   to,
			Name: rec.StringField(FieldName),
		})
		if err != nil {
			log.Error("sweep: approval email failed", "record_id", rec.ID, "to", to, "error", err)
			summary.Failures++
			metrics.EmailsFailed.WithLabelValues("approval").Inc()
			metrics.SweepRecords.WithLabelValues("failure").Inc()
			continue
		}
		metrics.EmailsSent.WithLabelValues("approval").Inc()

		if _, err := s.store.PatchRecord(ctx, rec.ID, map[string]any{FieldApprovalEmailSent: true}); err != nil {
			// The email went out but the flag did not stick. The record stays
			// in the filter, so the next run may send a duplicate.
			log.Error("sweep: email sent but flag update failed",
				"record_id", rec.ID,
				"to", to,
				"error", err,
			)
			summary.Failures++
			metrics.SweepRecords.WithLabelValues("failure").Inc()
			continue
		}

		log.Info("sweep: applicant notified", "record_id", rec.ID, "to", to)
		summary.Successes++
		metrics.SweepRecords.WithLabelValues("success").Inc()
	}

	metrics.SweepRuns.Inc()
	return summary, nil
}
