package workflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/swapspace/membership-backend/internal/workflow"
)

func approvedRecord(email, name string) map[string]any {
	fields := map[string]any{workflow.FieldStatus: "Approved"}
	if email != "" {
		fields[workflow.FieldEmail] = email
	}
	if name != "" {
		fields[workflow.FieldName] = name
	}
	return fields
}

func TestSweepNoMatchesIsNoOp(t *testing.T) {
	store := newStubStore()
	store.addRecord("rec1", map[string]any{workflow.FieldStatus: "Photos Received"})
	mailer := &stubSender{}
	sw := workflow.NewSweeper(store, mailer, discardLogger())

	summary, err := sw.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Attempted != 0 || summary.Successes != 0 || summary.Failures != 0 {
		t.Errorf("summary = %+v, want all zero", summary)
	}
	if len(mailer.sent) != 0 || len(store.patches) != 0 {
		t.Error("no-op run must not send or patch anything")
	}
}

func TestSweepSendsThenFlags(t *testing.T) {
	store := newStubStore()
	store.addRecord("rec1", approvedRecord("a@x.com", "Ada"))
	mailer := &stubSender{}
	sw := workflow.NewSweeper(store, mailer, discardLogger())

	summary, err := sw.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Attempted != 1 || summary.Successes != 1 || summary.Failures != 0 {
		t.Errorf("summary = %+v", summary)
	}

	if len(mailer.sent) != 1 || mailer.sent[0].to != "a@x.com" || mailer.sent[0].name != "Ada" {
		t.Fatalf("sent = %+v", mailer.sent)
	}
	if len(store.patches) != 1 {
		t.Fatalf("patches = %d, want 1", len(store.patches))
	}
	if store.patches[0].id != "rec1" || store.patches[0].fields[workflow.FieldApprovalEmailSent] != true {
		t.Errorf("flag patch = %+v", store.patches[0])
	}
}

func TestSweepNormalisesPaddedStatus(t *testing.T) {
	store := newStubStore()
	store.addRecord("rec1", map[string]any{
		workflow.FieldStatus: "  Approved ",
		workflow.FieldEmail:  "a@x.com",
	})
	mailer := &stubSender{}
	sw := workflow.NewSweeper(store, mailer, discardLogger())

	summary, err := sw.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Successes != 1 {
		t.Errorf("summary = %+v: padded status should still match", summary)
	}
}

func TestSweepDispatchFailureLeavesFlagUnset(t *testing.T) {
	store := newStubStore()
	store.addRecord("recOK", approvedRecord("ok@x.com", "Ada"))
	store.addRecord("recBAD", approvedRecord("bad@x.com", "Bob"))
	mailer := &stubSender{approvalErrFor: "bad@x.com"}
	sw := workflow.NewSweeper(store, mailer, discardLogger())

	summary, err := sw.Run(context.Background())
	if err != nil {
		t.Fatalf("one record's failure must not abort the batch: %v", err)
	}
	if summary.Attempted != 2 || summary.Successes != 1 || summary.Failures != 1 {
		t.Errorf("summary = %+v, want {2 1 1}", summary)
	}

	// Only the successful record's flag is set.
	if len(store.patches) != 1 || store.patches[0].id != "recOK" {
		t.Errorf("patches = %+v, want exactly one for recOK", store.patches)
	}
	if store.records["recBAD"].BoolField(workflow.FieldApprovalEmailSent) {
		t.Error("flag must stay unset when the dispatch failed")
	}
}

func TestSweepRecordWithoutEmailCountsAsFailure(t *testing.T) {
	store := newStubStore()
	store.addRecord("rec1", approvedRecord("", "NoMail"))
	store.addRecord("rec2", approvedRecord("b@x.com", ""))
	mailer := &stubSender{}
	sw := workflow.NewSweeper(store, mailer, discardLogger())

	summary, err := sw.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Attempted != 2 || summary.Successes != 1 || summary.Failures != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].to != "b@x.com" {
		t.Errorf("sent = %+v", mailer.sent)
	}
	// Absent name is passed through empty; the template falls back to a
	// generic greeting.
	if mailer.sent[0].name != "" {
		t.Errorf("name = %q, want empty", mailer.sent[0].name)
	}
}

func TestSweepFlagPatchFailureCountsAsFailure(t *testing.T) {
	store := newStubStore()
	store.addRecord("rec1", approvedRecord("a@x.com", "Ada"))
	store.patchErr = errors.New("rate limited")
	mailer := &stubSender{}
	sw := workflow.NewSweeper(store, mailer, discardLogger())

	summary, err := sw.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// The email did go out; the stuck flag is an accepted duplicate risk.
	if len(mailer.sent) != 1 {
		t.Errorf("sent = %+v", mailer.sent)
	}
	if summary.Failures != 1 || summary.Successes != 0 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestSweepIsIdempotentAcrossRuns(t *testing.T) {
	store := newStubStore()
	store.addRecord("rec1", approvedRecord("a@x.com", "Ada"))
	store.addRecord("rec2", approvedRecord("b@x.com", "Bob"))
	mailer := &stubSender{}
	sw := workflow.NewSweeper(store, mailer, discardLogger())

	first, err := sw.Run(context.Background())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Successes != 2 {
		t.Fatalf("first run = %+v", first)
	}

	// The first run's flag updates removed both records from the filter, so
	// the second run sends nothing.
	second, err := sw.Run(context.Background())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Attempted != 0 {
		t.Errorf("second run = %+v, want zero attempted", second)
	}
	if len(mailer.sent) != 2 {
		t.Errorf("total emails = %d, want 2 (none on the second run)", len(mailer.sent))
	}
}

func TestSweepWithoutMailerFailsCleanly(t *testing.T) {
	store := newStubStore()
	store.addRecord("rec1", approvedRecord("a@x.com", "Ada"))
	sw := workflow.NewSweeper(store, nil, discardLogger())

	summary, err := sw.Run(context.Background())
	if err == nil {
		t.Fatal("a sweep with no dispatcher must fail, not panic mid-batch")
	}
	if summary.Attempted != 0 {
		t.Errorf("summary = %+v, want zero", summary)
	}
	// The run is rejected before it touches the store.
	if store.queries != 0 || len(store.patches) != 0 {
		t.Errorf("store calls = %d queries, %d patches, want none", store.queries, len(store.patches))
	}
}

func TestSweepQueryFailureFailsTheRun(t *testing.T) {
	store := newStubStore()
	store.queryErr = errors.New("store unavailable")
	sw := workflow.NewSweeper(store, &stubSender{}, discardLogger())

	if _, err := sw.Run(context.Background()); err == nil {
		t.Fatal("a failed query leaves nothing to iterate — the run must fail")
	}
}
