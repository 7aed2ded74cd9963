package workflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/swapspace/membership-backend/internal/airtable"
	"github.com/swapspace/membership-backend/internal/workflow"
)

func TestSubmitRejectsEmptyFields(t *testing.T) {
	store := newStubStore()
	sub := workflow.NewSubmitter(store, &stubSender{}, discardLogger())

	for _, fields := range []map[string]any{nil, {}} {
		_, err := sub.Submit(context.Background(), fields)

		var vErr *workflow.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("fields=%v: error %T, want *ValidationError", fields, err)
		}
		if len(store.creates) != 0 {
			t.Error("no record should be created on invalid input")
		}
	}
}

func TestSubmitCreatesExactlyOneRecord(t *testing.T) {
	store := newStubStore()
	mailer := &stubSender{}
	sub := workflow.NewSubmitter(store, mailer, discardLogger())

	fields := map[string]any{"Email": "a@x.com", "Name": "Ada", "City": "London"}
	res, err := sub.Submit(context.Background(), fields)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if res.RecordID == "" {
		t.Error("result should carry the new record id")
	}
	if len(store.creates) != 1 {
		t.Fatalf("created %d records, want 1", len(store.creates))
	}
	for k, v := range fields {
		if store.creates[0][k] != v {
			t.Errorf("stored field %s = %v, want %v", k, store.creates[0][k], v)
		}
	}
	// Submission never injects a status — the store's default stands.
	if _, ok := store.creates[0][workflow.FieldStatus]; ok {
		t.Error("submit must not write a status field")
	}

	if !res.AckSent {
		t.Error("AckSent should be true after a successful dispatch")
	}
	if len(mailer.sent) != 1 || mailer.sent[0].kind != "ack" || mailer.sent[0].to != "a@x.com" {
		t.Errorf("sent = %+v, want one ack to a@x.com", mailer.sent)
	}
	if mailer.sent[0].name != "Ada" {
		t.Errorf("ack name = %q", mailer.sent[0].name)
	}
}

func TestSubmitAckFailureDoesNotFailSubmission(t *testing.T) {
	store := newStubStore()
	mailer := &stubSender{ackErr: errors.New("dispatcher down")}
	sub := workflow.NewSubmitter(store, mailer, discardLogger())

	res, err := sub.Submit(context.Background(), map[string]any{"Email": "a@x.com"})
	if err != nil {
		t.Fatalf("ack failure must not fail the submission: %v", err)
	}
	if res.AckSent {
		t.Error("AckSent should be false when the dispatch failed")
	}
	if res.RecordID == "" {
		t.Error("primary outcome should still report the record id")
	}
}

func TestSubmitWithoutMailerOrEmail(t *testing.T) {
	tests := []struct {
		name   string
		mailer *stubSender
		fields map[string]any
	}{
		{"no mailer configured", nil, map[string]any{"Email": "a@x.com"}},
		{"no email field", &stubSender{}, map[string]any{"Name": "Ada"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newStubStore()
			var sub *workflow.Submitter
			if tt.mailer == nil {
				sub = workflow.NewSubmitter(store, nil, discardLogger())
			} else {
				sub = workflow.NewSubmitter(store, tt.mailer, discardLogger())
			}

			res, err := sub.Submit(context.Background(), tt.fields)
			if err != nil {
				t.Fatalf("Submit: %v", err)
			}
			if res.AckSent {
				t.Error("AckSent should be false")
			}
			if tt.mailer != nil && len(tt.mailer.sent) != 0 {
				t.Errorf("no email should be sent, got %+v", tt.mailer.sent)
			}
		})
	}
}

func TestSubmitPropagatesStoreRejection(t *testing.T) {
	store := newStubStore()
	store.createErr = &airtable.Error{StatusCode: 422, Message: "Unknown field name: \"Cty\""}
	mailer := &stubSender{}
	sub := workflow.NewSubmitter(store, mailer, discardLogger())

	_, err := sub.Submit(context.Background(), map[string]any{"Cty": "London"})
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *airtable.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("upstream error should survive wrapping, got %T", err)
	}
	if apiErr.Message != "Unknown field name: \"Cty\"" {
		t.Errorf("message = %q", apiErr.Message)
	}
	if len(mailer.sent) != 0 {
		t.Error("no email after a failed create")
	}
}
