// Package airtable defines the interface for the remote record store holding
// application records and provides an Airtable REST implementation.
//
// Airtable owns all durable state: every component reads and writes records
// through this package and keeps nothing locally beyond the current call.
package airtable

import (
	"context"
	"fmt"
)

// Record is one row in the applications table. Fields is an open mapping —
// the schema lives in Airtable, not here.
type Record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// StringField returns the named field as a trimmed-of-nothing string, or ""
// when the field is absent or not a string.
func (r Record) StringField(name string) string {
	if v, ok := r.Fields[name].(string); ok {
		return v
	}
	return ""
}

// BoolField returns the named field as a bool; absent fields are false,
// matching Airtable's unchecked-checkbox behaviour.
func (r Record) BoolField(name string) bool {
	v, _ := r.Fields[name].(bool)
	return v
}

// Attachment is one binary file to attach to a record.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AttachmentMeta is what the content API reports back for an accepted upload.
type AttachmentMeta struct {
	RecordID    string
	CreatedTime string
}

// Store is the interface the workflow services use to talk to the record
// store. Tests inject a stub that records calls without hitting the network.
type Store interface {
	// QueryRecords returns every record matching the Airtable filter formula.
	QueryRecords(ctx context.Context, filterFormula string) ([]Record, error)

	// CreateRecord inserts a new record with the given fields and returns it
	// with its store-assigned ID.
	CreateRecord(ctx context.Context, fields map[string]any) (Record, error)

	// PatchRecord updates only the given fields on an existing record.
	PatchRecord(ctx context.Context, id string, fields map[string]any) (Record, error)

	// UploadAttachment appends one file to the named attachment field of a
	// record via Airtable's content host.
	UploadAttachment(ctx context.Context, recordID, field string, att Attachment) (AttachmentMeta, error)
}

// Error is a non-2xx response from Airtable. The upstream status code and
// message survive so handlers can propagate them verbatim.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("airtable: %s (status %d)", e.Message, e.StatusCode)
}
