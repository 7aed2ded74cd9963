package workflow

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/swapspace/membership-backend/internal/airtable"
	"github.com/swapspace/membership-backend/internal/metrics"
)

// Photo is one binary payload from the caller's upload batch.
type Photo struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Uploader attaches photo batches to a record and advances its status.
type Uploader struct {
	store  airtable.Store
	logger *slog.Logger
}

// NewUploader constructs an Uploader.
func NewUploader(store airtable.Store, logger *slog.Logger) *Uploader {
	return &Uploader{store: store, logger: logger}
}

// UploadResult is the confirmed outcome of a fully-successful batch.
type UploadResult struct {
	RecordID string
	Uploaded int
}

// RecordIDFilter selects exactly one record by its immutable store ID.
func RecordIDFilter(recordID string) string {
	return "RECORD_ID() = '" + recordID + "'"
}

// AttachPhotos uploads every photo in the batch to the record's Photos
// field, then flips the record's status to Photos Received.
//
// The uploads run sequentially and the status transition is attempted only
// after the whole batch has succeeded: the cheap status flip is the commit
// marker gating the expensive, non-rollbackable uploads. A mid-batch failure
// aborts immediately with an UploadError and leaves the status untouched —
// already-persisted attachments stay (accepted inconsistency window, the
// store's attachment list is append-only anyway). If only the final
// transition fails, the StatusUpdateError tells the caller a retry of just
// the transition is safe.
//
// The flip itself is gated by the stage ordering: the record's current
// status is read back first, and a record a reviewer has already moved to
// Approved keeps that status — the photos still attach, only the
// now-regressive transition is skipped. Re-running a batch is therefore
// safe at any stage.
func (u *Uploader) AttachPhotos(ctx context.Context, recordID string, photos []Photo) (UploadResult, error) {
	if recordID == "" {
		return UploadResult{}, &ValidationError{Msg: "Missing recordId"}
	}
	if len(photos) == 0 {
		return UploadResult{}, &ValidationError{Msg: "No images uploaded"}
	}

	log := u.logger.With("record_id", recordID)

	for i, p := range photos {
		att := airtable.Attachment{
			Filename:    p.Filename,
			ContentType: p.ContentType,
			Data:        p.Data,
		}
		if att.ContentType == "" {
			att.ContentType = "image/jpeg"
		}
		if att.Filename == "" {
			att.Filename = "photo-" + uuid.NewString() + ".jpg"
		}

		log.Debug("upload: attaching photo",
			"index", i,
			"filename", att.Filename,
			"content_type", att.ContentType,
			"bytes", len(att.Data),
		)

		if _, err := u.store.UploadAttachment(ctx, recordID, FieldPhotos, att); err != nil {
			log.Error("upload: attachment rejected",
				"index", i,
				"filename", att.Filename,
				"error", err,
			)
			return UploadResult{RecordID: recordID, Uploaded: i},
				&UploadError{Index: i, Filename: att.Filename, Err: err}
		}
		metrics.AttachmentsUploaded.Inc()
	}

	current, err := u.currentStatus(ctx, recordID)
	if err != nil {
		log.Error("upload: all photos attached but status read failed",
			"uploaded", len(photos),
			"error", err,
		)
		return UploadResult{RecordID: recordID, Uploaded: len(photos)},
			&StatusUpdateError{RecordID: recordID, Uploaded: len(photos), Err: err}
	}
	if !CanAdvance(current, StatusPhotosReceived) {
		log.Info("upload: record already at or past this stage, status kept",
			"status", string(current),
			"uploaded", len(photos),
		)
		return UploadResult{RecordID: recordID, Uploaded: len(photos)}, nil
	}

	if _, err := u.store.PatchRecord(ctx, recordID, AdvanceFields(StatusPhotosReceived)); err != nil {
		log.Error("upload: all photos attached but status update failed",
			"uploaded", len(photos),
			"error", err,
		)
		return UploadResult{RecordID: recordID, Uploaded: len(photos)},
			&StatusUpdateError{RecordID: recordID, Uploaded: len(photos), Err: err}
	}

	log.Info("upload: batch complete", "uploaded", len(photos))
	return UploadResult{RecordID: recordID, Uploaded: len(photos)}, nil
}

// currentStatus reads the record's live status through the query API. An
// unknown record parses as Submitted, matching the store's unset-field
// default.
func (u *Uploader) currentStatus(ctx context.Context, recordID string) (Status, error) {
	recs, err := u.store.QueryRecords(ctx, RecordIDFilter(recordID))
	if err != nil {
		return "", err
	}
	if len(recs) == 0 {
		return StatusSubmitted, nil
	}
	return ParseStatus(recs[0].StringField(FieldStatus)), nil
}
