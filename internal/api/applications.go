package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/swapspace/membership-backend/internal/workflow"
)

// ─── POST /api/submit-application ─────────────────────────────────────────────

type submitRequest struct {
	// Fields is forwarded to the record store verbatim. The store enforces
	// the schema; the handler only requires the mapping to be non-empty.
	Fields map[string]any `json:"fields"`
}

type submitResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	AckSent bool   `json:"ack_sent"`
}

// handleSubmitApplication creates one application record from the form
// payload. The acknowledgment email is best-effort: its outcome is reported
// in ack_sent but never fails the request — the record already exists.
func (s *Server) handleSubmitApplication(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := s.submitter.Submit(r.Context(), req.Fields)
	if err != nil {
		s.respondWorkflowErr(w, r, err)
		return
	}

	respond(w, http.StatusOK, submitResponse{
		Success: true,
		ID:      res.RecordID,
		AckSent: res.AckSent,
	})
}

// ─── POST /api/upload-images ──────────────────────────────────────────────────

// Multipart size caps. Airtable's upload endpoint takes base64 JSON, so
// anything bigger than this would be rejected upstream anyway.
const (
	maxUploadBytes = 50 << 20 // whole request
	maxPhotoBytes  = 10 << 20 // single file
)

type uploadResponse struct {
	Success        bool   `json:"success"`
	RecordID       string `json:"recordId"`
	UploadedPhotos int    `json:"uploadedPhotos"`
}

// handleUploadImages accepts a multipart form with a recordId field and one
// or more files under "images", attaches them all, and advances the record
// to Photos Received. The status only moves when the whole batch succeeded;
// see workflow.Uploader for the transaction shape.
func (s *Server) handleUploadImages(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	recordID := r.FormValue("recordId")
	headers := r.MultipartForm.File["images"]

	photos, err := readPhotos(headers)
	if err != nil {
		respondErr(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.uploader.AttachPhotos(r.Context(), recordID, photos)
	if err != nil {
		s.respondWorkflowErr(w, r, err)
		return
	}

	respond(w, http.StatusOK, uploadResponse{
		Success:        true,
		RecordID:       res.RecordID,
		UploadedPhotos: res.Uploaded,
	})
}

// readPhotos drains the multipart file headers into memory in form order.
// Ordering matters downstream: an UploadError names the failing index.
func readPhotos(headers []*multipart.FileHeader) ([]workflow.Photo, error) {
	photos := make([]workflow.Photo, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > maxPhotoBytes {
			return nil, fmt.Errorf("file %q exceeds the %d MB limit", fh.Filename, maxPhotoBytes>>20)
		}

		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("could not read file %q", fh.Filename)
		}
		data, err := io.ReadAll(io.LimitReader(f, maxPhotoBytes))
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("could not read file %q", fh.Filename)
		}

		photos = append(photos, workflow.Photo{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return photos, nil
}
