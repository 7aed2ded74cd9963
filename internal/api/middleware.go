package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/swapspace/membership-backend/internal/airtable"
	"github.com/swapspace/membership-backend/internal/workflow"
)

// ─── CRON AUTH ────────────────────────────────────────────────────────────────

// requireCronSecret guards the cron endpoint with the scheduler's shared
// secret (`Authorization: Bearer <CRON_SECRET>`). The check runs before the
// handler, so an unauthorized request triggers zero external calls.
// Development mode skips the check so `curl localhost:8080/...` works.
func (s *Server) requireCronSecret(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Env == "development" {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		want := "Bearer " + s.cfg.CronSecret
		if s.cfg.CronSecret == "" ||
			subtle.ConstantTimeCompare([]byte(auth), []byte(want)) != 1 {
			s.logger.Error("unauthorized cron request", logField(r))
			respondErr(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ─── CORS ─────────────────────────────────────────────────────────────────────

// corsMiddleware handles preflight OPTIONS requests and sets CORS headers.
// The form is embedded on marketing pages, so the origin stays open — the
// endpoints carry no credentials and create data the submitter owns.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ─── LOGGER MIDDLEWARE ────────────────────────────────────────────────────────

// loggerMiddleware logs each request with method, path, status, and duration.
func (s *Server) loggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info("http",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// ─── RESPONSE HELPERS ─────────────────────────────────────────────────────────

// respond writes a JSON body with the given status code.
func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// respondErr writes the standard JSON error envelope.
func respondErr(w http.ResponseWriter, status int, message string) {
	respond(w, status, map[string]string{"error": message})
}

// respondWorkflowErr maps a workflow error onto the wire:
//
//   - ValidationError        → 400 with the message
//   - upstream store failure → the store's own status and message, verbatim,
//     including when wrapped inside an UploadError or StatusUpdateError
//   - anything else          → 500 without leaking internals
func (s *Server) respondWorkflowErr(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *workflow.ValidationError
	if errors.As(err, &vErr) {
		respondErr(w, http.StatusBadRequest, vErr.Msg)
		return
	}

	var upErr *workflow.UploadError
	if errors.As(err, &upErr) {
		respondErr(w, upstreamStatus(err, http.StatusBadGateway), upErr.Error())
		return
	}

	var stErr *workflow.StatusUpdateError
	if errors.As(err, &stErr) {
		respondErr(w, upstreamStatus(err, http.StatusBadGateway), stErr.Error())
		return
	}

	var apiErr *airtable.Error
	if errors.As(err, &apiErr) {
		respondErr(w, upstreamStatus(err, http.StatusBadGateway), apiErr.Message)
		return
	}

	s.logger.Error("internal error",
		"error", err,
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
	)
	respondErr(w, http.StatusInternalServerError, "Internal server error")
}

// upstreamStatus digs the store's HTTP status out of a wrapped error chain.
// Statuses below 400 (a malformed upstream reply) fall back to the default.
func upstreamStatus(err error, fallback int) int {
	var apiErr *airtable.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 {
		return apiErr.StatusCode
	}
	return fallback
}

// ─── REQUEST PARSING HELPERS ─────────────────────────────────────────────────

// decode JSON-decodes r.Body into dst. Returns false and writes 400 if the
// body is missing, malformed, or too large. Callers should return
// immediately on false.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB max
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// logField returns a slog.Attr using the request ID for correlation.
func logField(r *http.Request) slog.Attr {
	return slog.String("request_id", middleware.GetReqID(r.Context()))
}
