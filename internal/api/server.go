// Package api implements the HTTP layer for the membership application
// workflow. Handlers are methods on *Server. The surface is deliberately
// thin: every handler validates, calls one workflow service, and translates
// the typed result or error into the JSON envelope the frontend expects.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swapspace/membership-backend/internal/workflow"
)

// Config holds values read from environment variables at startup.
type Config struct {
	// CronSecret is compared against the Authorization bearer token on the
	// cron endpoint.
	CronSecret string

	// Env is "production", "staging", or "development". Development skips
	// cron auth.
	Env string
}

// The handlers depend on the workflow services through narrow interfaces so
// tests can inject stubs. The concrete types are *workflow.Submitter,
// *workflow.Uploader, and *workflow.Sweeper.

// Submitter creates application records.
type Submitter interface {
	Submit(ctx context.Context, fields map[string]any) (workflow.SubmitResult, error)
}

// Uploader attaches photo batches and advances the record status.
type Uploader interface {
	AttachPhotos(ctx context.Context, recordID string, photos []workflow.Photo) (workflow.UploadResult, error)
}

// Sweeper runs one approval sweep.
type Sweeper interface {
	Run(ctx context.Context) (workflow.SweepSummary, error)
}

// Server holds all shared dependencies. Each handler file attaches methods
// to this type and uses only the fields it needs.
type Server struct {
	submitter Submitter
	uploader  Uploader
	sweeper   Sweeper

	cfg    Config
	logger *slog.Logger
}

// NewServer constructs the Server and wires the chi router. The returned
// http.Handler is ready to pass to http.ListenAndServe.
func NewServer(
	submitter Submitter,
	uploader Uploader,
	sweeper Sweeper,
	cfg Config,
	logger *slog.Logger,
) http.Handler {
	s := &Server{
		submitter: submitter,
		uploader:  uploader,
		sweeper:   sweeper,
		cfg:       cfg,
		logger:    logger,
	}

	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// ── Global middleware ─────────────────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)
	r.Use(middleware.Timeout(60 * time.Second))

	// The frontend expects this exact envelope on a wrong method.
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondErr(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	// ── Health & metrics ──────────────────────────────────────────────────────
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// ── API ───────────────────────────────────────────────────────────────────
	r.Route("/api", func(r chi.Router) {
		r.Post("/submit-application", s.handleSubmitApplication)
		r.Post("/upload-images", s.handleUploadImages)

		// Scheduler-only: bearer secret checked before anything else runs.
		r.With(s.requireCronSecret).Get("/cron/check-approvals", s.handleCheckApprovals)
	})

	return r
}
