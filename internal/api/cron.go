package api

import "net/http"

// ─── GET /api/cron/check-approvals ────────────────────────────────────────────

type cronResponse struct {
	Message string `json:"message"`
	Results any    `json:"results"`
}

// handleCheckApprovals runs one approval sweep on behalf of the external
// scheduler. Auth happens in requireCronSecret before this runs. The sweep
// isolates per-record failures, so the response is always a summary — only a
// failed store query produces an error status.
func (s *Server) handleCheckApprovals(w http.ResponseWriter, r *http.Request) {
	summary, err := s.sweeper.Run(r.Context())
	if err != nil {
		s.respondWorkflowErr(w, r, err)
		return
	}

	msg := "Cron job completed"
	if summary.Attempted == 0 {
		msg = "No new approved applications found."
	}

	respond(w, http.StatusOK, cronResponse{
		Message: msg,
		Results: summary,
	})
}
