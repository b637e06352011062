package web

import (
	"net/http"

	"github.com/JonMunkholm/cutdesk/internal/analytics"
	"github.com/JonMunkholm/cutdesk/internal/core"
)

// handleStats returns the dashboard figures for the selected filters.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := analytics.Filters{
		Year:         q.Get("selectedYear"),
		Date:         q.Get("date"),
		Client:       q.Get("client"),
		ContractType: q.Get("contractType"),
	}

	stats, err := analytics.Apply(analytics.Baseline(), filters)
	if err != nil {
		badRequest(w, r, "selectedYear", err.Error())
		return
	}
	respondOK(w, http.StatusOK, map[string]any{
		"stats":   stats,
		"filters": filters,
	})
}

// handleHealth reports liveness and the write limiter state.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondOK(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"entities": s.service.Registry().Count(),
		"writes":   s.service.Limiter().Status(),
	})
}

// handleNotFound answers unknown routes in the envelope.
func handleNotFound(w http.ResponseWriter, r *http.Request) {
	respondError(w, r, core.ErrNotFound)
}
