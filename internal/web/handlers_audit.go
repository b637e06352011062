package web

import (
	"net/http"

	"github.com/JonMunkholm/cutdesk/internal/core"
)

// maxAuditPageSize caps the limit parameter of the audit log.
const maxAuditPageSize = 500

// handleAuditLog returns audit entries, newest first, filtered by entity,
// action and a from/to date range.
func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	page := parseIntParam(r, "page", 1)
	pageSize := min(parseIntParam(r, "limit", core.DefaultAuditLimit), maxAuditPageSize)

	filter := core.AuditLogFilter{
		Entity: r.URL.Query().Get("entity"),
		Action: core.AuditAction(r.URL.Query().Get("action")),
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	}

	var err error
	if filter.StartTime, err = parseDateParam(r, "from", false); err != nil {
		respondError(w, r, err)
		return
	}
	if filter.EndTime, err = parseDateParam(r, "to", true); err != nil {
		respondError(w, r, err)
		return
	}

	entries, total, err := s.service.GetAuditLog(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if entries == nil {
		entries = []core.AuditEntry{}
	}
	respondList(w, entries, total)
}
