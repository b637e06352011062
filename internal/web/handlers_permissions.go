package web

import (
	"net/http"

	"github.com/JonMunkholm/cutdesk/internal/permissions"
)

type toggleRequest struct {
	Role       string `json:"role"`
	Permission string `json:"permission"`
}

type bulkRequest struct {
	Role     string `json:"role"`
	Category string `json:"category"`
	Enabled  bool   `json:"enabled"`
}

// handlePermissions returns the whole draft matrix, or one role's view when
// role is given.
func (s *Server) handlePermissions(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	if role == "" {
		respondOK(w, http.StatusOK, s.editor.State())
		return
	}

	view, err := s.editor.View(role, r.URL.Query().Get("category"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, view)
}

// handleTogglePermission flips one cell of the draft.
func (s *Server) handleTogglePermission(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	enabled, err := s.editor.Toggle(req.Role, req.Permission)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]any{
		"role":       req.Role,
		"permission": req.Permission,
		"enabled":    enabled,
		"dirty":      s.editor.Dirty(),
	})
}

// handleBulkPermissions enables or disables one category for one role.
func (s *Server) handleBulkPermissions(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.Category == "" {
		req.Category = permissions.CategoryAll
	}

	if _, err := s.editor.SetCategory(req.Role, req.Category, req.Enabled); err != nil {
		respondError(w, r, err)
		return
	}
	view, err := s.editor.View(req.Role, req.Category)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, view)
}

// handleResetPermissions discards the draft.
func (s *Server) handleResetPermissions(w http.ResponseWriter, r *http.Request) {
	s.editor.Reset(WithRequestMetadata(r.Context(), r))
	respondOK(w, http.StatusOK, s.editor.State())
}

// handleSavePermissions persists the draft. Column visibility follows the
// saved matrix from the next request on.
func (s *Server) handleSavePermissions(w http.ResponseWriter, r *http.Request) {
	ctx := WithRequestMetadata(r.Context(), r)
	if err := s.editor.Save(ctx); err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, s.editor.State())
}
