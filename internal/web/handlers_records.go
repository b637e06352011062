package web

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/cutdesk/internal/core"
	"github.com/JonMunkholm/cutdesk/internal/web/templates"
)

// handleListEntities returns every registered entity, grouped for the
// navigation menu.
func (s *Server) handleListEntities(w http.ResponseWriter, r *http.Request) {
	respondOK(w, http.StatusOK, map[string]any{
		"entities": s.service.ListEntities(),
		"groups":   s.service.ListEntitiesByGroup(),
	})
}

// handleSchema returns the fields and the columns visible to the role.
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := s.service.Schema(entityParam(r), roleOf(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, schema)
}

// handleListRecords returns one page of records.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.List(r.Context(), entityParam(r), parseListParams(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, result, result.Pagination.Total)
}

// handleGetRecord returns one record.
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.Get(r.Context(), entityParam(r), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, view)
}

// handleCreateRecord submits a create sheet with the posted values.
func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	values, err := parseRecordValues(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	view, err := s.service.Create(ctx, entityParam(r), values)
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/entities/"+entityParam(r)+"/records/"+view.ID)
	respondSaved(w, r, http.StatusCreated, view)
}

// handleUpdateRecord submits an edit sheet. Fields left out keep their
// stored values.
func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	values, err := parseRecordValues(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	view, err := s.service.Update(ctx, entityParam(r), chi.URLParam(r, "id"), values)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondSaved(w, r, http.StatusOK, view)
}

// parseRecordValues reads submitted field values from JSON or, for the
// form fragment's save button, from form fields.
func parseRecordValues(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	if isFormPost(r) {
		req, err := parseFormRequest(w, r)
		return req.Changes, err
	}
	var values map[string]any
	err := decodeJSON(w, r, &values)
	return values, err
}

// respondSaved answers a successful create or update. HTMX clients get an
// event to refresh the table and close the sheet on.
func respondSaved(w http.ResponseWriter, r *http.Request, status int, view *core.RecordView) {
	if isHTMX(r) {
		w.Header().Set("HX-Trigger", "recordSaved")
	}
	respondOK(w, status, view)
}

// handleForm previews a create or edit sheet: changes are applied and
// derived fields recomputed without saving. HTMX requests get the form
// fragment back, everyone else the JSON view.
func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	req, err := parseFormRequest(w, r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	view, err := s.service.PreviewForm(r.Context(), entityParam(r), req)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.Form(view).Render(r.Context(), w); err != nil {
			respondError(w, r, err)
		}
		return
	}
	respondOK(w, http.StatusOK, view)
}

// parseFormRequest reads a FormRequest from JSON or from form fields.
// Form posts carry recordId and validate alongside the field values;
// repeated keys become lists and file parts become their filenames.
func parseFormRequest(w http.ResponseWriter, r *http.Request) (core.FormRequest, error) {
	if !isFormPost(r) {
		var req core.FormRequest
		err := decodeJSON(w, r, &req)
		return req, err
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	multipart := strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
	var err error
	if multipart {
		err = r.ParseMultipartForm(MaxBodySize)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return core.FormRequest{}, core.ValidationError{Field: "body", Message: "invalid form body"}
	}

	req := core.FormRequest{Changes: make(map[string]any, len(r.PostForm))}
	for key, values := range r.PostForm {
		switch {
		case key == "recordId":
			req.RecordID = strings.TrimSpace(values[0])
		case key == "validate":
			req.Validate = values[0] == "true"
		case len(values) == 1:
			req.Changes[key] = values[0]
		default:
			req.Changes[key] = checkboxValue(values)
		}
	}

	// Only names are kept; the file bodies are never stored.
	if multipart && r.MultipartForm != nil {
		for key, files := range r.MultipartForm.File {
			names := make([]string, 0, len(files))
			for _, fh := range files {
				names = append(names, fh.Filename)
			}
			req.Changes[key] = names
		}
	}
	return req, nil
}

// checkboxValue resolves repeated form keys. A checkbox posts its hidden
// "false" followed by "true" when ticked; anything else is a list.
func checkboxValue(values []string) any {
	if len(values) == 2 && values[0] == "false" && values[1] == "true" {
		return "true"
	}
	return values
}

// handleRequestDelete opens the delete confirmation and returns its token.
func (s *Server) handleRequestDelete(w http.ResponseWriter, r *http.Request) {
	pending, err := s.service.RequestDelete(r.Context(), entityParam(r), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, pending)
}

// handleDeleteRecord confirms a delete with the token from the request step.
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		badRequest(w, r, "token", "confirmation token is required")
		return
	}

	id := chi.URLParam(r, "id")
	ctx := WithRequestMetadata(r.Context(), r)
	if err := s.service.ConfirmDelete(ctx, entityParam(r), id, token); err != nil {
		respondError(w, r, err)
		return
	}
	respondOK(w, http.StatusOK, map[string]string{"id": id})
}
