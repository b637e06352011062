package web

// errors.go writes every response in the REST envelope:
//
//	{"code": "SUCCESS", "data": ..., "message": "...", "total": 42, "errors": {...}}
//
// Clients branch on code, not on the HTTP status. Failures are:
//   - Logged with full technical details for debugging (server-side)
//   - Mapped via core.MapError to a user message, a support code and a tag
//   - Returned as an HTML alert fragment when the request came from HTMX

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/cutdesk/internal/core"
	"github.com/JonMunkholm/cutdesk/internal/logging"
	"github.com/JonMunkholm/cutdesk/internal/web/templates"
)

// Envelope is the body of every API response.
type Envelope struct {
	Code    string            `json:"code"`
	Data    any               `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Total   *int64            `json:"total,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	Action  string            `json:"action,omitempty"`
	Support string            `json:"supportCode,omitempty"`
}

// respondOK writes a SUCCESS envelope.
func respondOK(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Envelope{Code: core.TagSuccess, Data: data})
}

// respondList writes a SUCCESS envelope carrying the unpaged total.
func respondList(w http.ResponseWriter, data any, total int64) {
	writeJSON(w, http.StatusOK, Envelope{Code: core.TagSuccess, Data: data, Total: &total})
}

// respondError logs err and writes its mapped envelope, or an alert
// fragment for HTMX requests.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	msg := core.MapError(err)

	level := slog.LevelWarn
	if !core.IsUserFacing(err) {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", msg.Status,
		"error", err.Error(),
		"code", msg.Code,
	)

	if isHTMX(r) {
		renderErrorPartial(w, r, msg)
		return
	}

	env := Envelope{
		Code:    msg.Tag,
		Message: msg.Message,
		Action:  msg.Action,
		Support: msg.Code,
	}
	var ves core.ValidationErrors
	if errors.As(err, &ves) {
		env.Errors = ves.Fields()
	} else {
		var ve core.ValidationError
		if errors.As(err, &ve) {
			env.Errors = map[string]string{ve.Field: ve.Message}
		}
	}
	writeJSON(w, msg.Status, env)
}

// badRequest answers a malformed request with a field error.
func badRequest(w http.ResponseWriter, r *http.Request, field, message string) {
	respondError(w, r, core.ValidationError{Field: field, Message: message})
}

// renderErrorPartial renders an HTMX-compatible error fragment.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("HX-Reswap", "innerHTML")
	w.Header().Set("HX-Retarget", "#alerts")
	w.WriteHeader(msg.Status)
	if err := templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Warn("render error alert failed", "error", err)
	}
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
