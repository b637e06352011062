package middleware

import (
	"encoding/json"
	"net/http"
)

// writeEnvelope answers with the API envelope shape for failures raised
// before a handler runs.
func writeEnvelope(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{code, message})
}
