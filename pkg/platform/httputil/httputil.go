// Package httputil writes JSON responses in the shape every endpoint uses.
package httputil

import (
	"encoding/json"
	"net/http"
)

// Error codes carried in the "error" field of error responses.
const (
	CodeBadRequest = "bad_request"
	CodeNotFound   = "not_found"
	CodeUpstream   = "upstream_error"
	CodeTimeout    = "upstream_timeout"
	CodeInternal   = "internal_error"
	CodeUnhealthy  = "unhealthy"
)

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes {"error": code, "error_description": description}.
// Internal errors never carry a description.
func WriteError(w http.ResponseWriter, status int, code, description string) {
	body := map[string]string{"error": code}
	if description != "" && status < http.StatusInternalServerError {
		body["error_description"] = description
	}
	WriteJSON(w, status, body)
}
