package web

// errors.go provides unified error response handling for the web layer.
// Technical details are logged server-side with the request ID; clients
// get a sanitized message and a stable code they can quote to support.

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Client-facing error codes.
const (
	codeNoFile       = "UPL001"
	codeBadExtension = "UPL002"
	codeTooLarge     = "UPL003"
	codeBadRequest   = "REQ001"
	codeNotFound     = "REQ002"
	codeStorage      = "DB001"
	codeInternal     = "SRV001"
)

// respondError logs the technical error and writes a sanitized JSON
// response with the given status and code.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", code,
		"request_id", middleware.GetReqID(r.Context()),
	}
	if err != nil {
		attrs = append(attrs, "error", err.Error())
	}
	slog.Error("request error", attrs...)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: sanitizeErrorMessage(message),
		Code:  code,
	})
}

// writeError writes a JSON error response without a code. Used by
// middleware that has no handler context.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respondError(w, r, status, "", message, nil)
}

// writeJSON encodes v as JSON and writes it to w.
// Encoding errors are logged since headers are already sent.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

// sanitizeErrorMessage strips fragments that could leak internals
// (connection strings, file paths) from client-facing messages.
func sanitizeErrorMessage(message string) string {
	lower := strings.ToLower(message)
	for _, marker := range []string{"postgres://", "password", "dial tcp", "/var/", "/tmp/", "/home/"} {
		if strings.Contains(lower, marker) {
			return "internal error"
		}
	}
	return message
}
