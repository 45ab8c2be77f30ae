// Package httputil provides shared HTTP response/request helpers for the
// wizard API handlers. Handlers use these instead of raw http.ResponseWriter
// calls so that JSON formatting and error envelopes stay consistent.
package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/ignite/direct-boost/internal/pkg/logger"
)

// ErrorResponse is the standard error envelope for all API errors.
// Details carries the aggregated issue list for validation failures.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("httputil: JSON encode failed", "error", err)
	}
}

// OK writes a 200 response with the given data.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Error writes a JSON error response. Use for client errors (4xx).
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorResponse{Error: message})
}

// BadRequest writes a 400 error.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// ValidationFailed writes a 400 error carrying the full issue list.
func ValidationFailed(w http.ResponseWriter, message string, issues []string) {
	JSON(w, http.StatusBadRequest, ErrorResponse{Error: message, Details: issues})
}

// BadGateway writes a 502 error. Used when the Direct Boost engine call
// fails; the real error is logged upstream, the client gets the generic
// "Failed to …" message only.
func BadGateway(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadGateway, message)
}

// InternalError writes a 500 error. Logs the real error but returns a
// generic message to the client.
func InternalError(w http.ResponseWriter, err error) {
	logger.Error("httputil: internal error", "error", err)
	Error(w, http.StatusInternalServerError, "internal server error")
}

// Decode reads JSON from the request body into dst.
// Returns false and writes a 400 response if parsing fails.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		BadRequest(w, "invalid JSON: "+err.Error())
		return false
	}
	return true
}
