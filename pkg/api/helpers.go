package api

import (
	"encoding/json"
	"net/http"

	"github.com/netobserve/topoview/pkg/logging"
)

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error body.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// requestDecoder decodes and validates request bodies with a fluent
// interface for the common request handling patterns.
type requestDecoder struct {
	r          *http.Request
	w          http.ResponseWriter
	err        error
	statusCode int
}

func newRequestDecoder(w http.ResponseWriter, r *http.Request) *requestDecoder {
	return &requestDecoder{r: r, w: w}
}

// DecodeJSON decodes the request body into v. Check HasError after calling.
func (rd *requestDecoder) DecodeJSON(v any) *requestDecoder {
	if rd.err != nil {
		return rd
	}
	if err := json.NewDecoder(rd.r.Body).Decode(v); err != nil {
		rd.err = err
		rd.statusCode = http.StatusBadRequest
	}
	return rd
}

// Validate runs fn and records a 400 on failure.
func (rd *requestDecoder) Validate(fn func() error) *requestDecoder {
	if rd.err != nil {
		return rd
	}
	if err := fn(); err != nil {
		rd.err = err
		rd.statusCode = http.StatusBadRequest
	}
	return rd
}

// HasError writes the pending error response and reports whether one
// occurred.
func (rd *requestDecoder) HasError() bool {
	if rd.err == nil {
		return false
	}
	writeError(rd.w, rd.statusCode, rd.err.Error())
	return true
}

// sanitizeError logs the full error and returns a user-safe message.
func (s *Server) sanitizeError(err error, operation string) string {
	s.logger.Error(operation+" failed", logging.Error(err))
	return operation + " failed"
}
