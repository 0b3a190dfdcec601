package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"restoledger/internal/apperr"
	"restoledger/internal/store/postgres"
)

type errorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type errorResponse struct {
	Success bool           `json:"success"`
	Error   errorDetail    `json:"error"`
	Meta    map[string]any `json:"meta"`
}

func responseMeta() map[string]any {
	return map[string]any{
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		"request_id": uuid.NewString(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps any error onto the wire envelope. Typed apperr errors pass
// through; postgres failures are classified once here at the boundary
// (restaurant FK miss → 404, other constraint → 409); everything else is a
// generic 500 that never leaks internals.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	ae := classify(err)

	evt := log.Warn()
	if ae.Status >= 500 {
		evt = log.Error().Err(err)
	}
	evt.
		Str("error_code", ae.Code).
		Str("path", r.URL.Path).
		Str("method", r.Method).
		Msg("request failed")

	writeJSON(w, ae.Status, errorResponse{
		Error: errorDetail{Code: ae.Code, Message: ae.Message, Details: ae.Details},
		Meta: map[string]any{
			"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
			"path":      r.URL.Path,
		},
	})
}

func classify(err error) *apperr.Error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	if pgAE := postgres.ClassifyError(err); pgAE != nil {
		return pgAE
	}
	return &apperr.Error{Code: "INTERNAL_ERROR", Status: 500, Message: "An unexpected error occurred"}
}
