// This file maps service results and errors onto JSON responses.

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"butce/internal/core"
	applog "butce/internal/log"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError translates domain errors into HTTP statuses: not-found maps to
// 404, validation failures to 400, everything else to 500 with a generic
// message so internals never leak to clients.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case isValidationError(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		slog.ErrorContext(r.Context(), "Request failed",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldError, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func isValidationError(err error) bool {
	for _, candidate := range []error{
		core.ErrMissingUsername,
		core.ErrEmptyCategory,
		core.ErrEmptyName,
		core.ErrEmptyDescription,
		core.ErrInvalidAmount,
		core.ErrInvalidRate,
		core.ErrSelfPartner,
	} {
		if errors.Is(err, candidate) {
			return true
		}
	}
	return false
}
