package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mesh-intelligence/kindling/pkg/types"
)

// mutationResult is the envelope returned by every mutating endpoint.
type mutationResult struct {
	Success bool  `json:"success"`
	ID      int64 `json:"id,omitempty"`
}

// apiError is the envelope returned on any failure.
type apiError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// jsonResponse writes data as JSON with the given status.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// jsonError writes the failure envelope.
func jsonError(w http.ResponseWriter, message string, status int) {
	jsonResponse(w, status, apiError{Success: false, Error: message})
}

// handleError maps the error taxonomy onto HTTP statuses. Validation
// and not-found errors carry their message to the client; anything else
// is sanitized to a generic message, the detail having been logged at
// the point of failure.
func handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrValidation):
		jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, types.ErrNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	default:
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}
