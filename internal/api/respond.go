package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"chronoscope/pkg/apierr"
)

// errorBody is the JSON envelope for all API failures.
type errorBody struct {
	Error *apierr.Error `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps a taxonomy error onto the local HTTP surface. Non-taxonomy
// errors are wrapped as UNKNOWN first.
func writeError(w http.ResponseWriter, err error) {
	apiErr := apierr.As(err)
	writeJSON(w, apierr.HTTPStatus(apiErr.Kind), errorBody{Error: apiErr})
}
