package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"energyprofile/backend/services/dashboard-service/internal/dataset"
	"energyprofile/backend/services/dashboard-service/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeDatasetError maps dataset lifecycle errors to a blocking 503 notice.
func writeDatasetError(w http.ResponseWriter, err error) {
	var unavailable *service.DatasetUnavailableError
	switch {
	case errors.Is(err, service.ErrDatasetLoading):
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": string(dataset.StateLoading),
		})
	case errors.As(err, &unavailable):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": string(dataset.StateFailed),
			"error":  "energy data could not be loaded: " + unavailable.Err.Error(),
		})
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
