package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pepsifleet/fleet-maintenance/internal/metrics"
	log "github.com/sirupsen/logrus"
)

// errorResponse is the envelope every failing endpoint returns.
type errorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			log.WithError(err).Error("Failed to encode response")
		}
	}
}

func respondError(w http.ResponseWriter, status int, recurso, msg string) {
	metrics.RequestErrorsTotal.WithLabelValues(recurso).Inc()
	respondJSON(w, status, errorResponse{Error: msg})
}

// respondInternal logs the cause server-side and returns a generic message.
func respondInternal(w http.ResponseWriter, recurso string, err error) {
	log.WithError(err).WithField("recurso", recurso).Error("Unexpected error")
	respondError(w, http.StatusInternalServerError, recurso, "error interno del servidor")
}
