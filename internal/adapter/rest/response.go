package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/opulent-living/property-service/internal/listing/domain"
	"github.com/opulent-living/property-service/internal/platform/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, log *logger.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "status", status, "error", err.Error())
	}
}

// writeError maps domain errors to status codes. Upstream and storage
// details never reach the client.
func writeError(w http.ResponseWriter, log *logger.Logger, op string, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, log, http.StatusBadRequest, errorResponse{Error: verr.Error()})
	case errors.Is(err, domain.ErrInvalidListingData):
		writeJSON(w, log, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, log, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
	case errors.Is(err, domain.ErrListingNotFound):
		writeJSON(w, log, http.StatusNotFound, errorResponse{Error: "Property not found"})
	default:
		log.Error(op+": request failed", "error", err.Error())
		writeJSON(w, log, http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
	}
}
