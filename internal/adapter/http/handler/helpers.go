package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/iho/udaancredit/internal/adapter/http/dto"
	"github.com/iho/udaancredit/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.Is(err, domain.ErrMissingColumn):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrLedgerTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrDataIntegrity):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidRiskPolicy):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
