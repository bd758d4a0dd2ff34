package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/iho/bankledger/internal/adapter/http/dto"
	"github.com/iho/bankledger/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError maps err to a status and a stable error code.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	status, code := mapDomainError(err)
	details := err.Error()
	if status == http.StatusInternalServerError {
		details = ""
	}
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Code:    code,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, "ACCOUNT_NOT_FOUND"
	case errors.Is(err, domain.ErrMovementNotFound):
		return http.StatusNotFound, "MOVEMENT_NOT_FOUND"
	case errors.Is(err, domain.ErrAccountExists):
		return http.StatusConflict, "ACCOUNT_EXISTS"
	case errors.Is(err, domain.ErrAlreadyReversed):
		return http.StatusConflict, "ALREADY_REVERSED"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS"
	case errors.Is(err, domain.ErrAccountInactive):
		return http.StatusUnprocessableEntity, "ACCOUNT_INACTIVE"
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest, "INVALID_AMOUNT"
	case errors.Is(err, domain.ErrInvalidAccountKind):
		return http.StatusBadRequest, "INVALID_ACCOUNT_KIND"
	case errors.Is(err, domain.ErrInvalidAccountNumber):
		return http.StatusBadRequest, "INVALID_ACCOUNT_NUMBER"
	case errors.Is(err, domain.ErrInvalidMovementKind):
		return http.StatusBadRequest, "INVALID_MOVEMENT_KIND"
	case errors.Is(err, domain.ErrDescriptionTooLong):
		return http.StatusBadRequest, "DESCRIPTION_TOO_LONG"
	case errors.Is(err, domain.ErrInvalidDateRange):
		return http.StatusBadRequest, "INVALID_DATE_RANGE"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseInt64Param reads a numeric chi URL parameter.
func parseInt64Param(r *http.Request, key string) (int64, error) {
	raw := chi.URLParam(r, key)
	if raw == "" {
		return 0, fmt.Errorf("missing %s", key)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return v, nil
}

// decodeJSON decodes the request body, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
