package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/iho/coreledger/internal/adapter/http/dto"
	"github.com/iho/coreledger/internal/domain"
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

// writeDomainError maps a typed domain error to a status and includes
// its machine-readable code in the body.
func writeDomainError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusForError(err))
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   "request failed",
		Code:    domain.ErrorCode(err),
		Message: err.Error(),
	})
}

// statusForError maps domain errors to HTTP status codes.
func statusForError(err error) int {
	switch domain.ErrorCode(err) {
	case domain.CodeCommandValidationFailed, domain.CodeUnbalancedEntry:
		return http.StatusBadRequest
	case domain.CodeAccountNotFound, domain.CodeNoPeriodFound:
		return http.StatusNotFound
	case domain.CodePeriodClosed:
		return http.StatusForbidden
	case domain.CodeDuplicateEntry:
		return http.StatusConflict
	case domain.CodeUnbalancedLedger, domain.CodeConversionRateUnavailable:
		return http.StatusUnprocessableEntity
	}

	switch {
	case errors.Is(err, domain.ErrEntryNotFound),
		errors.Is(err, domain.ErrEntityNotFound),
		errors.Is(err, domain.ErrPeriodNotFound),
		errors.Is(err, domain.ErrNoBalanceHistory):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidPeriodTransition):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidCurrency),
		errors.Is(err, domain.ErrCurrencyMismatch),
		errors.Is(err, domain.ErrNothingToClose),
		errors.Is(err, domain.ErrInvalidOwnershipPercentage):
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

// caller resolves the acting user. With auth enabled the middleware put
// a user in the context; without it the tenant comes from a header so
// local setups stay usable.
func caller(r *http.Request) (tenantID, userID string, permissions []string) {
	if user, ok := domain.UserFromContext(r.Context()); ok {
		return user.TenantID, user.ID, user.Permissions
	}
	return r.Header.Get("X-Tenant-ID"), r.Header.Get("X-User-ID"), nil
}

// parseDateQuery parses a YYYY-MM-DD query parameter.
func parseDateQuery(r *http.Request, key string) (time.Time, error) {
	return time.Parse("2006-01-02", r.URL.Query().Get(key))
}
