package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/tallybooks/tallybooks/internal/adapter/http/dto"
	"github.com/tallybooks/tallybooks/internal/domain"
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

// writeDomainError maps a use-case error to its HTTP status.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	writeError(w, mapDomainError(err), message, err.Error())
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrEntryNotFound),
		errors.Is(err, domain.ErrPeriodNotFound),
		errors.Is(err, domain.ErrOpeningBalanceNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateCode),
		errors.Is(err, domain.ErrAlreadyReversed),
		errors.Is(err, domain.ErrAlreadyLocked),
		errors.Is(err, domain.ErrNotLocked),
		errors.Is(err, domain.ErrAlreadyPosted),
		errors.Is(err, domain.ErrAccountHasChildren),
		errors.Is(err, domain.ErrAccountHasActivity):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPeriodLocked):
		return http.StatusLocked
	case errors.Is(err, domain.ErrInsufficientPrivilege):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidAccountCode),
		errors.Is(err, domain.ErrInvalidAccountName),
		errors.Is(err, domain.ErrInvalidAccountType),
		errors.Is(err, domain.ErrInvalidBalanceSide),
		errors.Is(err, domain.ErrInvalidParent),
		errors.Is(err, domain.ErrAccountInactive),
		errors.Is(err, domain.ErrTooFewLines),
		errors.Is(err, domain.ErrInvalidLine),
		errors.Is(err, domain.ErrNegativeLineAmount),
		errors.Is(err, domain.ErrLineAccountRequired),
		errors.Is(err, domain.ErrInvalidEntryType),
		errors.Is(err, domain.ErrUnbalancedEntry),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrUnlockReasonRequired),
		errors.Is(err, domain.ErrOffsetAccountMissing):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
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

// parseTimeQuery parses an RFC3339 or date-only query parameter.
func parseTimeQuery(r *http.Request, key string) (time.Time, bool, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return time.Time{}, false, nil
	}

	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t, true, nil
	}

	t, err := time.Parse("2006-01-02", val)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// parsePeriodParams parses the {year}/{month} pair of a period route.
func parsePeriodParams(yearStr, monthStr string) (int, time.Month, error) {
	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 1900 || year > 9999 {
		return 0, 0, errors.New("invalid year")
	}

	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, errors.New("invalid month")
	}

	return year, time.Month(month), nil
}
