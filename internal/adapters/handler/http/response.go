package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vncsmyrnk/accounts/internal/core/domain"
	"github.com/vncsmyrnk/accounts/internal/logging"
)

var errBadRequest = errors.New("bad request")

type dataEnvelope struct {
	Data          any    `json:"data"`
	CorrelationID string `json:"correlationId"`
}

type errorEnvelope struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlationId"`
}

// internalErrors are the 500-class errors whose message is safe to return.
var internalErrors = []error{
	domain.ErrHashFailure,
	domain.ErrSigning,
	domain.ErrTokenCreation,
	domain.ErrConfiguration,
	domain.ErrPasswordUpdate,
	domain.ErrUnexpected,
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists),
		errors.Is(err, domain.ErrDuplicateKey):
		return http.StatusConflict
	case errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrPasswordMismatch),
		errors.Is(err, domain.ErrPasswordPolicy),
		errors.Is(err, domain.ErrMissingFields),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrEmailRequirements),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrMissingColumn),
		errors.Is(err, domain.ErrMalformedToken),
		errors.Is(err, domain.ErrMissingOldPassword),
		errors.Is(err, domain.ErrMissingNewPassword),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeData(w http.ResponseWriter, r *http.Request, status int, data any) {
	writeJSON(w, status, dataEnvelope{Data: data, CorrelationID: logging.CorrelationID(r.Context())})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError && !isInternal(err) {
		slog.ErrorContext(r.Context(), "unclassified error", "error", err)
		err = domain.ErrUnexpected
	}
	writeJSON(w, status, errorEnvelope{Error: err.Error(), CorrelationID: logging.CorrelationID(r.Context())})
}

func isInternal(err error) bool {
	for _, target := range internalErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errBadRequest
	}
	return nil
}
