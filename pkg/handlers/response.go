package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/testforge-ai/testforge-engine/pkg/apperrors"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// ServiceError maps well-known service errors to HTTP responses. Unmapped
// errors are logged and reported as a generic 500 so internals never leak.
func ServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var status int
	var code, message string

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		status, code, message = http.StatusNotFound, "not_found", "Resource not found"
	case errors.Is(err, apperrors.ErrConflict):
		status, code, message = http.StatusConflict, "conflict", "Resource already exists or is in a conflicting state"
	case errors.Is(err, apperrors.ErrEmailTaken):
		status, code, message = http.StatusConflict, "email_taken", "An account with this email already exists"
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		status, code, message = http.StatusUnauthorized, "invalid_credentials", "Invalid email or password"
	case errors.Is(err, apperrors.ErrSeatLimitReached):
		status, code, message = http.StatusConflict, "seat_limit_reached", "Your plan has no team seats left"
	case errors.Is(err, apperrors.ErrInvalidRole):
		status, code, message = http.StatusBadRequest, "invalid_role", "Role must be one of: admin, user, viewer"
	case errors.Is(err, apperrors.ErrInvalidPlan):
		status, code, message = http.StatusBadRequest, "invalid_plan", "Unknown plan name"
	case errors.Is(err, apperrors.ErrLastAdmin):
		status, code, message = http.StatusConflict, "last_admin", "Cannot remove the last admin"
	default:
		logger.Error("Unhandled service error", zap.Error(err))
		status, code, message = http.StatusInternalServerError, "internal_error", "Internal server error"
	}

	if err := ErrorResponse(w, status, code, message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}

// DecodeJSON decodes the request body into dst, writing a 400 on failure.
// Returns false when the response has already been written.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, logger *zap.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON request body"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return false
	}
	return true
}
