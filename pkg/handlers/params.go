package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/testforge-ai/testforge-engine/pkg/auth"
)

// ParseID extracts and validates the {id} path parameter.
// Returns the parsed UUID and true on success, or uuid.Nil and false on
// error (after writing an error response).
func ParseID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	idStr := r.PathValue("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_id", "Invalid ID format"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return id, true
}

// RequestUserID extracts the authenticated user ID from the request context.
// Returns uuid.Nil and false after writing a 401 when the context carries
// no valid claims.
func RequestUserID(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (uuid.UUID, bool) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Authentication required"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return userID, true
}
