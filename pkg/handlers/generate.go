package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/testforge-ai/testforge-engine/pkg/auth"
	"github.com/testforge-ai/testforge-engine/pkg/services"
)

// GenerateHandler handles the test generation endpoint.
type GenerateHandler struct {
	generation services.GenerationService
	logger     *zap.Logger
}

// NewGenerateHandler creates a new generate handler.
func NewGenerateHandler(generation services.GenerationService, logger *zap.Logger) *GenerateHandler {
	return &GenerateHandler{generation: generation, logger: logger}
}

// RegisterRoutes registers the generate handler's routes on the given mux.
// Generation is a mutating, quota-consuming operation; viewers cannot call it.
func (h *GenerateHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/generate-tests", authMiddleware.RequireWriter(h.Generate))
}

// Generate handles POST /api/generate-tests.
// Quota exhaustion returns 429 with the limit and current usage so the
// dashboard can render an upgrade prompt.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequestUserID(w, r, h.logger)
	if !ok {
		return
	}

	var req services.GenerationRequest
	if !DecodeJSON(w, r, &req, h.logger) {
		return
	}

	result, err := h.generation.GenerateTestCases(r.Context(), userID, &req)
	if err != nil {
		var quotaErr *services.QuotaError
		if errors.As(err, &quotaErr) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			if err := json.NewEncoder(w).Encode(map[string]interface{}{
				"error":   "quota_exceeded",
				"message": "Monthly test generation quota exceeded",
				"limit":   quotaErr.Limit,
				"current": quotaErr.Current,
			}); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}

		if validationErr := req.Validate(); validationErr != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", validationErr.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}

		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
