package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/testforge-ai/testforge-engine/pkg/apperrors"
	"github.com/testforge-ai/testforge-engine/pkg/auth"
	"github.com/testforge-ai/testforge-engine/pkg/services"
)

// SettingsHandler handles user preferences and account security endpoints.
type SettingsHandler struct {
	settings services.SettingsService
	logger   *zap.Logger
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(settings services.SettingsService, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, logger: logger}
}

// RegisterRoutes registers the settings handler's routes on the given mux.
func (h *SettingsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/settings", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PUT /api/settings", authMiddleware.RequireAuth(h.Update))
	mux.HandleFunc("PUT /api/settings/password", authMiddleware.RequireAuth(h.ChangePassword))
	mux.HandleFunc("POST /api/settings/2fa/enable", authMiddleware.RequireAuth(h.EnableTwoFactor))
	mux.HandleFunc("POST /api/settings/2fa/disable", authMiddleware.RequireAuth(h.DisableTwoFactor))
}

// Get handles GET /api/settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequestUserID(w, r, h.logger)
	if !ok {
		return
	}

	settings, err := h.settings.Get(r.Context(), userID)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, settings); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/settings.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequestUserID(w, r, h.logger)
	if !ok {
		return
	}

	var req services.UpdateSettingsRequest
	if !DecodeJSON(w, r, &req, h.logger) {
		return
	}

	settings, err := h.settings.Update(r.Context(), userID, &req)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, settings); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ChangePassword handles PUT /api/settings/password.
func (h *SettingsHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequestUserID(w, r, h.logger)
	if !ok {
		return
	}

	var req services.ChangePasswordRequest
	if !DecodeJSON(w, r, &req, h.logger) {
		return
	}

	if err := h.settings.ChangePassword(r.Context(), userID, &req); err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			if err := ErrorResponse(w, http.StatusUnauthorized, "invalid_credentials", "Current password is incorrect"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		if errors.Is(err, apperrors.ErrNotFound) {
			ServiceError(w, err, h.logger)
			return
		}
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]string{"status": "password_changed"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// EnableTwoFactor handles POST /api/settings/2fa/enable.
func (h *SettingsHandler) EnableTwoFactor(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequestUserID(w, r, h.logger)
	if !ok {
		return
	}

	setup, err := h.settings.EnableTwoFactor(r.Context(), userID)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, setup); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// DisableTwoFactor handles POST /api/settings/2fa/disable.
func (h *SettingsHandler) DisableTwoFactor(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequestUserID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.settings.DisableTwoFactor(r.Context(), userID); err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]string{"status": "2fa_disabled"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
