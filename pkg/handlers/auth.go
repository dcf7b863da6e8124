package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/testforge-ai/testforge-engine/pkg/apperrors"
	"github.com/testforge-ai/testforge-engine/pkg/auth"
	"github.com/testforge-ai/testforge-engine/pkg/services"
)

// AuthHandler handles registration, login and the current-user endpoint.
type AuthHandler struct {
	accounts services.AccountService
	logger   *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(accounts services.AccountService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, logger: logger}
}

// RegisterRoutes registers the auth handler's routes on the given mux.
func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("GET /api/auth/verify", authMiddleware.RequireAuth(h.Verify))
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if !DecodeJSON(w, r, &req, h.logger) {
		return
	}

	session, err := h.accounts.Register(r.Context(), &req)
	if err != nil {
		if errors.Is(err, apperrors.ErrEmailTaken) {
			ServiceError(w, err, h.logger)
			return
		}
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusCreated, session); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if !DecodeJSON(w, r, &req, h.logger) {
		return
	}

	session, err := h.accounts.Login(r.Context(), &req)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, session); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Verify handles GET /api/auth/verify.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequestUserID(w, r, h.logger)
	if !ok {
		return
	}

	user, err := h.accounts.CurrentUser(r.Context(), userID)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, user); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
