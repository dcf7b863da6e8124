package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/testforge-ai/testforge-engine/pkg/auth"
	"github.com/testforge-ai/testforge-engine/pkg/services"
)

// TeamHandler handles team seat management endpoints.
type TeamHandler struct {
	team   services.TeamService
	logger *zap.Logger
}

// NewTeamHandler creates a new team handler.
func NewTeamHandler(team services.TeamService, logger *zap.Logger) *TeamHandler {
	return &TeamHandler{team: team, logger: logger}
}

// RegisterRoutes registers the team handler's routes on the given mux.
func (h *TeamHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/team", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /api/team/invite", authMiddleware.RequireWriter(h.Invite))
	mux.HandleFunc("PATCH /api/team/{id}", authMiddleware.RequireWriter(h.Update))
	mux.HandleFunc("DELETE /api/team/{id}", authMiddleware.RequireWriter(h.Remove))
}

// List handles GET /api/team.
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequestUserID(w, r, h.logger)
	if !ok {
		return
	}

	members, err := h.team.List(r.Context(), userID)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]interface{}{"members": members}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Invite handles POST /api/team/invite.
func (h *TeamHandler) Invite(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequestUserID(w, r, h.logger)
	if !ok {
		return
	}

	var req services.InviteMemberRequest
	if !DecodeJSON(w, r, &req, h.logger) {
		return
	}

	member, err := h.team.Invite(r.Context(), userID, &req)
	if err != nil {
		if validationErr := req.Validate(); validationErr != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", validationErr.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, member); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PATCH /api/team/{id}.
func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequestUserID(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	var req services.UpdateMemberRequest
	if !DecodeJSON(w, r, &req, h.logger) {
		return
	}

	member, err := h.team.Update(r.Context(), userID, id, &req)
	if err != nil {
		if validationErr := req.Validate(); validationErr != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", validationErr.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, member); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Remove handles DELETE /api/team/{id}.
func (h *TeamHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequestUserID(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.team.Remove(r.Context(), userID, id); err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
