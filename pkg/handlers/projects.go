package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/testforge-ai/testforge-engine/pkg/auth"
	"github.com/testforge-ai/testforge-engine/pkg/services"
)

// ProjectsHandler handles project CRUD endpoints.
type ProjectsHandler struct {
	projects services.ProjectService
	logger   *zap.Logger
}

// NewProjectsHandler creates a new projects handler.
func NewProjectsHandler(projects services.ProjectService, logger *zap.Logger) *ProjectsHandler {
	return &ProjectsHandler{projects: projects, logger: logger}
}

// RegisterRoutes registers the projects handler's routes on the given mux.
func (h *ProjectsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/projects", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /api/projects", authMiddleware.RequireWriter(h.Create))
	mux.HandleFunc("GET /api/projects/{id}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("DELETE /api/projects/{id}", authMiddleware.RequireWriter(h.Delete))
}

// List handles GET /api/projects.
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequestUserID(w, r, h.logger)
	if !ok {
		return
	}

	projects, err := h.projects.List(r.Context(), userID)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]interface{}{"projects": projects}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST /api/projects.
func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequestUserID(w, r, h.logger)
	if !ok {
		return
	}

	var req services.CreateProjectRequest
	if !DecodeJSON(w, r, &req, h.logger) {
		return
	}

	project, err := h.projects.Create(r.Context(), userID, &req)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusCreated, project); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/projects/{id}.
func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequestUserID(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	project, err := h.projects.Get(r.Context(), userID, id)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, project); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/projects/{id}.
func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequestUserID(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.projects.Delete(r.Context(), userID, id); err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
