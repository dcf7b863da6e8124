package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/testforge-ai/testforge-engine/pkg/auth"
	"github.com/testforge-ai/testforge-engine/pkg/repositories"
	"github.com/testforge-ai/testforge-engine/pkg/services"
)

// ExecuteRequest is the payload for POST /api/executions.
type ExecuteRequest struct {
	TestCaseID  uuid.UUID `json:"test_case_id"`
	Environment string    `json:"environment"`
}

// ExecutionsHandler runs test cases and lists their executions.
type ExecutionsHandler struct {
	executions services.ExecutionService
	logger     *zap.Logger
}

// NewExecutionsHandler creates a new executions handler.
func NewExecutionsHandler(executions services.ExecutionService, logger *zap.Logger) *ExecutionsHandler {
	return &ExecutionsHandler{executions: executions, logger: logger}
}

// RegisterRoutes registers the executions handler's routes on the given mux.
func (h *ExecutionsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/executions", authMiddleware.RequireWriter(h.Execute))
	mux.HandleFunc("GET /api/executions", authMiddleware.RequireAuth(h.List))
}

// Execute handles POST /api/executions. Runs a simulated execution of the
// referenced test case.
func (h *ExecutionsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequestUserID(w, r, h.logger)
	if !ok {
		return
	}

	var req ExecuteRequest
	if !DecodeJSON(w, r, &req, h.logger) {
		return
	}
	if req.TestCaseID == uuid.Nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "test_case_id is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	exec, err := h.executions.Execute(r.Context(), userID, req.TestCaseID, req.Environment)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, exec); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/executions.
// Supports ?timeRange=, ?environment=, ?type= and ?limit= filters.
func (h *ExecutionsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequestUserID(w, r, h.logger)
	if !ok {
		return
	}

	filter, ok := parseExecutionFilter(w, r, h.logger)
	if !ok {
		return
	}

	execs, err := h.executions.List(r.Context(), userID, filter)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]interface{}{"executions": execs}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// parseExecutionFilter builds an ExecutionFilter from query parameters,
// writing a 400 and returning false on invalid input.
func parseExecutionFilter(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (repositories.ExecutionFilter, bool) {
	var filter repositories.ExecutionFilter

	if timeRange := r.URL.Query().Get("timeRange"); timeRange != "" {
		filter.Since = services.ParseTimeRange(timeRange, time.Now())
	}
	filter.Environment = r.URL.Query().Get("environment")
	filter.TestType = r.URL.Query().Get("type")

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_limit", "Limit must be a positive integer"); err != nil {
				logger.Error("Failed to write error response", zap.Error(err))
			}
			return filter, false
		}
		filter.Limit = limit
	}

	return filter, true
}
