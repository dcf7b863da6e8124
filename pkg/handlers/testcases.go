package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/testforge-ai/testforge-engine/pkg/auth"
	"github.com/testforge-ai/testforge-engine/pkg/models"
	"github.com/testforge-ai/testforge-engine/pkg/services"
)

// TestCasesHandler serves test cases: listing, fetching, and manual
// authoring. Generated cases arrive through the generation endpoint.
type TestCasesHandler struct {
	testCases services.TestCaseService
	logger    *zap.Logger
}

// NewTestCasesHandler creates a new test cases handler.
func NewTestCasesHandler(testCases services.TestCaseService, logger *zap.Logger) *TestCasesHandler {
	return &TestCasesHandler{testCases: testCases, logger: logger}
}

// RegisterRoutes registers the test cases handler's routes on the given mux.
func (h *TestCasesHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/test-cases", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /api/test-cases", authMiddleware.RequireWriter(h.Create))
	mux.HandleFunc("GET /api/test-cases/{id}", authMiddleware.RequireAuth(h.Get))
}

// Create handles POST /api/test-cases for manually authored cases.
func (h *TestCasesHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequestUserID(w, r, h.logger)
	if !ok {
		return
	}

	var req services.CreateTestCaseRequest
	if !DecodeJSON(w, r, &req, h.logger) {
		return
	}

	tc, err := h.testCases.Create(r.Context(), userID, &req)
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

	if err := WriteJSON(w, http.StatusCreated, tc); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// List handles GET /api/test-cases.
// Supports ?type= to filter by test type and ?limit= to cap the result.
func (h *TestCasesHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequestUserID(w, r, h.logger)
	if !ok {
		return
	}

	testType := r.URL.Query().Get("type")
	if testType != "" && !models.IsValidTestType(testType) {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_test_type", "Unknown test type filter"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_limit", "Limit must be a positive integer"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		limit = parsed
	}

	testCases, err := h.testCases.List(r.Context(), userID, testType, limit)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]interface{}{"test_cases": testCases}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/test-cases/{id}.
func (h *TestCasesHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequestUserID(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	tc, err := h.testCases.Get(r.Context(), userID, id)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, tc); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
