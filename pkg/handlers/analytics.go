package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/testforge-ai/testforge-engine/pkg/auth"
	"github.com/testforge-ai/testforge-engine/pkg/services"
)

// AnalyticsHandler serves the results and analytics dashboard views.
type AnalyticsHandler struct {
	analytics services.AnalyticsService
	logger    *zap.Logger
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(analytics services.AnalyticsService, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, logger: logger}
}

// RegisterRoutes registers the analytics handler's routes on the given mux.
func (h *AnalyticsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/results", authMiddleware.RequireAuth(h.Results))
	mux.HandleFunc("GET /api/analytics", authMiddleware.RequireAuth(h.Analytics))
}

// Results handles GET /api/results.
func (h *AnalyticsHandler) Results(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequestUserID(w, r, h.logger)
	if !ok {
		return
	}

	filter, ok := parseExecutionFilter(w, r, h.logger)
	if !ok {
		return
	}

	view, err := h.analytics.Results(r.Context(), userID, filter)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, view); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Analytics handles GET /api/analytics.
func (h *AnalyticsHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequestUserID(w, r, h.logger)
	if !ok {
		return
	}

	since := services.ParseTimeRange(r.URL.Query().Get("timeRange"), time.Now())

	view, err := h.analytics.Analytics(r.Context(), userID, since)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, view); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
