package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/testforge-ai/testforge-engine/pkg/auth"
	"github.com/testforge-ai/testforge-engine/pkg/services"
)

// ReportsHandler handles report creation, listing and PDF generation.
type ReportsHandler struct {
	reports services.ReportService
	logger  *zap.Logger
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(reports services.ReportService, logger *zap.Logger) *ReportsHandler {
	return &ReportsHandler{reports: reports, logger: logger}
}

// RegisterRoutes registers the reports handler's routes on the given mux.
func (h *ReportsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/reports", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /api/reports", authMiddleware.RequireWriter(h.Create))
	mux.HandleFunc("GET /api/reports/{id}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("POST /api/reports/{id}/generate", authMiddleware.RequireWriter(h.Generate))
}

// List handles GET /api/reports.
func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequestUserID(w, r, h.logger)
	if !ok {
		return
	}

	reports, err := h.reports.List(r.Context(), userID)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]interface{}{"reports": reports}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST /api/reports.
func (h *ReportsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequestUserID(w, r, h.logger)
	if !ok {
		return
	}

	var req services.CreateReportRequest
	if !DecodeJSON(w, r, &req, h.logger) {
		return
	}

	report, err := h.reports.Create(r.Context(), userID, &req)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusCreated, report); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/reports/{id}.
func (h *ReportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequestUserID(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	report, err := h.reports.Get(r.Context(), userID, id)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, report); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Generate handles POST /api/reports/{id}/generate.
// Responds with the rendered PDF document rather than JSON.
func (h *ReportsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequestUserID(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	report, pdf, err := h.reports.Generate(r.Context(), userID, id)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Name+".pdf"))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	if _, err := w.Write(pdf); err != nil {
		h.logger.Error("Failed to write PDF response", zap.Error(err))
	}
}
