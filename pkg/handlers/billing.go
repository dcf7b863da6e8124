package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/testforge-ai/testforge-engine/pkg/auth"
	"github.com/testforge-ai/testforge-engine/pkg/services"
)

// UpgradeRequest is the payload for POST /api/billing/upgrade.
type UpgradeRequest struct {
	Plan string `json:"plan"`
}

// BillingHandler handles billing overview, plan changes and invoices.
type BillingHandler struct {
	billing services.BillingService
	logger  *zap.Logger
}

// NewBillingHandler creates a new billing handler.
func NewBillingHandler(billing services.BillingService, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{billing: billing, logger: logger}
}

// RegisterRoutes registers the billing handler's routes on the given mux.
// Plan changes are restricted to the account admin.
func (h *BillingHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/billing", authMiddleware.RequireAuth(h.Overview))
	mux.HandleFunc("POST /api/billing/upgrade", authMiddleware.RequireWriter(h.Upgrade))
	mux.HandleFunc("GET /api/billing/invoices", authMiddleware.RequireAuth(h.Invoices))
	mux.HandleFunc("GET /api/billing/invoices/{id}", authMiddleware.RequireAuth(h.Invoice))
}

// Overview handles GET /api/billing.
func (h *BillingHandler) Overview(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequestUserID(w, r, h.logger)
	if !ok {
		return
	}

	view, err := h.billing.Overview(r.Context(), userID)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, view); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Upgrade handles POST /api/billing/upgrade.
func (h *BillingHandler) Upgrade(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequestUserID(w, r, h.logger)
	if !ok {
		return
	}

	var req UpgradeRequest
	if !DecodeJSON(w, r, &req, h.logger) {
		return
	}

	invoice, err := h.billing.Upgrade(r.Context(), userID, req.Plan)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusCreated, invoice); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Invoices handles GET /api/billing/invoices.
func (h *BillingHandler) Invoices(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequestUserID(w, r, h.logger)
	if !ok {
		return
	}

	invoices, err := h.billing.Invoices(r.Context(), userID)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]interface{}{"invoices": invoices}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Invoice handles GET /api/billing/invoices/{id}.
func (h *BillingHandler) Invoice(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequestUserID(w, r, h.logger)
	if !ok {
		return
	}
	id, ok := ParseID(w, r, h.logger)
	if !ok {
		return
	}

	invoice, err := h.billing.Invoice(r.Context(), userID, id)
	if err != nil {
		ServiceError(w, err, h.logger)
		return
	}

	if err := WriteJSON(w, http.StatusOK, invoice); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
