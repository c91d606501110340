package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/staking-gateway/internal/application/services"
)

// DashboardHandler handles the read-only views
type DashboardHandler struct {
	service *services.DashboardService
	logger  *zap.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service *services.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the read routes
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard/{address}", h.GetDashboard)
	r.Get("/tokens/{address}", h.GetToken)
	r.Get("/sale", h.GetSale)
}

// GetDashboard handles GET /api/v1/dashboard/{address}
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	dashboard, err := h.service.LoadDashboard(r.Context(), address)
	if err != nil {
		respondFailure(w, h.logger.With(zap.String("address", address)), "Failed to load dashboard", err)
		return
	}

	respondJSON(w, http.StatusOK, dashboard)
}

// GetToken handles GET /api/v1/tokens/{address}?holder=
func (h *DashboardHandler) GetToken(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	holder := r.URL.Query().Get("holder")

	token, err := h.service.LoadToken(r.Context(), address, holder)
	if err != nil {
		respondFailure(w, h.logger.With(zap.String("address", address)), "Failed to load token", err)
		return
	}

	respondJSON(w, http.StatusOK, token)
}

// GetSale handles GET /api/v1/sale
func (h *DashboardHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	sale, err := h.service.LoadSale(r.Context())
	if err != nil {
		respondFailure(w, h.logger, "Failed to load sale", err)
		return
	}

	respondJSON(w, http.StatusOK, sale)
}
