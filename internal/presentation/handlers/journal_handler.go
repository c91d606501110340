package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/staking-gateway/internal/application/services"
)

// JournalHandler serves the recorded phase events
type JournalHandler struct {
	service *services.JournalService
	logger  *zap.Logger
}

// NewJournalHandler creates a new journal handler
func NewJournalHandler(service *services.JournalService, logger *zap.Logger) *JournalHandler {
	return &JournalHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the journal routes
func (h *JournalHandler) RegisterRoutes(r chi.Router) {
	r.Get("/journal", h.GetRecent)
	r.Get("/journal/{actionID}", h.GetByAction)
}

// GetRecent handles GET /api/v1/journal?limit=
func (h *JournalHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 {
			limit = l
		}
	}

	entries, err := h.service.Recent(r.Context(), limit)
	if err != nil {
		respondFailure(w, h.logger, "Failed to get journal", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"data": entries})
}

// GetByAction handles GET /api/v1/journal/{actionID}
func (h *JournalHandler) GetByAction(w http.ResponseWriter, r *http.Request) {
	actionID := chi.URLParam(r, "actionID")

	entries, err := h.service.ByAction(r.Context(), actionID)
	if err != nil {
		respondFailure(w, h.logger.With(zap.String("action_id", actionID)), "Failed to get journal", err)
		return
	}

	if len(entries) == 0 {
		respondError(w, http.StatusNotFound, "action not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"data": entries})
}
