package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/staking-gateway/internal/domain/entities"
)

// EventSource delivers phase events to stream clients
type EventSource interface {
	History(ctx context.Context, limit int64) ([]entities.PhaseEvent, error)
	Subscribe(ctx context.Context) (<-chan entities.PhaseEvent, error)
}

// EventsHandler streams phase events as server-sent events
type EventsHandler struct {
	source    EventSource
	heartbeat time.Duration
	logger    *zap.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(source EventSource, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		source:    source,
		heartbeat: 15 * time.Second,
		logger:    logger,
	}
}

// RegisterRoutes registers the event stream route
func (h *EventsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/events", h.Stream)
}

// Stream handles GET /api/v1/events?replay=
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ctx := r.Context()
	events, err := h.source.Subscribe(ctx)
	if err != nil {
		h.logger.Error("Failed to subscribe to events", zap.Error(err))
		respondError(w, http.StatusServiceUnavailable, "event stream unavailable")
		return
	}

	// streams outlive the server write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if v := r.URL.Query().Get("replay"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			past, err := h.source.History(ctx, n)
			if err != nil {
				h.logger.Warn("Failed to read event history", zap.Error(err))
			}
			for _, e := range past {
				if err := writeEvent(w, e); err != nil {
					return
				}
			}
		}
	}
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(w, e); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, e entities.PhaseEvent) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %s-%s\nevent: %s\ndata: %s\n\n", e.ActionID, e.Phase, e.Phase, data)
	return err
}
