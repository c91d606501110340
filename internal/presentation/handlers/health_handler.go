package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker defines the interface for health checking components
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler handles health check requests. The node is required; the
// journal database and the event bus are optional.
type HealthHandler struct {
	node     HealthChecker
	database HealthChecker
	events   HealthChecker
}

// NewHealthHandler creates a new health handler. database and events may be nil.
func NewHealthHandler(node, database, events HealthChecker) *HealthHandler {
	return &HealthHandler{
		node:     node,
		database: database,
		events:   events,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
	}

	// Check node
	if err := h.node.HealthCheck(ctx); err != nil {
		response.Status = "unhealthy"
		response.Services["node"] = "unhealthy: " + err.Error()
	} else {
		response.Services["node"] = "healthy"
	}

	optional := []struct {
		name    string
		checker HealthChecker
	}{
		{"database", h.database},
		{"events", h.events},
	}
	for _, o := range optional {
		if o.checker == nil {
			continue
		}
		if err := o.checker.HealthCheck(ctx); err != nil {
			if response.Status == "healthy" {
				response.Status = "degraded"
			}
			response.Services[o.name] = "unhealthy: " + err.Error()
		} else {
			response.Services[o.name] = "healthy"
		}
	}

	status := http.StatusOK
	if response.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, response)
}

// Ready handles GET /ready (Kubernetes readiness probe)
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.node.HealthCheck(ctx); err != nil {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

// Live handles GET /live (Kubernetes liveness probe)
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("alive"))
}
