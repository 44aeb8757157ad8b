package handler

import (
	"net/http"

	"github.com/telegram-copilot/briefing-api/internal/cache"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	store *cache.Store
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(store *cache.Store) *HealthHandler {
	return &HealthHandler{store: store}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready. The cache is fail-open so a down Redis does not
// make the service unready, but its state is reported.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	cacheStatus := "connected"
	if err := h.store.Ping(r.Context()); err != nil {
		cacheStatus = "unavailable"
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"cache":  cacheStatus,
	})
}
