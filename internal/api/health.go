package api

import (
	"context"
	"net/http"
	"time"

	"github.com/matchpoint-app/matchpoint/internal/api/respond"
	"github.com/matchpoint-app/matchpoint/internal/storage"
)

// HealthHandler reports service liveness and storage connectivity.
type HealthHandler struct {
	storage storage.Storage
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(store storage.Storage) *HealthHandler {
	return &HealthHandler{storage: store}
}

// Health handles GET /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.storage.HealthCheck(ctx); err != nil {
		respond.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"detail": err.Error(),
		})
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
