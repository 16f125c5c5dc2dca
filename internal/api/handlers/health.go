package handlers

import (
	"net/http"

	"go.uber.org/zap"
)

type HealthHandler struct {
	Logger *zap.Logger
}

// Health provides a minimal liveness check endpoint.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(h.Logger, w, r, http.StatusOK, map[string]string{"status": "ok"})
}
