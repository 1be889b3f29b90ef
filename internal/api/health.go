package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/interviewd/internal/store"
	"github.com/go-chi/chi/v5"
)

const healthCheckTimeout = 5 * time.Second

// HealthHandler reports API and dependency health.
type HealthHandler struct {
	repo         store.Repository
	aiConfigured bool
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(repo store.Repository, aiConfigured bool) *HealthHandler {
	return &HealthHandler{repo: repo, aiConfigured: aiConfigured}
}

// RegisterHealth registers the health check route.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/health", h.Health)
}

// Health returns the health status of the API and its dependencies.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	checks := map[string]string{"api": "ok"}
	status := "healthy"
	statusCode := http.StatusOK

	if err := h.repo.Ping(ctx); err != nil {
		slog.Error("health check failed", "error", err)
		checks["database"] = "unreachable"
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	if h.aiConfigured {
		checks["ai"] = "configured"
	} else {
		checks["ai"] = "not_configured"
	}

	JSON(w, statusCode, map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}
