package handler

import (
	"context"
	"net/http"

	"formbox/internal/model"
)

// HealthHandler reports liveness of the service and its dependencies.
type HealthHandler struct {
	pingMongo func(ctx context.Context) error
	pingRedis func(ctx context.Context) error
}

func NewHealthHandler(pingMongo, pingRedis func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{pingMongo: pingMongo, pingRedis: pingRedis}
}

// Check handles GET /health.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	healthy := true

	if h.pingMongo != nil {
		if err := h.pingMongo(r.Context()); err != nil {
			status["mongo"] = "down"
			healthy = false
		} else {
			status["mongo"] = "up"
		}
	}
	if h.pingRedis != nil {
		if err := h.pingRedis(r.Context()); err != nil {
			status["redis"] = "down"
			healthy = false
		} else {
			status["redis"] = "up"
		}
	}

	if !healthy {
		status["status"] = "degraded"
		writeJSON(w, http.StatusServiceUnavailable, model.APIResponse{
			Success: false,
			Message: "degraded",
			Data:    status,
		})
		return
	}
	writeSuccess(w, http.StatusOK, "ok", status)
}
