package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/martin5169/financial-dashboard/internal/usecase"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	backend     usecase.HealthChecker
	backendName string
	redisClient *redis.Client
}

// NewHealthHandler creates a new HealthHandler. redisClient may be nil when no
// idempotency store is configured.
func NewHealthHandler(backend usecase.HealthChecker, backendName string, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		backend:     backend,
		backendName: backendName,
		redisClient: redisClient,
	}
}

// Liveness returns 200 if the service is alive.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness returns 200 if the service is ready to accept traffic.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.backend.Ping(ctx); err != nil {
		writeError(w, http.StatusServiceUnavailable, h.backendName+" unhealthy", err.Error())
		return
	}

	status := map[string]string{
		"status":      "ready",
		h.backendName: "ok",
	}

	if h.redisClient != nil {
		if err := h.redisClient.Ping(ctx).Err(); err != nil {
			writeError(w, http.StatusServiceUnavailable, "redis unhealthy", err.Error())
			return
		}
		status["redis"] = "ok"
	}

	writeJSON(w, http.StatusOK, status)
}
