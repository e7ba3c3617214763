package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"civdraft/internal/container"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	container *container.Container
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(container *container.Container) *HealthHandler {
	return &HealthHandler{
		container: container,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Service   string            `json:"service"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Check handles GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   "civdraft",
		Checks:    make(map[string]string),
	}

	ctx := r.Context()
	status := http.StatusOK

	if db := h.container.GetDatabase(); db != nil {
		if err := db.Health(ctx); err != nil {
			response.Checks["database"] = err.Error()
			response.Status = "degraded"
			status = http.StatusServiceUnavailable
		} else {
			response.Checks["database"] = "ok"
		}
	}

	if redisClient := h.container.GetRedisClient(); redisClient != nil {
		if err := redisClient.Health(ctx); err != nil {
			response.Checks["redis"] = err.Error()
			response.Status = "degraded"
		} else {
			response.Checks["redis"] = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.WithError(err).Error("Failed to encode health check response")
	}
}
