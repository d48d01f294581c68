package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// HealthHandler handles GET /health: liveness probe.
// Returns 200 immediately; confirms the process is alive.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// LoopProbe reports whether the main execution context still accepts work.
type LoopProbe interface {
	Running() bool
}

// HealthDependenciesHandler handles GET /health/ready: readiness probe.
// Redis is only checked when the seen store is backed by it.
type HealthDependenciesHandler struct {
	loop  LoopProbe
	redis *redis.Client
}

// NewHealthDependenciesHandler creates the readiness handler. rdb may be nil.
func NewHealthDependenciesHandler(loop LoopProbe, rdb *redis.Client) *HealthDependenciesHandler {
	return &HealthDependenciesHandler{
		loop:  loop,
		redis: rdb,
	}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func (h *HealthDependenciesHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]dependencyStatus)
	healthy := true

	if h.loop.Running() {
		deps["main_loop"] = dependencyStatus{Status: "ok"}
	} else {
		deps["main_loop"] = dependencyStatus{Status: "unhealthy", Error: "stopped"}
		healthy = false
	}

	if h.redis == nil {
		deps["seen_store"] = dependencyStatus{Status: "ok"}
	} else if err := h.redis.Ping(ctx).Err(); err != nil {
		deps["redis"] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
		healthy = false
	} else {
		deps["redis"] = dependencyStatus{Status: "ok"}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
