package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness and readiness. Only optional dependencies exist: the
// generation service is contacted with per-request credentials and cannot be probed.
type HealthHandler struct {
	redis Pinger
}

func NewHealthHandler(redis Pinger) *HealthHandler {
	return &HealthHandler{redis: redis}
}

type readinessCheck struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
}

type readinessResponse struct {
	Status string                     `json:"status"`
	Checks map[string]*readinessCheck `json:"checks"`
}

// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := readinessResponse{
		Status: "ok",
		Checks: map[string]*readinessCheck{"redis": {Status: "disabled"}},
	}

	if h.redis != nil {
		start := time.Now()
		err := h.redis.Ping(ctx)
		check := &readinessCheck{Status: "ok", LatencyMs: time.Since(start).Milliseconds()}
		if err != nil {
			// The rate limiter fails open, so redis being down degrades but does not block.
			check.Status = "degraded"
			check.Error = err.Error()
		}
		resp.Checks["redis"] = check
	}

	c.JSON(http.StatusOK, resp)
}
