package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hanssonfredrik/customers/pkg/logger"
	"github.com/hanssonfredrik/customers/pkg/res"
)

// HealthStatus is the /health response body.
type HealthStatus struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler answers liveness checks.
type HealthHandler struct {
	store   Pinger
	timeout time.Duration
	log     *logger.Logger
}

// NewHealthHandler creates a health handler that pings store.
func NewHealthHandler(store Pinger, log *logger.Logger) *HealthHandler {
	return &HealthHandler{store: store, timeout: 2 * time.Second, log: log}
}

// HealthCheck returns 200 when the store answers and 503 otherwise.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	status := HealthStatus{Status: "OK", Time: time.Now().UTC().Format(time.RFC3339)}
	if err := h.store.Ping(ctx); err != nil {
		h.log.Warn("Health check failed: %v", err)
		status.Status = "UNAVAILABLE"
		res.JsonResponse(c.Writer, status, http.StatusServiceUnavailable)
		return
	}

	res.JsonResponse(c.Writer, status, http.StatusOK)
}
