package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-task-tracker/pkg/response"
)

// Check probes one backing service.
type Check func(ctx context.Context) error

type HealthHandler struct {
	Checks  map[string]Check
	Timeout time.Duration
	Logger  logrus.FieldLogger
}

func NewHealthHandler(checks map[string]Check, logger logrus.FieldLogger) *HealthHandler {
	return &HealthHandler{Checks: checks, Timeout: 2 * time.Second, Logger: logger}
}

// Health GET /api/health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.Timeout)
	defer cancel()

	status := make(map[string]string, len(h.Checks))
	healthy := true
	for name, check := range h.Checks {
		if err := check(ctx); err != nil {
			h.Logger.WithError(err).WithField("check", name).Warn("health check failed")
			status[name] = "down"
			healthy = false
			continue
		}
		status[name] = "up"
	}
	if !healthy {
		response.Error[any](c, http.StatusServiceUnavailable, "degraded", status)
		return
	}
	response.Success(c, http.StatusOK, status, "ok", nil)
}
