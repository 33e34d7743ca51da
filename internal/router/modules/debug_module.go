package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-task-tracker/internal/container"
	handlers "github.com/oksasatya/go-task-tracker/internal/interface/http"
	"github.com/oksasatya/go-task-tracker/internal/interface/middleware"
)

var debugRule = middleware.Rule{Name: "debug", Max: 120, Window: time.Minute}

type DebugModule struct {
	Health  *handlers.HealthHandler
	Metrics bool
}

func NewDebugModule(h *handlers.HealthHandler, metrics bool) *DebugModule {
	return &DebugModule{Health: h, Metrics: metrics}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rg.GET("/health", m.Health.Health)
	if !m.Metrics {
		return
	}
	// Public metrics endpoint (expvar), rate-limited per IP and path
	rl := middleware.RateLimit(container.GetRateLimitStore(), debugRule, middleware.KeyByIPAndPath(), nil, container.GetLogger())
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
