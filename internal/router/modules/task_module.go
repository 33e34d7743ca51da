package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-task-tracker/internal/container"
	handlers "github.com/oksasatya/go-task-tracker/internal/interface/http"
	"github.com/oksasatya/go-task-tracker/internal/interface/middleware"
)

// TaskRule is counted per signed-in user, so users behind one NAT do not share it.
var TaskRule = middleware.Rule{
	Name:    "tasks",
	Max:     120,
	Window:  time.Minute,
	Message: "Too many task requests, please slow down",
}

// TaskModule mounts the task CRUD routes. Every route requires a session.
type TaskModule struct {
	Handler *handlers.TaskHandler
	Guard   gin.HandlerFunc
	Allow   middleware.AllowFunc
}

func NewTaskModule(h *handlers.TaskHandler, guard gin.HandlerFunc, allow middleware.AllowFunc) *TaskModule {
	return &TaskModule{Handler: h, Guard: guard, Allow: allow}
}

func (m *TaskModule) Register(rg *gin.RouterGroup) {
	limiter := middleware.RateLimit(container.GetRateLimitStore(), TaskRule, middleware.KeyByUserID(), m.Allow, container.GetLogger())

	g := rg.Group("/tasks")
	g.Use(m.Guard, limiter)
	{
		g.GET("", m.Handler.List)
		g.POST("", m.Handler.Create)
		g.GET("/search", m.Handler.Search)
		g.GET("/:id", m.Handler.Get)
		g.PUT("/:id/toggle", m.Handler.Toggle)
		g.DELETE("/:id", m.Handler.Delete)
	}
}
