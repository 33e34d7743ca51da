package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-task-tracker/internal/application"
	"github.com/oksasatya/go-task-tracker/internal/interface/middleware"
	"github.com/oksasatya/go-task-tracker/pkg/response"
)

type TaskHandler struct {
	Svc    *application.TaskService
	Logger logrus.FieldLogger
}

func NewTaskHandler(svc *application.TaskService, logger logrus.FieldLogger) *TaskHandler {
	return &TaskHandler{Svc: svc, Logger: logger}
}

type createTaskRequest struct {
	Text     string `json:"text" binding:"required"`
	Priority string `json:"priority" binding:"omitempty,max=32"`
	DueDate  string `json:"dueDate"`
}

// List GET /api/tasks
func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.Svc.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, tasks, "ok", gin.H{"count": len(tasks)})
}

// Create POST /api/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "invalid payload", err)
		return
	}
	t, err := h.Svc.Create(c.Request.Context(), middleware.UserID(c), application.CreateTaskInput{
		Text:     req.Text,
		Priority: req.Priority,
		DueDate:  req.DueDate,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, t, "task created", nil)
}

// Get GET /api/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	t, err := h.Svc.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, t, "ok", nil)
}

// Toggle PUT /api/tasks/:id/toggle
func (h *TaskHandler) Toggle(c *gin.Context) {
	t, err := h.Svc.Toggle(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, t, "task updated", nil)
}

// Delete DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "task deleted", nil)
}

// Search GET /api/tasks/search?q=&size=
func (h *TaskHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	tasks, err := h.Svc.SearchTasks(c.Request.Context(), middleware.UserID(c), c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, tasks, "ok", gin.H{"count": len(tasks)})
}
