package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope every endpoint answers with.
type APIResponse[T any] struct {
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      T         `json:"data,omitempty"`
	Meta      any       `json:"meta,omitempty"`
	Error     any       `json:"error,omitempty"`
}

func build[T any](ctx *gin.Context, status int, ok bool, message string, data T, meta, err any) APIResponse[T] {
	return APIResponse[T]{
		Status:    status,
		Timestamp: time.Now().UTC(),
		RequestID: ctx.GetString("request_id"),
		Success:   ok,
		Message:   message,
		Data:      data,
		Meta:      meta,
		Error:     err,
	}
}

// Success writes a success envelope and returns it.
func Success[T any](ctx *gin.Context, status int, data T, message string, meta any) APIResponse[T] {
	if status == 0 {
		status = http.StatusOK
	}
	resp := build(ctx, status, true, message, data, meta, nil)
	ctx.JSON(status, resp)
	return resp
}

// Error writes an error envelope and returns it.
func Error[T any](ctx *gin.Context, status int, message string, err any) APIResponse[T] {
	if status == 0 {
		status = http.StatusBadRequest
	}
	var zero T
	resp := build(ctx, status, false, message, zero, nil, err)
	ctx.JSON(status, resp)
	return resp
}

// Abort writes an error envelope and stops the handler chain. Used by middleware.
func Abort(ctx *gin.Context, status int, message string) {
	var zero any
	ctx.AbortWithStatusJSON(status, build(ctx, status, false, message, zero, nil, nil))
}
