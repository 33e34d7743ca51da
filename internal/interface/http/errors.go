package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-task-tracker/internal/application"
	"github.com/oksasatya/go-task-tracker/pkg/response"
	"github.com/oksasatya/go-task-tracker/pkg/validation"
)

const msgServerError = "server error"

// writeError maps service errors to status codes. Anything unrecognised is logged
// and answered with a generic 500 so internal detail never reaches the client.
func writeError(c *gin.Context, logger logrus.FieldLogger, err error) {
	var verr *application.ValidationError
	switch {
	case errors.As(err, &verr):
		response.Error[any](c, http.StatusBadRequest, verr.Message, verr.Details)
	case errors.Is(err, application.ErrEmailTaken):
		response.Error[any](c, http.StatusBadRequest, "email already registered", nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
	case errors.Is(err, application.ErrInvalidOrExpiredToken):
		response.Error[any](c, http.StatusBadRequest, "invalid or expired token", nil)
	case errors.Is(err, application.ErrUnauthorized):
		response.Error[any](c, http.StatusUnauthorized, "unauthorized", nil)
	case errors.Is(err, application.ErrTaskNotFound):
		response.Error[any](c, http.StatusNotFound, "task not found", nil)
	case errors.Is(err, application.ErrMailDispatch):
		response.Error[any](c, http.StatusInternalServerError, "email could not be sent", nil)
	default:
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"route":      c.FullPath(),
		}).Error("request failed")
		response.Error[any](c, http.StatusInternalServerError, msgServerError, nil)
	}
}

// bindError answers a failed ShouldBindJSON with per-field details.
func bindError(c *gin.Context, message string, err error) {
	response.Error[any](c, http.StatusBadRequest, message, validation.ToDetails(err))
}
