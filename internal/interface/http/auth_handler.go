package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-task-tracker/config"
	"github.com/oksasatya/go-task-tracker/internal/application"
	"github.com/oksasatya/go-task-tracker/internal/interface/middleware"
	"github.com/oksasatya/go-task-tracker/pkg/response"
)

const msgForgotAck = "If that email is in our database, we will send a reset link."

type AuthHandler struct {
	Svc    *application.AuthService
	Cfg    *config.Config
	Logger logrus.FieldLogger
}

func NewAuthHandler(svc *application.AuthService, cfg *config.Config, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Svc: svc, Cfg: cfg, Logger: logger}
}

type registerRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,pwd"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type resetPasswordRequest struct {
	Password        string `json:"password" binding:"required,pwd"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
}

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

// requestBase is the scheme://host the request arrived on. Forwarded headers
// are only honoured behind a trusted proxy.
func (h *AuthHandler) requestBase(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	host := c.Request.Host
	if h.Cfg != nil && h.Cfg.TrustProxyHeaders {
		if p := strings.TrimSpace(strings.Split(c.GetHeader("X-Forwarded-Proto"), ",")[0]); p != "" {
			scheme = p
		}
		if fh := strings.TrimSpace(strings.Split(c.GetHeader("X-Forwarded-Host"), ",")[0]); fh != "" {
			host = fh
		}
	}
	return scheme + "://" + host
}

func (h *AuthHandler) resetBaseURL(c *gin.Context) string {
	if h.Cfg == nil {
		return h.requestBase(c)
	}
	return h.Cfg.ResetBaseURL(h.requestBase(c))
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "invalid payload", err)
		return
	}
	sess, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, sess, "registered", nil)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "please provide an email and password", err)
		return
	}
	sess, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, sess, "logged in", nil)
}

// ForgotPassword POST /api/auth/forgot-password
// Known and unknown emails get the same acknowledgement.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "please provide an email", err)
		return
	}
	err := h.Svc.ForgotPassword(c.Request.Context(), application.ForgotPasswordInput{
		Email:     req.Email,
		BaseURL:   h.resetBaseURL(c),
		IP:        clientIP(c),
		UserAgent: c.GetHeader("User-Agent"),
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, msgForgotAck, nil)
}

// ResetPassword PUT /api/auth/reset-password/:token
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, "passwords must match and be valid", err)
		return
	}
	sess, err := h.Svc.ResetPassword(c.Request.Context(), c.Param("token"), req.Password, req.ConfirmPassword)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, sess, "password updated", nil)
}

// Logout POST /api/auth/logout (auth required)
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.Error[any](c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var exp time.Time
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	if err := h.Svc.Logout(c.Request.Context(), claims.UserID, claims.ID, exp); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "logged out", nil)
}

// Me GET /api/auth/me (auth required)
func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.Svc.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, "ok", nil)
}
