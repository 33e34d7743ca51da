package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-task-tracker/internal/container"
	handlers "github.com/oksasatya/go-task-tracker/internal/interface/http"
	"github.com/oksasatya/go-task-tracker/internal/interface/middleware"
)

// Register and login share one counter so alternating between them buys nothing.
var (
	AuthRule = middleware.Rule{
		Name:    "auth",
		Max:     10,
		Window:  15 * time.Minute,
		Message: "Too many authentication attempts from this IP, please try again after 15 minutes",
	}
	ForgotPasswordRule = middleware.Rule{
		Name:    "forgot",
		Max:     5,
		Window:  15 * time.Minute,
		Message: "Too many password reset requests from this IP, please try again after 15 minutes",
	}
	ResetPasswordRule = middleware.Rule{
		Name:    "reset",
		Max:     30,
		Window:  15 * time.Minute,
		Message: "Too many password reset attempts from this IP, please try again later",
	}
)

type AuthModule struct {
	Handler *handlers.AuthHandler
	Guard   gin.HandlerFunc
	Allow   middleware.AllowFunc
}

func NewAuthModule(h *handlers.AuthHandler, guard gin.HandlerFunc, allow middleware.AllowFunc) *AuthModule {
	return &AuthModule{Handler: h, Guard: guard, Allow: allow}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	store := container.GetRateLimitStore()
	logger := container.GetLogger()

	// Public endpoints with IP-based rate limits
	authLimiter := middleware.RateLimit(store, AuthRule, middleware.KeyByIP(), m.Allow, logger)
	forgotLimiter := middleware.RateLimit(store, ForgotPasswordRule, middleware.KeyByIP(), m.Allow, logger)
	resetLimiter := middleware.RateLimit(store, ResetPasswordRule, middleware.KeyByIP(), m.Allow, logger)

	g := rg.Group("/auth")
	g.POST("/register", authLimiter, m.Handler.Register)
	g.POST("/login", authLimiter, m.Handler.Login)
	g.POST("/forgot-password", forgotLimiter, m.Handler.ForgotPassword)
	g.PUT("/reset-password/:token", resetLimiter, m.Handler.ResetPassword)

	// Protected session endpoints
	auth := g.Group("/")
	auth.Use(m.Guard)
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/me", m.Handler.Me)
	}
}
