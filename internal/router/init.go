package router

import (
	"context"
	"time"

	"github.com/oksasatya/go-task-tracker/internal/application"
	"github.com/oksasatya/go-task-tracker/internal/container"
	"github.com/oksasatya/go-task-tracker/internal/infrastructure/elastic"
	pginfra "github.com/oksasatya/go-task-tracker/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/go-task-tracker/internal/interface/http"
	"github.com/oksasatya/go-task-tracker/internal/interface/middleware"
	"github.com/oksasatya/go-task-tracker/internal/router/modules"
	"github.com/oksasatya/go-task-tracker/pkg/helpers"
)

const defaultAppName = "Smart Task Manager"

type AuthModuleDeps struct {
	Service *application.AuthService
	Handler *handlers.AuthHandler
}

type TaskModuleDeps struct {
	Service *application.TaskService
	Handler *handlers.TaskHandler
}

func buildAuthDeps() AuthModuleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	creds := application.NewCredentialStore(container.GetUserRepo(), container.GetPasswordHasher())
	service := application.NewAuthService(
		creds,
		container.GetJWT(),
		helpers.NewResetTokenGenerator(cfg.ResetTokenTTL),
		container.GetMailer(),
		logger,
	)
	service.Denylist = container.GetDenylist()
	service.StrictForgotAck = cfg.ForgotPasswordStrict
	service.AppName = defaultAppName
	if cfg.FromName != "" {
		service.AppName = cfg.FromName
	}

	return AuthModuleDeps{
		Service: service,
		Handler: handlers.NewAuthHandler(service, cfg, logger),
	}
}

func buildTaskDeps() TaskModuleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	var search application.TaskSearcher
	if es := container.GetES(); es != nil {
		search = elastic.NewTaskIndex(es, cfg.ESTasksIndex)
	}
	service := application.NewTaskService(container.GetTaskRepo(), search, logger)

	return TaskModuleDeps{
		Service: service,
		Handler: handlers.NewTaskHandler(service, logger),
	}
}

func buildHealthHandler() *handlers.HealthHandler {
	checks := map[string]handlers.Check{}
	if pool := container.GetPGPool(); pool != nil {
		checks["postgres"] = func(ctx context.Context) error { return pginfra.Ping(ctx, pool) }
	}
	if rdb := container.GetRedis(); rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return helpers.PingRedis(ctx, rdb, 2*time.Second) }
	}
	return handlers.NewHealthHandler(checks, container.GetLogger())
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	guard := middleware.SessionGuard(container.GetJWT(), container.GetDenylist(), container.GetLogger())

	var allow middleware.AllowFunc
	if cfg.RateLimitSkipPrivateIP {
		allow = middleware.AllowPrivateIP()
	}

	authDeps := buildAuthDeps()
	taskDeps := buildTaskDeps()

	r.Add(modules.NewAuthModule(authDeps.Handler, guard, allow))
	r.Add(modules.NewTaskModule(taskDeps.Handler, guard, allow))
	r.Add(modules.NewDebugModule(buildHealthHandler(), cfg.DebugMetricsEnabled))
}
