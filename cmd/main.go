package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oksasatya/go-task-tracker/config"
	"github.com/oksasatya/go-task-tracker/internal/container"
	"github.com/oksasatya/go-task-tracker/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/go-task-tracker/internal/infrastructure/postgres"
	"github.com/oksasatya/go-task-tracker/internal/infrastructure/redisstore"
	"github.com/oksasatya/go-task-tracker/internal/interface/middleware"
	"github.com/oksasatya/go-task-tracker/internal/router"
	"github.com/oksasatya/go-task-tracker/pkg/helpers"
	"github.com/oksasatya/go-task-tracker/pkg/mailer"
	"github.com/oksasatya/go-task-tracker/pkg/ratelimit"
	"github.com/oksasatya/go-task-tracker/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("refusing to start with invalid configuration")
	}
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	// Credential and task stores
	switch cfg.StoreBackend {
	case "postgres":
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
		if err != nil {
			logger.WithError(err).Fatal("failed to connect to postgres")
		}
		defer pool.Close()

		if err := runMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			logger.WithError(err).Fatal("migration failed")
		}
		container.SetPGPool(pool)
		container.SetUserRepo(pginfra.NewUserRepository(pool))
		container.SetTaskRepo(pginfra.NewTaskRepository(pool))
	default:
		logger.Warn("using in-memory store, data is lost on restart")
		container.SetUserRepo(memory.NewUserRepository())
		container.SetTaskRepo(memory.NewTaskRepository())
	}

	// Redis backs shared rate-limit counters and, with a shared store, the session denylist
	var rdb *redis.Client
	if cfg.RateLimitBackend == "redis" || (cfg.SessionRevocation && cfg.StoreBackend == "postgres") {
		rdb = helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := helpers.PingRedis(ctx, rdb, 3*time.Second); err != nil {
			logger.WithError(err).Fatal("failed to connect to redis")
		}
		defer func() { _ = rdb.Close() }()
		container.SetRedis(rdb)
	}

	if cfg.RateLimitBackend == "redis" {
		container.SetRateLimitStore(ratelimit.NewRedisStore(rdb, cfg.AppName+":"))
	} else {
		store := ratelimit.NewMemoryStore(time.Minute)
		defer store.Close()
		container.SetRateLimitStore(store)
	}

	if cfg.SessionRevocation {
		if rdb != nil {
			container.SetDenylist(redisstore.NewDenylist(rdb))
		} else {
			deny := memory.NewDenylist(time.Minute)
			defer deny.Close()
			container.SetDenylist(deny)
		}
	}

	// Password hashing and session tokens
	hasher, err := helpers.NewPasswordHasher(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		logger.WithError(err).Fatal("invalid password hasher")
	}
	container.SetPasswordHasher(hasher)
	container.SetJWT(helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTExpire))

	// Outgoing mail
	sender, closeMail, err := newMailSender(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to init mail transport")
	}
	defer closeMail()
	container.SetMailer(sender)

	// Optional task search index
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Warn("elasticsearch unavailable, task search falls back to the store")
		} else {
			container.SetES(es)
		}
	}

	container.SetConfig(cfg)
	container.SetLogger(logger)

	// Gin engine and global middleware
	r := gin.New()
	if !cfg.TrustProxyHeaders {
		if err := r.SetTrustedProxies(nil); err != nil {
			logger.WithError(err).Fatal("trusted proxies")
		}
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP(cfg.TrustProxyHeaders))
	r.Use(cors.New(corsConfig(cfg)))
	if cfg.HTTPLogEnabled {
		r.Use(middleware.RequestLog(logger))
	}

	// Registry: auto-register modules using container
	reg := router.NewRegistry(r, "/api")
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
		return
	}
	logger.Info("server exited properly")
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", middleware.HeaderRequestID, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if origins := cfg.CORSOrigins(); len(origins) > 0 {
		c.AllowOrigins = origins
	} else {
		c.AllowAllOrigins = true
	}
	return c
}

// newMailSender picks the transport named by MAIL_TRANSPORT. The returned func
// releases whatever the transport holds open.
func newMailSender(cfg *config.Config, logger *logrus.Logger) (mailer.Sender, func(), error) {
	noop := func() {}
	switch cfg.MailTransport {
	case "smtp":
		return mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPEmail, cfg.SMTPPassword, cfg.SenderAddress()), noop, nil
	case "mailgun":
		return mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender), noop, nil
	case "queue":
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			return nil, noop, fmt.Errorf("rabbitmq publisher: %w", err)
		}
		container.SetRabbitPub(pub)
		return mailer.NewQueue(pub), pub.Close, nil
	default:
		logger.Warn("MAIL_TRANSPORT=log, reset emails are printed instead of sent")
		return mailer.NewLogSender(logger), noop, nil
	}
}

func runMigrations(dsn string, migrationsDir string, logger *logrus.Logger) error {
	// Open sql DB via pgx stdlib
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), "postgres", driver)
	if err != nil {
		return err
	}
	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}
