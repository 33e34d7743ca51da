package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-task-tracker/config"
	"github.com/oksasatya/go-task-tracker/internal/domain/repository"
	"github.com/oksasatya/go-task-tracker/pkg/helpers"
	"github.com/oksasatya/go-task-tracker/pkg/mailer"
	"github.com/oksasatya/go-task-tracker/pkg/ratelimit"
)

// app-level container to share constructed components across packages
// Router wires modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client

	jwtManager *helpers.JWTManager
	hasher     helpers.PasswordHasher

	userRepo repository.UserRepository
	taskRepo repository.TaskRepository
	denylist repository.SessionDenylist

	mailSender mailer.Sender
	rabbitPub  *helpers.RabbitPublisher
	esClient   *elasticsearch.Client
	rateStore  ratelimit.Store
)

func SetConfig(c *config.Config)   { cfg = c }
func GetConfig() *config.Config    { return cfg }
func SetLogger(l *logrus.Logger)   { logger = l }
func GetLogger() *logrus.Logger    { return logger }
func SetPGPool(p *pgxpool.Pool)    { pgPool = p }
func GetPGPool() *pgxpool.Pool     { return pgPool }
func SetRedis(r *redis.Client)     { redisClient = r }
func GetRedis() *redis.Client      { return redisClient }
func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager  { return jwtManager }

func SetPasswordHasher(h helpers.PasswordHasher) { hasher = h }
func GetPasswordHasher() helpers.PasswordHasher {
	if hasher != nil {
		return hasher
	}
	return helpers.Bcrypt{}
}

func SetUserRepo(r repository.UserRepository)  { userRepo = r }
func GetUserRepo() repository.UserRepository   { return userRepo }
func SetTaskRepo(r repository.TaskRepository)  { taskRepo = r }
func GetTaskRepo() repository.TaskRepository   { return taskRepo }
func SetDenylist(d repository.SessionDenylist) { denylist = d }
func GetDenylist() repository.SessionDenylist  { return denylist }
func SetMailer(s mailer.Sender)                { mailSender = s }
func GetMailer() mailer.Sender                 { return mailSender }
func SetRabbitPub(p *helpers.RabbitPublisher)  { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher   { return rabbitPub }
func SetES(c *elasticsearch.Client)            { esClient = c }
func GetES() *elasticsearch.Client             { return esClient }
func SetRateLimitStore(s ratelimit.Store)      { rateStore = s }
func GetRateLimitStore() ratelimit.Store       { return rateStore }
