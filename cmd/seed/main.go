package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-task-tracker/config"
	"github.com/oksasatya/go-task-tracker/internal/application"
	"github.com/oksasatya/go-task-tracker/internal/domain/entity"
	"github.com/oksasatya/go-task-tracker/internal/domain/repository"
	pginfra "github.com/oksasatya/go-task-tracker/internal/infrastructure/postgres"
	"github.com/oksasatya/go-task-tracker/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	email := flag.String("email", "demo@tasks.local", "demo user email")
	password := flag.String("password", "password123", "demo user password")
	name := flag.String("name", "Demo User", "demo user name")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), 2, 0, time.Hour)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()

	hasher, err := helpers.NewPasswordHasher(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		logger.WithError(err).Fatal("invalid password hasher")
	}
	creds := application.NewCredentialStore(pginfra.NewUserRepository(pool), hasher)

	u, created, err := seedUser(ctx, creds, *name, *email, *password)
	if err != nil {
		logger.WithError(err).Fatal("failed to seed user")
	}
	if !created {
		fmt.Printf("user already present: id=%s email=%s\n", u.ID, u.Email)
		return
	}
	fmt.Printf("seeded user: id=%s email=%s name=%s password=%s\n", u.ID, u.Email, u.Name, *password)
}

// seedUser creates the account unless the email is already registered.
func seedUser(ctx context.Context, creds *application.CredentialStore, name, email, password string) (*entity.User, bool, error) {
	u, err := creds.FindByEmail(ctx, email)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}
	u, err = creds.Create(ctx, name, email, password)
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}
