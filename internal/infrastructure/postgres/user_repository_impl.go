package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/go-task-tracker/internal/domain/entity"
	"github.com/oksasatya/go-task-tracker/internal/domain/repository"
)

const userColumns = `id, name, email, password_hash, reset_token_hash, reset_token_expires_at, created_at, updated_at`

type UserRepository struct {
	db DB
}

func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, u.Name, u.Email, u.PasswordHash)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) GetByResetTokenHash(ctx context.Context, hash string, now time.Time) (*entity.User, error) {
	return r.getOne(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE reset_token_hash = $1 AND reset_token_expires_at > $2
	`, hash, now)
}

func (r *UserRepository) getOne(ctx context.Context, query string, args ...any) (*entity.User, error) {
	u := &entity.User{}
	row := r.db.QueryRow(ctx, query, args...)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash,
		&u.ResetTokenHash, &u.ResetTokenExpiresAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET reset_token_hash = $1, reset_token_expires_at = $2, updated_at = $3
		WHERE id = $4
	`, tokenHash, expiresAt, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("set reset token: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) ClearResetToken(ctx context.Context, userID, tokenHash string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users
		SET reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = $3
		WHERE id = $1 AND reset_token_hash = $2
	`, userID, tokenHash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("clear reset token: %w", err)
	}
	return nil
}

func (r *UserRepository) ConsumeResetToken(ctx context.Context, userID, tokenHash, passwordHash string, now time.Time) error {
	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET password_hash = $1, reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = $4
		WHERE id = $2 AND reset_token_hash = $3 AND reset_token_expires_at > $4
	`, passwordHash, userID, tokenHash, now)
	if err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
