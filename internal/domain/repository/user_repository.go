package repository

import (
	"context"
	"errors"
	"time"

	"github.com/oksasatya/go-task-tracker/internal/domain/entity"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository defines the interface for user-related storage operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// GetByResetTokenHash returns the user whose reset hash matches and whose reset
	// expiry is after now.
	GetByResetTokenHash(ctx context.Context, hash string, now time.Time) (*entity.User, error)
	// SetResetToken writes only the reset pair of userID.
	SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	// ClearResetToken clears the reset pair only while tokenHash is still the stored
	// one, so a newer token or a completed reset is left alone.
	ClearResetToken(ctx context.Context, userID, tokenHash string) error
	// ConsumeResetToken writes the new password hash and clears the reset pair in one
	// conditional write. It returns ErrNotFound when the token no longer matches.
	ConsumeResetToken(ctx context.Context, userID, tokenHash, passwordHash string, now time.Time) error
}
