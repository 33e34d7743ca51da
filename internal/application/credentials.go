package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oksasatya/go-task-tracker/internal/domain/entity"
	"github.com/oksasatya/go-task-tracker/internal/domain/repository"
	"github.com/oksasatya/go-task-tracker/pkg/helpers"
)

// CredentialStore is the only place clear-text passwords are turned into hashes.
type CredentialStore struct {
	Users  repository.UserRepository
	Hasher helpers.PasswordHasher

	dummyOnce sync.Once
	dummyHash string
}

func NewCredentialStore(users repository.UserRepository, hasher helpers.PasswordHasher) *CredentialStore {
	return &CredentialStore{Users: users, Hasher: hasher}
}

func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return s.Users.GetByEmail(ctx, email)
}

func (s *CredentialStore) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return s.Users.GetByID(ctx, id)
}

// Create hashes rawPassword and persists a new user. It returns
// repository.ErrDuplicateEmail when the email is taken.
func (s *CredentialStore) Create(ctx context.Context, name, email, rawPassword string) (*entity.User, error) {
	if strings.TrimSpace(rawPassword) == "" {
		return nil, errors.New("empty password")
	}
	hash, err := s.Hasher.Hash(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{Name: name, Email: email, PasswordHash: hash}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *CredentialStore) StoreResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	return s.Users.SetResetToken(ctx, userID, tokenHash, expiresAt)
}

// DropResetToken clears the reset pair of userID only if tokenHash is still current.
func (s *CredentialStore) DropResetToken(ctx context.Context, userID, tokenHash string) error {
	return s.Users.ClearResetToken(ctx, userID, tokenHash)
}

func (s *CredentialStore) FindByResetTokenHash(ctx context.Context, hash string, now time.Time) (*entity.User, error) {
	return s.Users.GetByResetTokenHash(ctx, hash, now)
}

// ConsumeResetToken hashes newPassword and swaps it in while clearing the reset pair,
// provided tokenHash is still the live reset token for userID.
func (s *CredentialStore) ConsumeResetToken(ctx context.Context, userID, tokenHash, newPassword string, now time.Time) error {
	hash, err := s.Hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.Users.ConsumeResetToken(ctx, userID, tokenHash, hash, now)
}

// Verify compares plain against the stored hash of u. A nil user is compared
// against a throwaway hash so the unknown-email path costs the same.
func (s *CredentialStore) Verify(u *entity.User, plain string) bool {
	if u == nil {
		s.dummyOnce.Do(func() {
			s.dummyHash, _ = s.Hasher.Hash("timing-equalizer-password")
		})
		_ = s.Hasher.Verify(s.dummyHash, plain)
		return false
	}
	return s.Hasher.Verify(u.PasswordHash, plain)
}
