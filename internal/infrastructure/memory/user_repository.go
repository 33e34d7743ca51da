// Package memory holds process-local repositories used by STORE_BACKEND=memory and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-task-tracker/internal/domain/entity"
	"github.com/oksasatya/go-task-tracker/internal/domain/repository"
)

type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*entity.User
	byEmail map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*entity.User),
		byEmail: make(map[string]string),
	}
}

func cloneUser(u *entity.User) *entity.User {
	c := *u
	if u.ResetTokenHash != nil {
		h := *u.ResetTokenHash
		c.ResetTokenHash = &h
	}
	if u.ResetTokenExpiresAt != nil {
		e := *u.ResetTokenExpiresAt
		c.ResetTokenExpiresAt = &e
	}
	return &c
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[u.Email]; ok {
		return repository.ErrDuplicateEmail
	}
	now := time.Now().UTC()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.byID[u.ID] = cloneUser(u)
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(r.byID[id]), nil
}

func (r *UserRepository) GetByResetTokenHash(_ context.Context, hash string, now time.Time) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if u.ResetTokenValid(hash, now) {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) SetResetToken(_ context.Context, userID, tokenHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.SetResetToken(tokenHash, expiresAt)
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *UserRepository) ClearResetToken(_ context.Context, userID, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok || u.ResetTokenHash == nil || *u.ResetTokenHash != tokenHash {
		return nil
	}
	u.ClearResetToken()
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *UserRepository) ConsumeResetToken(_ context.Context, userID, tokenHash, passwordHash string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok || !u.ResetTokenValid(tokenHash, now) {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.ClearResetToken()
	u.UpdatedAt = now.UTC()
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
