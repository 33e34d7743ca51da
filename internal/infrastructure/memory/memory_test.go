package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-task-tracker/internal/domain/entity"
	"github.com/oksasatya/go-task-tracker/internal/domain/repository"
)

func TestUserRepository_UniqueEmail(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.User{Name: "A", Email: "a@x.com", PasswordHash: "h1"}))
	err := repo.Create(ctx, &entity.User{Name: "B", Email: "a@x.com", PasswordHash: "h2"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

	// case-sensitive as stored
	require.NoError(t, repo.Create(ctx, &entity.User{Name: "C", Email: "A@x.com", PasswordHash: "h3"}))

	u, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "h1", u.PasswordHash)
}

func TestUserRepository_ReturnsCopies(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	u := &entity.User{Name: "A", Email: "a@x.com", PasswordHash: "h"}
	require.NoError(t, repo.Create(ctx, u))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	got.PasswordHash = "mutated"

	again, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "h", again.PasswordHash)
}

func TestUserRepository_ResetTokenLookupAndConsume(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	now := time.Now()

	u := &entity.User{Name: "A", Email: "a@x.com", PasswordHash: "old"}
	require.NoError(t, repo.Create(ctx, u))
	require.NoError(t, repo.SetResetToken(ctx, u.ID, "th", now.Add(15*time.Minute)))

	found, err := repo.GetByResetTokenHash(ctx, "th", now)
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = repo.GetByResetTokenHash(ctx, "th", now.Add(16*time.Minute))
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.ConsumeResetToken(ctx, u.ID, "th", "new", now))
	assert.ErrorIs(t, repo.ConsumeResetToken(ctx, u.ID, "th", "newer", now), repository.ErrNotFound)

	stored, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", stored.PasswordHash)
	assert.Nil(t, stored.ResetTokenHash)
	assert.Nil(t, stored.ResetTokenExpiresAt)
}

func TestUserRepository_ClearResetTokenOnlyMatchingHash(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	now := time.Now()

	u := &entity.User{Name: "A", Email: "a@x.com", PasswordHash: "old"}
	require.NoError(t, repo.Create(ctx, u))
	require.NoError(t, repo.SetResetToken(ctx, u.ID, "first", now.Add(time.Minute)))
	require.NoError(t, repo.SetResetToken(ctx, u.ID, "second", now.Add(time.Minute)))

	require.NoError(t, repo.ClearResetToken(ctx, u.ID, "first"))
	_, err := repo.GetByResetTokenHash(ctx, "second", now)
	require.NoError(t, err)

	require.NoError(t, repo.ClearResetToken(ctx, u.ID, "second"))
	_, err = repo.GetByResetTokenHash(ctx, "second", now)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.ErrorIs(t, repo.SetResetToken(ctx, "missing", "x", now), repository.ErrNotFound)
}

func TestUserRepository_ConcurrentConsumeSucceedsOnce(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()
	now := time.Now()

	u := &entity.User{Name: "A", Email: "a@x.com", PasswordHash: "old"}
	require.NoError(t, repo.Create(ctx, u))
	require.NoError(t, repo.SetResetToken(ctx, u.ID, "th", now.Add(time.Minute)))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if repo.ConsumeResetToken(ctx, u.ID, "th", "new", now) == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}

func TestTaskRepository_ScopedByUser(t *testing.T) {
	repo := NewTaskRepository()
	ctx := context.Background()

	first := &entity.Task{UserID: "u1", Text: "first"}
	require.NoError(t, repo.Create(ctx, first))
	time.Sleep(time.Millisecond)
	second := &entity.Task{UserID: "u1", Text: "second"}
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, &entity.Task{UserID: "u2", Text: "other"}))

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Text)

	_, err = repo.GetByID(ctx, "u2", first.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.Toggle(ctx, "u2", first.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "u2", first.ID), repository.ErrNotFound)

	toggled, err := repo.Toggle(ctx, "u1", first.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	require.NoError(t, repo.Delete(ctx, "u1", first.ID))
	_, err = repo.GetByID(ctx, "u1", first.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDenylist_ExpiresWithToken(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	d := NewDenylist(0)
	defer d.Close()
	d.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, d.Revoke(ctx, "j1", "u1", now.Add(time.Hour)))
	require.NoError(t, d.Revoke(ctx, "j0", "u1", now.Add(-time.Second)))

	revoked, _ := d.IsRevoked(ctx, "j1")
	assert.True(t, revoked)
	revoked, _ = d.IsRevoked(ctx, "j0")
	assert.False(t, revoked)

	now = now.Add(2 * time.Hour)
	revoked, _ = d.IsRevoked(ctx, "j1")
	assert.False(t, revoked)
}

func TestDenylist_SweepDropsExpiredWithoutLookup(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	d := NewDenylist(0)
	defer d.Close()
	d.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, d.Revoke(ctx, "short", "u1", now.Add(time.Minute)))
	require.NoError(t, d.Revoke(ctx, "long", "u1", now.Add(time.Hour)))
	require.Equal(t, 2, d.len())

	now = now.Add(2 * time.Minute)
	d.Sweep()
	assert.Equal(t, 1, d.len())

	revoked, _ := d.IsRevoked(ctx, "long")
	assert.True(t, revoked)
}

func TestDenylist_SweeperRuns(t *testing.T) {
	d := NewDenylist(time.Millisecond)
	defer d.Close()
	d.mu.Lock()
	d.entries["gone"] = time.Now().Add(-time.Second)
	d.mu.Unlock()

	assert.Eventually(t, func() bool { return d.len() == 0 }, time.Second, 5*time.Millisecond)
}
