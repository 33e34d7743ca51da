package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_FixedWindow(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore(0)
	defer s.Close()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		n, ttl, err := s.Hit(ctx, "ip:1", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
		assert.Equal(t, time.Minute, ttl)
	}

	now = now.Add(30 * time.Second)
	n, ttl, _ := s.Hit(ctx, "ip:1", time.Minute)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, 30*time.Second, ttl)

	n, _, _ = s.Hit(ctx, "ip:2", time.Minute)
	assert.Equal(t, int64(1), n, "keys are independent")

	now = now.Add(30 * time.Second)
	n, ttl, _ = s.Hit(ctx, "ip:1", time.Minute)
	assert.Equal(t, int64(1), n, "window resets")
	assert.Equal(t, time.Minute, ttl)
}

func TestMemoryStore_Sweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore(0)
	defer s.Close()
	s.now = func() time.Time { return now }

	_, _, _ = s.Hit(context.Background(), "a", time.Minute)
	_, _, _ = s.Hit(context.Background(), "b", time.Hour)
	now = now.Add(2 * time.Minute)
	s.Sweep()
	assert.Equal(t, 1, s.len())
}

func TestMemoryStore_HitRacingSweepIsNotLost(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore(0)
	defer s.Close()
	s.now = func() time.Time { return now }
	ctx := context.Background()

	_, _, _ = s.Hit(ctx, "k", time.Minute)
	now = now.Add(2 * time.Minute)

	// the sweeper runs after Hit found the expired bucket but before it locks it
	var swept bool
	s.looked = func() {
		if !swept {
			swept = true
			s.Sweep()
		}
	}
	n, _, err := s.Hit(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	s.looked = nil

	n, _, err = s.Hit(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 1, s.len())
}

func TestMemoryStore_Concurrent(t *testing.T) {
	s := NewMemoryStore(time.Millisecond)
	defer s.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = s.Hit(context.Background(), "k", time.Hour)
		}()
	}
	wg.Wait()
	n, _, err := s.Hit(context.Background(), "k", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(51), n)
}

func TestRedisStore_Hit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	s := NewRedisStore(rdb, "rl:")
	ctx := context.Background()

	n, ttl, err := s.Hit(ctx, "login:1.2.3.4", 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 15*time.Minute, ttl)
	assert.True(t, mr.Exists("rl:login:1.2.3.4"))

	n, _, err = s.Hit(ctx, "login:1.2.3.4", 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	mr.FastForward(16 * time.Minute)
	n, _, err = s.Hit(ctx, "login:1.2.3.4", 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRedisStore_ErrorWhenUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	_, _, err := NewRedisStore(rdb, "").Hit(context.Background(), "k", time.Minute)
	assert.Error(t, err)
}
