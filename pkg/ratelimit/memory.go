package ratelimit

import (
	"context"
	"sync"
	"time"
)

type bucket struct {
	mu      sync.Mutex
	count   int64
	resetAt time.Time
	// dead is set once Sweep has unlinked the bucket from the map.
	dead bool
}

// MemoryStore keeps process-local counters. Each key has its own lock; the
// map lock is only held to find or create a bucket.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
	// looked runs between the map lookup and the bucket lock; tests use it.
	looked func()

	stop chan struct{}
	once sync.Once
}

// NewMemoryStore starts a sweeper that drops expired windows every interval.
// A non-positive interval disables the sweeper.
func NewMemoryStore(sweepEvery time.Duration) *MemoryStore {
	s := &MemoryStore{
		buckets: make(map[string]*bucket),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if sweepEvery > 0 {
		go s.sweepLoop(sweepEvery)
	}
	return s
}

func (s *MemoryStore) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	now := s.now()

	for {
		s.mu.Lock()
		b, ok := s.buckets[key]
		if !ok {
			b = &bucket{}
			s.buckets[key] = b
		}
		s.mu.Unlock()
		if s.looked != nil {
			s.looked()
		}

		b.mu.Lock()
		if b.dead {
			b.mu.Unlock()
			continue
		}
		if !now.Before(b.resetAt) {
			b.count = 0
			b.resetAt = now.Add(window)
		}
		b.count++
		count, ttl := b.count, b.resetAt.Sub(now)
		b.mu.Unlock()
		return count, ttl, nil
	}
}

// Sweep removes buckets whose window has passed.
func (s *MemoryStore) Sweep() {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, b := range s.buckets {
		b.mu.Lock()
		if !now.Before(b.resetAt) {
			b.dead = true
			delete(s.buckets, k)
		}
		b.mu.Unlock()
	}
}

func (s *MemoryStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

func (s *MemoryStore) sweepLoop(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			s.Sweep()
		case <-s.stop:
			return
		}
	}
}

// Close stops the sweeper.
func (s *MemoryStore) Close() {
	s.once.Do(func() { close(s.stop) })
}
