package memory

import (
	"context"
	"sync"
	"time"
)

// Denylist keeps revoked token ids in process memory. Expired entries are
// dropped on lookup and by a periodic sweep.
type Denylist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time

	stop chan struct{}
	once sync.Once
}

// NewDenylist starts a sweeper that runs every interval; a non-positive
// interval leaves cleanup to lookups.
func NewDenylist(sweepEvery time.Duration) *Denylist {
	d := &Denylist{
		entries: make(map[string]time.Time),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if sweepEvery > 0 {
		go d.sweepLoop(sweepEvery)
	}
	return d
}

func (d *Denylist) Revoke(_ context.Context, jti, _ string, until time.Time) error {
	if !until.After(d.now()) {
		return nil
	}
	d.mu.Lock()
	d.entries[jti] = until
	d.mu.Unlock()
	return nil
}

func (d *Denylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	until, ok := d.entries[jti]
	if !ok {
		return false, nil
	}
	if !until.After(d.now()) {
		delete(d.entries, jti)
		return false, nil
	}
	return true, nil
}

// Sweep drops every entry whose token has already expired.
func (d *Denylist) Sweep() {
	now := d.now()
	d.mu.Lock()
	defer d.mu.Unlock()
	for jti, until := range d.entries {
		if !until.After(now) {
			delete(d.entries, jti)
		}
	}
}

func (d *Denylist) len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

func (d *Denylist) sweepLoop(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			d.Sweep()
		case <-d.stop:
			return
		}
	}
}

// Close stops the sweeper.
func (d *Denylist) Close() {
	d.once.Do(func() { close(d.stop) })
}
