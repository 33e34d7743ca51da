// Package ratelimit counts requests per key in fixed windows.
package ratelimit

import (
	"context"
	"time"
)

// Store increments the counter for key and reports the count inside the
// current window plus the time left before it resets. The first hit opens
// a window of the given length.
type Store interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}
