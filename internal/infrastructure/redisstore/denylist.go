package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-task-tracker/pkg/helpers"
)

const revokedPrefix = "auth:revoked:"

type revocation struct {
	UserID    string    `json:"user_id"`
	RevokedAt time.Time `json:"revoked_at"`
}

// Denylist stores revoked token ids as auth:revoked:<jti> with a TTL equal to the
// token's remaining lifetime, so entries disappear once the token is dead.
type Denylist struct {
	rdb redis.Cmdable
	now func() time.Time
}

func NewDenylist(rdb redis.Cmdable) *Denylist {
	return &Denylist{rdb: rdb, now: time.Now}
}

func (d *Denylist) Revoke(ctx context.Context, jti, userID string, until time.Time) error {
	now := d.now()
	ttl := until.Sub(now)
	if ttl <= 0 {
		return nil
	}
	rec := revocation{UserID: userID, RevokedAt: now.UTC()}
	if err := helpers.RedisSetJSON(ctx, d.rdb, revokedPrefix+jti, rec, ttl); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (d *Denylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var rec revocation
	found, err := helpers.RedisGetJSON(ctx, d.rdb, revokedPrefix+jti, &rec)
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return found, nil
}
