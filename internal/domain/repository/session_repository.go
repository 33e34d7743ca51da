package repository

import (
	"context"
	"time"
)

// SessionDenylist records revoked session token ids until the token would have expired anyway.
type SessionDenylist interface {
	Revoke(ctx context.Context, jti, userID string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
