package helpers

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

const (
	resetTokenBytes  = 32
	MinResetTokenTTL = 15 * time.Minute
	MaxResetTokenTTL = 30 * time.Minute
)

// ResetToken is a freshly generated password reset secret.
// Plain goes to the user; only Hash is persisted.
type ResetToken struct {
	Plain     string
	Hash      string
	ExpiresAt time.Time
}

// ResetTokenGenerator produces single-use password reset tokens.
type ResetTokenGenerator struct {
	TTL time.Duration
	Now func() time.Time
}

// NewResetTokenGenerator clamps ttl to the 15-30 minute range.
func NewResetTokenGenerator(ttl time.Duration) *ResetTokenGenerator {
	if ttl < MinResetTokenTTL {
		ttl = MinResetTokenTTL
	}
	if ttl > MaxResetTokenTTL {
		ttl = MaxResetTokenTTL
	}
	return &ResetTokenGenerator{TTL: ttl, Now: time.Now}
}

func (g *ResetTokenGenerator) Generate() (ResetToken, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return ResetToken{}, err
	}
	plain := hex.EncodeToString(b)
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	return ResetToken{
		Plain:     plain,
		Hash:      HashResetToken(plain),
		ExpiresAt: now().Add(g.TTL).UTC(),
	}, nil
}

// HashResetToken is the one-way function applied to reset tokens before storage and lookup.
func HashResetToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
