package entity

import (
	"time"
)

// User is the aggregate root for the credential domain.
// PasswordHash holds a one-way hash and is never serialized.
// The reset pair is only changed through SetResetToken / ClearResetToken so both
// fields are always present or absent together.
type User struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	PasswordHash        string     `json:"-"`
	ResetTokenHash      *string    `json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// PublicUser is the client-facing view of a User.
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

// SetResetToken records an outstanding reset token hash and its expiry.
func (u *User) SetResetToken(hash string, expiresAt time.Time) {
	h := hash
	exp := expiresAt.UTC()
	u.ResetTokenHash = &h
	u.ResetTokenExpiresAt = &exp
}

// ClearResetToken drops any outstanding reset token.
func (u *User) ClearResetToken() {
	u.ResetTokenHash = nil
	u.ResetTokenExpiresAt = nil
}

// ResetTokenValid reports whether hash matches the outstanding token and now is before its expiry.
func (u *User) ResetTokenValid(hash string, now time.Time) bool {
	if u.ResetTokenHash == nil || u.ResetTokenExpiresAt == nil {
		return false
	}
	return *u.ResetTokenHash == hash && now.Before(*u.ResetTokenExpiresAt)
}
