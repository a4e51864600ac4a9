package entity

import (
	"time"
)

// PasswordReset represents a pending password-reset grant issued to an email.
// Only a SHA-256 hash of the raw token is persisted; the raw token travels
// exclusively inside the emailed reset link.
type PasswordReset struct {
	ID        uint       // The unique ID for this reset record.
	Email     string     // The account this reset was issued for.
	TokenHash string     // SHA-256 hash of the raw reset token.
	ExpiresAt time.Time  // The exact time when this reset token becomes invalid.
	UsedAt    *time.Time // Set once the token has been redeemed; a used token is never accepted again.
	CreatedAt time.Time  // Timestamp of when the reset was requested.
}

// Usable reports whether the reset grant can still be redeemed at the given time.
func (r *PasswordReset) Usable(now time.Time) bool {
	return r.UsedAt == nil && now.Before(r.ExpiresAt)
}
