// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"
	"errors"

	"passport/internal/domain/entity"
)

// ErrResetTokenNotFound is returned when no reset grant matches the given hash.
var ErrResetTokenNotFound = errors.New("reset token not found")

// ResetTokenRepository manages pending password-reset grants.
// Only token hashes are stored; the raw token never touches the database.
type ResetTokenRepository interface {
	// Create persists a new reset grant.
	Create(ctx context.Context, reset *entity.PasswordReset) error

	// FindByHash retrieves a reset grant by the SHA-256 hash of its raw token.
	FindByHash(ctx context.Context, tokenHash string) (*entity.PasswordReset, error)

	// MarkUsed records that the grant has been redeemed, making it single-use.
	MarkUsed(ctx context.Context, id uint) error

	// DeleteExpired removes grants whose expiry has passed. Called opportunistically.
	DeleteExpired(ctx context.Context) error
}
