// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"passport/internal/domain/entity"
)

// Domain-specific errors for user persistence.
var (
	// ErrUserNotFound is returned when no account exists for the given email.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned when an insert collides with the unique email
	// constraint. Signup relies on this instead of a read-then-write check, so
	// concurrent signups for the same email resolve to exactly one record.
	ErrEmailTaken = errors.New("email already registered")
)

// UserRepository defines the standard operations for account persistence.
// The application layer depends on this interface, not the concrete implementation.
type UserRepository interface {
	// FindByEmail retrieves a single account by its email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// Create persists a new account. Returns ErrEmailTaken when the email is
	// already registered; the uniqueness guarantee is enforced by the store.
	Create(ctx context.Context, user *entity.User) error

	// UpdatePasswordHash overwrites the stored password hash for the account.
	UpdatePasswordHash(ctx context.Context, email string, passwordHash string) error
}
