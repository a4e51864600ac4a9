// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"
)

// User is the single account record of the service, keyed by email.
// PasswordHash holds the bcrypt hash of the credential and must never
// leave the service in an API response.
type User struct {
	ID           uint      // Surrogate key assigned by the store.
	Email        string    // Unique login identifier.
	Name         string    // The user's display name.
	DateOfBirth  string    // Kept as the client-supplied string; the service does not interpret it.
	Contact      string    // Free-form contact number.
	PasswordHash string    // bcrypt hash of the current password.
	CreatedAt    time.Time // Timestamp of when this account was created.
	UpdatedAt    time.Time // Timestamp of the last modification to this account.
}

// PublicUser is the externally visible projection of a User.
// It is what profile and conflict responses carry; the hash is stripped.
type PublicUser struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	DateOfBirth string `json:"dob"`
	Contact     string `json:"contact"`
}

// Public returns the projection of the user that is safe to serialize.
func (u *User) Public() *PublicUser {
	return &PublicUser{
		Email:       u.Email,
		Name:        u.Name,
		DateOfBirth: u.DateOfBirth,
		Contact:     u.Contact,
	}
}
