// Package model contains the GORM persistence models.
// These mirror the domain entities but carry storage concerns (column tags,
// indexes) that have no place in the domain layer.
package model

import (
	"time"
)

// UserModel is the persistence model for an account.
// The unique index on email is what makes concurrent signups for the same
// address resolve to exactly one stored record.
type UserModel struct {
	ID           uint      `gorm:"primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null;size:255"`
	Name         string    `gorm:"size:255"`
	DateOfBirth  string    `gorm:"column:dob;size:64"`
	Contact      string    `gorm:"size:64"`
	PasswordHash string    `gorm:"not null;size:255"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName maps the model to the users table.
func (UserModel) TableName() string {
	return "users"
}

// ResetTokenModel is the persistence model for a password-reset grant.
type ResetTokenModel struct {
	ID        uint       `gorm:"primaryKey"`
	Email     string     `gorm:"index;not null;size:255"`
	TokenHash string     `gorm:"uniqueIndex;not null;size:64"`
	ExpiresAt time.Time  `gorm:"not null"`
	UsedAt    *time.Time
	CreatedAt time.Time
}

// TableName maps the model to the reset_tokens table.
func (ResetTokenModel) TableName() string {
	return "reset_tokens"
}
