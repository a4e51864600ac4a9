// Package usecase declares the application's business-logic interfaces and
// their input/output DTOs.
package usecase

import (
	"context"
	"time"

	"passport/internal/domain/entity"
	domainerrors "passport/internal/domain/errors"
)

// SignUpInput carries the registration form fields.
type SignUpInput struct {
	Name        string `json:"name" validate:"required"`
	DateOfBirth string `json:"dob"`
	Contact     string `json:"contact"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
}

// SignUpOutput confirms a created account.
type SignUpOutput struct {
	Email   string
	Created bool
}

// EmailTakenError is returned by SignUp when the email is already registered.
// It carries the existing record's public fields so the conflict response can
// echo them, and never the stored hash.
type EmailTakenError struct {
	Existing *entity.PublicUser
}

// Error implements the error interface.
func (e *EmailTakenError) Error() string {
	return domainerrors.ErrEmailTaken.Message()
}

// Unwrap lets errors.Is resolve the underlying domain error.
func (e *EmailTakenError) Unwrap() error {
	return domainerrors.ErrEmailTaken
}

// SignInInput carries the login credentials.
type SignInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignInOutput carries the issued token pair. The refresh token is delivered
// to the client only as a cookie; CookieMaxAge is its configured lifetime.
type SignInOutput struct {
	AccessToken  string
	RefreshToken string
	CookieMaxAge time.Duration
}

// RefreshInput carries the refresh token read from the cookie.
type RefreshInput struct {
	RefreshToken string
}

// RefreshOutput carries the newly minted access token.
type RefreshOutput struct {
	AccessToken string
}

// ResetRequestOutput acknowledges a sent reset mail.
type ResetRequestOutput struct {
	Email      string
	PreviewURL string
}

// ResetPasswordInput carries the reset form fields. Token is the single-use
// reset token from the emailed link; whether it is mandatory is configurable.
type ResetPasswordInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Token    string `json:"token"`
}

// AccountUsecase orchestrates signup, signin, token refresh, profile lookup
// and the password-reset flow.
type AccountUsecase interface {
	// SignUp registers a new account. Returns *EmailTakenError when the email
	// is already registered.
	SignUp(ctx context.Context, input *SignUpInput) (*SignUpOutput, error)

	// SignIn verifies credentials and issues an access/refresh token pair.
	SignIn(ctx context.Context, input *SignInInput) (*SignInOutput, error)

	// Refresh mints a new access token bound to the verified refresh token's
	// email claim. The refresh token itself is not rotated.
	Refresh(ctx context.Context, input *RefreshInput) (*RefreshOutput, error)

	// GetProfile returns the public record for email, authorized against the
	// caller's verified token claim rather than the requested path.
	GetProfile(ctx context.Context, email string, callerEmail string) (*entity.PublicUser, error)

	// RequestPasswordReset issues a reset token and mails the reset link.
	RequestPasswordReset(ctx context.Context, email string) (*ResetRequestOutput, error)

	// ResetPassword overwrites the stored password hash, consuming the reset
	// token when one is required.
	ResetPassword(ctx context.Context, input *ResetPasswordInput) error
}
