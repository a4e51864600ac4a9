package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token type markers baked into the "type" claim so an access token can never
// be replayed against the refresh path or vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims defines the custom claims carried by both token classes.
// Email is the sole identity claim; there is no server-side session state.
type Claims struct {
	Email string `json:"email"`
	Type  string `json:"type"`
	jwt.RegisteredClaims
}

// TokenService defines the interface for issuing and verifying JWTs.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// IssueAccessToken signs a short-lived access token for the given email.
	IssueAccessToken(email string) (string, error)

	// IssueRefreshToken signs a longer-lived refresh token for the given email.
	IssueRefreshToken(email string) (string, error)

	// VerifyAccessToken checks signature, expiry and token type of an access token.
	// Malformed, forged and expired tokens all surface the same unauthorized outcome.
	VerifyAccessToken(tokenString string) (*Claims, error)

	// VerifyRefreshToken checks signature, expiry and token type of a refresh token.
	VerifyRefreshToken(tokenString string) (*Claims, error)

	// AccessTokenTTL returns the configured access token lifetime.
	AccessTokenTTL() time.Duration

	// RefreshTokenTTL returns the configured refresh token lifetime.
	RefreshTokenTTL() time.Duration
}
