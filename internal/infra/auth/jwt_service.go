// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"passport/config"
	domainerrors "passport/internal/domain/errors"
	"passport/internal/domain/service"
)

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
// Access and refresh tokens are signed with separate secrets and carry a
// "type" claim, so neither class can stand in for the other.
type jwtService struct {
	accessSecret  string
	refreshSecret string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewJWTService is the constructor for jwtService.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Access == "" || cfg.SecretKey.Refresh == "" {
		return nil, errors.New("jwt secrets must be provided")
	}

	accessTTL := config.DefaultAccessTokenTTL
	refreshTTL := config.DefaultRefreshTokenTTL
	if cfg.Auth != nil {
		if cfg.Auth.AccessTokenTTL > 0 {
			accessTTL = cfg.Auth.AccessTokenTTL
		}
		if cfg.Auth.RefreshTokenTTL > 0 {
			refreshTTL = cfg.Auth.RefreshTokenTTL
		}
	}

	return &jwtService{
		accessSecret:  cfg.SecretKey.Access,
		refreshSecret: cfg.SecretKey.Refresh,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// IssueAccessToken signs a short-lived access token bound to the email.
func (s *jwtService) IssueAccessToken(email string) (string, error) {
	return s.sign(email, service.TokenTypeAccess, s.accessTTL, s.accessSecret)
}

// IssueRefreshToken signs a refresh token bound to the email.
func (s *jwtService) IssueRefreshToken(email string) (string, error) {
	return s.sign(email, service.TokenTypeRefresh, s.refreshTTL, s.refreshSecret)
}

// VerifyAccessToken validates an access token and returns its claims.
func (s *jwtService) VerifyAccessToken(tokenString string) (*service.Claims, error) {
	return s.verify(tokenString, service.TokenTypeAccess, s.accessSecret)
}

// VerifyRefreshToken validates a refresh token and returns its claims.
func (s *jwtService) VerifyRefreshToken(tokenString string) (*service.Claims, error) {
	return s.verify(tokenString, service.TokenTypeRefresh, s.refreshSecret)
}

// AccessTokenTTL returns the configured access token lifetime.
func (s *jwtService) AccessTokenTTL() time.Duration {
	return s.accessTTL
}

// RefreshTokenTTL returns the configured refresh token lifetime.
func (s *jwtService) RefreshTokenTTL() time.Duration {
	return s.refreshTTL
}

func (s *jwtService) sign(email, tokenType string, ttl time.Duration, secret string) (string, error) {
	now := time.Now()
	claims := &service.Claims{
		Email: email,
		Type:  tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}

	return signed, nil
}

// verify collapses malformed, forged and expired tokens into the single
// unauthorized outcome the HTTP boundary exposes.
func (s *jwtService) verify(tokenString, wantType, secret string) (*service.Claims, error) {
	claims := &service.Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, domainerrors.ErrTokenInvalid.WrapMessage("token verification failed")
	}

	if claims.Type != wantType {
		return nil, domainerrors.ErrTokenInvalid.WrapMessage("unexpected token type")
	}
	if claims.Email == "" {
		return nil, domainerrors.ErrTokenInvalid.WrapMessage("email claim missing")
	}

	return claims, nil
}
