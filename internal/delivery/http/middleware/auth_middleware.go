package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	deliverycontext "passport/internal/delivery/context"
	"passport/internal/delivery/http/response"
	"passport/internal/domain/service"
)

// AuthMiddleware is the request-admission gate for protected endpoints.
// A missing or failed verification short-circuits the request; the protected
// handler is never reached without a verified access token.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate validates the access token from the Authorization header.
// The Bearer prefix is optional because the original clients sent the raw token.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return response.Error(c, http.StatusUnauthorized, "authorization header is missing")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := m.tokenSvc.VerifyAccessToken(tokenString)
		if err != nil {
			return response.Error(c, http.StatusUnauthorized, "invalid or expired token")
		}

		// Hand the verified identity to the handler; the path is never
		// trusted as authorization context.
		deliverycontext.SetCallerEmail(c, claims.Email)

		return next(c)
	}
}
