// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	deliverycontext "passport/internal/delivery/context"
	"passport/internal/delivery/http/response"
	domainerrors "passport/internal/domain/errors"
	"passport/internal/usecase"
)

// refreshCookieName is the cookie carrying the refresh token.
const refreshCookieName = "jwt"

// AccountHandler holds dependencies for the account endpoints.
type AccountHandler struct {
	uc     usecase.AccountUsecase
	logger *slog.Logger
}

// NewAccountHandler is the constructor for AccountHandler, injected by Fx.
func NewAccountHandler(uc usecase.AccountUsecase, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		uc:     uc,
		logger: logger,
	}
}

// Greet answers the root path with a plain-text greeting.
func (h *AccountHandler) Greet(c echo.Context) error {
	return c.String(http.StatusOK, "user account service is running")
}

// SignUp handles the account registration request.
func (h *AccountHandler) SignUp(c echo.Context) error {
	var input *usecase.SignUpInput
	if err := c.Bind(&input); err != nil {
		return response.Error(c, http.StatusBadRequest, "invalid signup input")
	}
	if err := c.Validate(input); err != nil {
		return err
	}

	output, err := h.uc.SignUp(c.Request().Context(), input)
	if err != nil {
		// The conflict body echoes the existing record's public fields.
		var taken *usecase.EmailTakenError
		if errors.As(err, &taken) {
			return c.JSON(domainerrors.ErrEmailTaken.HTTPCode(), echo.Map{
				"msg":    domainerrors.ErrEmailTaken.Message(),
				"userdb": taken.Existing,
			})
		}

		return errors.WithStack(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"msg":    "user created",
		"email":  output.Email,
		"result": output.Created,
	})
}

// SignIn handles the login request. The access token travels in the body and
// the refresh token only in the cookie.
func (h *AccountHandler) SignIn(c echo.Context) error {
	var input *usecase.SignInInput
	if err := c.Bind(&input); err != nil {
		return response.Error(c, http.StatusBadRequest, "invalid signin input")
	}
	if err := c.Validate(input); err != nil {
		return err
	}

	output, err := h.uc.SignIn(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	// The cookie's max-age outlives the refresh token's signature expiry on
	// purpose: the token simply stops verifying once expired.
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    output.RefreshToken,
		MaxAge:   int(output.CookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		Path:     "/",
	})

	return c.JSON(http.StatusOK, echo.Map{
		"msg":   "login successful",
		"token": output.AccessToken,
	})
}

// Refresh mints a new access token from the refresh cookie.
func (h *AccountHandler) Refresh(c echo.Context) error {
	input := &usecase.RefreshInput{}
	if cookie, err := c.Cookie(refreshCookieName); err == nil {
		input.RefreshToken = cookie.Value
	}

	output, err := h.uc.Refresh(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"accessToken": output.AccessToken,
	})
}

// GetProfile returns the public record for the requested email. The caller's
// identity comes from the verified token claim set by the auth gate.
func (h *AccountHandler) GetProfile(c echo.Context) error {
	callerEmail, ok := deliverycontext.GetCallerEmail(c)
	if !ok {
		return response.Error(c, http.StatusUnauthorized, "missing verified identity")
	}

	user, err := h.uc.GetProfile(c.Request().Context(), c.Param("email"), callerEmail)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.JSON(http.StatusOK, user)
}

// sendMailInput carries the reset-request body.
type sendMailInput struct {
	Email string `json:"email" validate:"required,email"`
}

// SendMail handles the password-reset mail request.
func (h *AccountHandler) SendMail(c echo.Context) error {
	var input *sendMailInput
	if err := c.Bind(&input); err != nil {
		return response.Error(c, http.StatusBadRequest, "invalid sendmail input")
	}
	if err := c.Validate(input); err != nil {
		return err
	}

	output, err := h.uc.RequestPasswordReset(c.Request().Context(), input.Email)
	if err != nil {
		return errors.WithStack(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"msg":        "reset mail sent",
		"previewUrl": output.PreviewURL,
	})
}

// ResetPassword overwrites the account's password.
func (h *AccountHandler) ResetPassword(c echo.Context) error {
	var input *usecase.ResetPasswordInput
	if err := c.Bind(&input); err != nil {
		return response.Error(c, http.StatusBadRequest, "invalid reset input")
	}
	if err := c.Validate(input); err != nil {
		return err
	}

	if err := h.uc.ResetPassword(c.Request().Context(), input); err != nil {
		return errors.WithStack(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"msg":   "password updated",
		"email": input.Email,
	})
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
