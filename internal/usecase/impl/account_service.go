// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/fx"

	"passport/config"
	deliverycontext "passport/internal/delivery/context"
	"passport/internal/domain/entity"
	domainerrors "passport/internal/domain/errors"
	"passport/internal/domain/repository"
	"passport/internal/domain/service"
	"passport/internal/usecase"
)

// accountService implements the AccountUsecase interface.
type accountService struct {
	txManager         repository.TransactionManager
	userRepo          repository.UserRepository
	resetTokenRepo    repository.ResetTokenRepository
	hasher            service.PasswordHasher
	tokenService      service.TokenService
	mailSender        service.MailSender
	resetTokenTTL     time.Duration
	requireResetToken bool
	resetLinkBase     string
	cookieMaxAge      time.Duration
	logger            *slog.Logger
}

// AccountServiceParams holds dependencies for accountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	TxManager      repository.TransactionManager
	UserRepo       repository.UserRepository
	ResetTokenRepo repository.ResetTokenRepository
	Hasher         service.PasswordHasher
	TokenService   service.TokenService
	MailSender     service.MailSender
	Config         *config.Config
	Logger         *slog.Logger
}

// NewAccountService is the constructor for accountService. It receives all dependencies as interfaces.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	srv := &accountService{
		txManager:         params.TxManager,
		userRepo:          params.UserRepo,
		resetTokenRepo:    params.ResetTokenRepo,
		hasher:            params.Hasher,
		tokenService:      params.TokenService,
		mailSender:        params.MailSender,
		resetTokenTTL:     config.DefaultResetTokenTTL,
		cookieMaxAge:      config.DefaultRefreshCookieMaxAge,
		requireResetToken: true,
		logger:            params.Logger,
	}

	if params.Config != nil {
		if params.Config.Auth != nil {
			if params.Config.Auth.ResetTokenTTL > 0 {
				srv.resetTokenTTL = params.Config.Auth.ResetTokenTTL
			}
			if params.Config.Auth.RefreshCookieMaxAge > 0 {
				srv.cookieMaxAge = params.Config.Auth.RefreshCookieMaxAge
			}
			// An omitted key keeps the hardened default; only an explicit
			// false disables the reset-token requirement.
			if params.Config.Auth.RequireResetToken != nil {
				srv.requireResetToken = *params.Config.Auth.RequireResetToken
			}
		}
		if params.Config.Mail != nil {
			srv.resetLinkBase = params.Config.Mail.ResetLinkBase
		}
	}

	return srv
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// SignUp registers a new account.
// Uniqueness is delegated to the store's unique email index: the insert either
// wins or reports a collision, so two concurrent signups for the same email
// can never both succeed.
func (srv *accountService) SignUp(ctx context.Context, input *usecase.SignUpInput) (*usecase.SignUpOutput, error) {
	srv.log(ctx).Info("Starting signup", slog.String("email", input.Email))

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during signup", slog.Any("error", err))

		return nil, domainerrors.ErrOperation.WrapMessage("failed to hash password during signup")
	}

	newUser := &entity.User{
		Email:        input.Email,
		Name:         input.Name,
		DateOfBirth:  input.DateOfBirth,
		Contact:      input.Contact,
		PasswordHash: hashedPassword,
	}

	if err := srv.userRepo.Create(ctx, newUser); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, srv.buildEmailTakenError(ctx, input.Email)
		}

		srv.log(ctx).Error("Failed to create user during signup", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create user during signup")
	}

	srv.log(ctx).Debug("Signup completed", slog.String("email", newUser.Email), slog.Uint64("userID", uint64(newUser.ID)))

	return &usecase.SignUpOutput{Email: newUser.Email, Created: true}, nil
}

// buildEmailTakenError loads the existing record so the conflict response can
// echo its public fields. The stored hash is stripped before it leaves here.
func (srv *accountService) buildEmailTakenError(ctx context.Context, email string) error {
	srv.log(ctx).Warn("Signup rejected, email already registered", slog.String("email", email))

	existing, err := srv.userRepo.FindByEmail(ctx, email)
	if err != nil {
		// The record vanished between the collision and this read; the
		// conflict outcome still stands, just without the echo.
		return &usecase.EmailTakenError{}
	}

	return &usecase.EmailTakenError{Existing: existing.Public()}
}

// SignIn verifies credentials and issues a token pair.
func (srv *accountService) SignIn(ctx context.Context, input *usecase.SignInInput) (*usecase.SignInOutput, error) {
	srv.log(ctx).Debug("Starting signin", slog.String("email", input.Email))

	user, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Warn("Signin failed, no such user", slog.String("email", input.Email))

			return nil, domainerrors.ErrUserNotFound.WrapMessage("signin failed")
		}

		return nil, errors.Wrap(err, "failed to load user during signin")
	}

	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Signin failed, password mismatch", slog.String("email", input.Email))

		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("signin failed")
	}

	accessToken, err := srv.tokenService.IssueAccessToken(user.Email)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue access token")
	}

	refreshToken, err := srv.tokenService.IssueRefreshToken(user.Email)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue refresh token")
	}

	srv.log(ctx).Debug("Signin succeeded", slog.String("email", user.Email))

	return &usecase.SignInOutput{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		CookieMaxAge: srv.cookieMaxAge,
	}, nil
}

// Refresh mints a new access token from a verified refresh token.
// The email claim is taken from the verified token itself and carried through
// explicitly; nothing else identifies the caller on this path.
func (srv *accountService) Refresh(ctx context.Context, input *usecase.RefreshInput) (*usecase.RefreshOutput, error) {
	srv.log(ctx).Debug("Attempting access token refresh")

	if input.RefreshToken == "" {
		return nil, domainerrors.ErrRefreshUnauthorized.WrapMessage("refresh cookie missing")
	}

	claims, err := srv.tokenService.VerifyRefreshToken(input.RefreshToken)
	if err != nil {
		srv.log(ctx).Warn("Refresh rejected", slog.Any("error", err))

		return nil, domainerrors.ErrRefreshUnauthorized.WrapMessage("refresh token rejected")
	}

	accessToken, err := srv.tokenService.IssueAccessToken(claims.Email)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue access token during refresh")
	}

	srv.log(ctx).Debug("Access token refreshed", slog.String("email", claims.Email))

	return &usecase.RefreshOutput{AccessToken: accessToken}, nil
}

// GetProfile returns the public record for email.
// Authorization comes from the verified token claim, not the requested path:
// a caller may only read their own profile.
func (srv *accountService) GetProfile(ctx context.Context, email string, callerEmail string) (*entity.PublicUser, error) {
	if email != callerEmail {
		srv.log(ctx).Warn("Profile request for foreign account rejected",
			slog.String("requested", email), slog.String("caller", callerEmail))

		return nil, domainerrors.ErrForbidden.WrapMessage("profile access denied")
	}

	user, err := srv.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound.WrapMessage("profile lookup failed")
		}

		return nil, errors.Wrap(err, "failed to load user profile")
	}

	return user.Public(), nil
}

// RequestPasswordReset issues a single-use reset token and mails the link.
// Only the token's SHA-256 hash is persisted; the raw token travels in the
// mail alone. A mail failure is reported to the caller, not swallowed.
func (srv *accountService) RequestPasswordReset(ctx context.Context, email string) (*usecase.ResetRequestOutput, error) {
	srv.log(ctx).Info("Password reset requested", slog.String("email", email))

	if _, err := srv.userRepo.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrEmailUnknown.WrapMessage("reset request for unknown email")
		}

		return nil, errors.Wrap(err, "failed to load user for reset request")
	}

	rawToken, err := newResetToken()
	if err != nil {
		return nil, domainerrors.ErrOperation.WrapMessage("failed to generate reset token")
	}

	reset := &entity.PasswordReset{
		Email:     email,
		TokenHash: hashToken(rawToken),
		ExpiresAt: time.Now().Add(srv.resetTokenTTL),
	}

	if err := srv.resetTokenRepo.Create(ctx, reset); err != nil {
		return nil, errors.Wrap(err, "failed to store reset token")
	}

	// Opportunistic cleanup; a failure here never blocks the reset flow.
	if err := srv.resetTokenRepo.DeleteExpired(ctx); err != nil {
		srv.log(ctx).Warn("Failed to prune expired reset tokens", slog.Any("error", err))
	}

	delivery, err := srv.mailSender.Send(ctx, srv.buildResetMail(email, rawToken))
	if err != nil {
		srv.log(ctx).Error("Failed to send reset mail", slog.String("email", email), slog.Any("error", err))

		return nil, domainerrors.ErrMailDelivery.WrapMessage("failed to send reset mail")
	}

	srv.log(ctx).Info("Reset mail sent", slog.String("email", email), slog.String("messageID", delivery.MessageID))

	return &usecase.ResetRequestOutput{Email: email, PreviewURL: delivery.PreviewURL}, nil
}

func (srv *accountService) buildResetMail(email, rawToken string) *service.MailMessage {
	link := srv.resetLinkBase
	if link != "" {
		link += "?token=" + url.QueryEscape(rawToken) + "&email=" + url.QueryEscape(email)
	}

	return &service.MailMessage{
		To:       email,
		Subject:  "Reset Password",
		TextBody: "Reset your password: " + link,
		HTMLBody: fmt.Sprintf(
			`<div><h1>Click the below link to go to the password reset page</h1><a href=%q>click this link to reset password</a></div>`,
			link,
		),
	}
}

// ResetPassword overwrites the stored hash for the account.
// Token verification, consumption and the hash update run in one transaction
// so a redeemed token can never be replayed against a half-applied reset.
func (srv *accountService) ResetPassword(ctx context.Context, input *usecase.ResetPasswordInput) error {
	srv.log(ctx).Info("Resetting password", slog.String("email", input.Email))

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during reset", slog.Any("error", err))

		return domainerrors.ErrOperation.WrapMessage("failed to hash password during reset")
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()
		resetRepo := repoFactory.ResetTokenRepo()

		if _, err := userRepo.FindByEmail(ctx, input.Email); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrUserNotFound.WrapMessage("reset for unknown email")
			}

			return errors.Wrap(err, "failed to load user during reset")
		}

		if err := srv.consumeResetToken(ctx, resetRepo, input); err != nil {
			return err
		}

		if err := userRepo.UpdatePasswordHash(ctx, input.Email, hashedPassword); err != nil {
			return errors.Wrap(err, "failed to update password hash")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Password reset failed", slog.String("email", input.Email), slog.Any("error", err))

		return err
	}

	// Existing access/refresh tokens stay valid until they expire; the
	// stateless token design has no revocation path.
	srv.log(ctx).Info("Password reset completed", slog.String("email", input.Email))

	return nil
}

// consumeResetToken validates and redeems the single-use token when one is
// required or supplied.
func (srv *accountService) consumeResetToken(ctx context.Context, resetRepo repository.ResetTokenRepository, input *usecase.ResetPasswordInput) error {
	if input.Token == "" {
		if srv.requireResetToken {
			return domainerrors.ErrResetTokenInvalid.WrapMessage("reset token missing")
		}

		return nil
	}

	reset, err := resetRepo.FindByHash(ctx, hashToken(input.Token))
	if err != nil {
		if errors.Is(err, repository.ErrResetTokenNotFound) {
			return domainerrors.ErrResetTokenInvalid.WrapMessage("reset token unknown")
		}

		return errors.Wrap(err, "failed to look up reset token")
	}

	if reset.Email != input.Email || !reset.Usable(time.Now()) {
		return domainerrors.ErrResetTokenInvalid.WrapMessage("reset token not usable")
	}

	if err := resetRepo.MarkUsed(ctx, reset.ID); err != nil {
		return errors.Wrap(err, "failed to consume reset token")
	}

	return nil
}

// newResetToken draws 32 random bytes and encodes them as hex.
func newResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "failed to read random bytes")
	}

	return hex.EncodeToString(buf), nil
}

// hashToken derives the storable SHA-256 hex digest of a raw token.
func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))

	return hex.EncodeToString(sum[:])
}
