package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"passport/config"
	custommw "passport/internal/delivery/http/middleware"
	"passport/internal/delivery/http/validator"
	"passport/internal/domain/entity"
	"passport/internal/domain/repository"
	"passport/internal/domain/service"
	"passport/internal/infra/auth"
	"passport/internal/usecase/impl"
)

// memUserRepo is a minimal in-memory credential store for the wired scenario.
type memUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[string]*entity.User
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *user

	return &copied, nil
}

func (r *memUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Email]; exists {
		return repository.ErrEmailTaken
	}
	r.nextID++
	user.ID = r.nextID
	copied := *user
	r.users[user.Email] = &copied

	return nil
}

func (r *memUserRepo) UpdatePasswordHash(_ context.Context, email string, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}
	user.PasswordHash = passwordHash

	return nil
}

type memResetRepo struct {
	mu     sync.Mutex
	nextID uint
	resets map[string]*entity.PasswordReset
}

func (r *memResetRepo) Create(_ context.Context, reset *entity.PasswordReset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	reset.ID = r.nextID
	copied := *reset
	r.resets[reset.TokenHash] = &copied

	return nil
}

func (r *memResetRepo) FindByHash(_ context.Context, tokenHash string) (*entity.PasswordReset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reset, ok := r.resets[tokenHash]
	if !ok {
		return nil, repository.ErrResetTokenNotFound
	}
	copied := *reset

	return &copied, nil
}

func (r *memResetRepo) MarkUsed(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, reset := range r.resets {
		if reset.ID == id && reset.UsedAt == nil {
			now := time.Now()
			reset.UsedAt = &now

			return nil
		}
	}

	return repository.ErrResetTokenNotFound
}

func (r *memResetRepo) DeleteExpired(_ context.Context) error {
	return nil
}

type memRepoFactory struct {
	userRepo  *memUserRepo
	resetRepo *memResetRepo
}

func (f *memRepoFactory) UserRepo() repository.UserRepository {
	return f.userRepo
}

func (f *memRepoFactory) ResetTokenRepo() repository.ResetTokenRepository {
	return f.resetRepo
}

type memTxManager struct {
	factory *memRepoFactory
}

func (m *memTxManager) Execute(_ context.Context, fn func(txRepoFactory repository.RepositoryFactory) error) error {
	return fn(m.factory)
}

type memMailSender struct {
	mu   sync.Mutex
	sent []*service.MailMessage
}

func (s *memMailSender) Send(_ context.Context, msg *service.MailMessage) (*service.MailDelivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sent = append(s.sent, msg)

	return &service.MailDelivery{
		MessageID:  "scenario-message",
		PreviewURL: "https://preview.example.com/scenario-message",
	}, nil
}

func (s *memMailSender) lastMail() *service.MailMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sent) == 0 {
		return nil
	}

	return s.sent[len(s.sent)-1]
}

// newScenarioServer wires the real account service behind the real routes,
// auth gate and error handler, backed by in-memory stores.
func newScenarioServer(t *testing.T) (*echo.Echo, *memMailSender) {
	t.Helper()

	cfg := &config.Config{}
	cfg.SecretKey.Access = "access-secret"
	cfg.SecretKey.Refresh = "refresh-secret"
	cfg.Auth = &config.AuthConfig{
		BcryptCost:          bcrypt.MinCost,
		AccessTokenTTL:      time.Minute,
		RefreshTokenTTL:     2 * time.Minute,
		RefreshCookieMaxAge: 24 * time.Hour,
		ResetTokenTTL:       15 * time.Minute,
	}
	cfg.ApplyDefaults()
	cfg.Mail = &config.MailConfig{
		From:          "noreply@example.com",
		ResetLinkBase: "https://accounts.example.com/reset",
	}

	tokenSvc, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	userRepo := &memUserRepo{users: make(map[string]*entity.User)}
	resetRepo := &memResetRepo{resets: make(map[string]*entity.PasswordReset)}
	mail := &memMailSender{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	uc := impl.NewAccountService(impl.AccountServiceParams{
		TxManager:      &memTxManager{factory: &memRepoFactory{userRepo: userRepo, resetRepo: resetRepo}},
		UserRepo:       userRepo,
		ResetTokenRepo: resetRepo,
		Hasher:         auth.NewBcryptHasherWithCost(bcrypt.MinCost),
		TokenService:   tokenSvc,
		MailSender:     mail,
		Config:         cfg,
		Logger:         logger,
	})

	e := echo.New()
	e.Validator = validator.New()
	e.HTTPErrorHandler = custommw.NewErrorMiddleware(logger).HandleHTTPError

	h := NewAccountHandler(uc, logger)
	gate := custommw.NewAuthMiddleware(tokenSvc)
	e.GET("/", h.Greet)
	e.POST("/signup", h.SignUp)
	e.POST("/signin", h.SignIn)
	e.POST("/refresh", h.Refresh)
	e.POST("/sendmail", h.SendMail)
	e.POST("/reset", h.ResetPassword)
	e.GET("/profile/:email", h.GetProfile, gate.Authenticate)

	return e, mail
}

// TestAccountLifecycle_EndToEnd drives the whole account lifecycle through the
// HTTP stack: signup, duplicate signup, signin, bad password, authorized
// profile read, refresh, reset mail, token-bound reset and re-signin.
func TestAccountLifecycle_EndToEnd(t *testing.T) {
	e, mail := newScenarioServer(t)

	// Signup succeeds once.
	rec := doJSON(e, http.MethodPost, "/signup",
		`{"name":"Alice","dob":"2000-01-01","contact":"555","email":"a@x.com","password":"pw1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["result"])

	// A second signup for the same email conflicts and echoes the original
	// record without the hash.
	rec = doJSON(e, http.MethodPost, "/signup",
		`{"name":"Impostor","email":"a@x.com","password":"other"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "user already present", body["msg"])
	userdb, ok := body["userdb"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Alice", userdb["name"])
	assert.NotContains(t, rec.Body.String(), "password")

	// Signin with the right password yields a token and the refresh cookie.
	rec = doJSON(e, http.MethodPost, "/signin", `{"email":"a@x.com","password":"pw1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	accessToken, _ := decodeBody(t, rec)["token"].(string)
	require.NotEmpty(t, accessToken)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	refreshCookie := cookies[0]
	assert.Equal(t, "jwt", refreshCookie.Name)

	// Signin with the wrong password is rejected.
	rec = doJSON(e, http.MethodPost, "/signin", `{"email":"a@x.com","password":"wrong"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// The issued access token opens the caller's own profile, hash stripped.
	req := httptest.NewRequest(http.MethodGet, "/profile/a@x.com", nil)
	req.Header.Set("Authorization", accessToken)
	profileRec := httptest.NewRecorder()
	e.ServeHTTP(profileRec, req)
	require.Equal(t, http.StatusOK, profileRec.Code)
	assert.Equal(t, "Alice", decodeBody(t, profileRec)["name"])
	assert.NotContains(t, profileRec.Body.String(), "password")

	// Without a token the gate short-circuits.
	req = httptest.NewRequest(http.MethodGet, "/profile/a@x.com", nil)
	profileRec = httptest.NewRecorder()
	e.ServeHTTP(profileRec, req)
	assert.Equal(t, http.StatusUnauthorized, profileRec.Code)

	// The refresh cookie mints a fresh access token that also opens the profile.
	req = httptest.NewRequest(http.MethodPost, "/refresh", nil)
	req.AddCookie(refreshCookie)
	refreshRec := httptest.NewRecorder()
	e.ServeHTTP(refreshRec, req)
	require.Equal(t, http.StatusOK, refreshRec.Code)
	freshToken, _ := decodeBody(t, refreshRec)["accessToken"].(string)
	require.NotEmpty(t, freshToken)

	req = httptest.NewRequest(http.MethodGet, "/profile/a@x.com", nil)
	req.Header.Set("Authorization", freshToken)
	profileRec = httptest.NewRecorder()
	e.ServeHTTP(profileRec, req)
	assert.Equal(t, http.StatusOK, profileRec.Code)

	// Refresh without the cookie answers the contract's 406.
	rec = doJSON(e, http.MethodPost, "/refresh", "")
	require.Equal(t, http.StatusNotAcceptable, rec.Code)
	assert.Equal(t, "Unauthorized", decodeBody(t, rec)["message"])

	// The reset mail carries the single-use token.
	rec = doJSON(e, http.MethodPost, "/sendmail", `{"email":"a@x.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["previewUrl"])
	require.NotNil(t, mail.lastMail())
	resetToken := scenarioResetToken(t, mail.lastMail().TextBody)

	// The token redeems exactly once and flips the password.
	rec = doJSON(e, http.MethodPost, "/reset",
		`{"email":"a@x.com","password":"pw2","token":"`+resetToken+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodPost, "/signin", `{"email":"a@x.com","password":"pw1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "the old password must no longer sign in")

	rec = doJSON(e, http.MethodPost, "/signin", `{"email":"a@x.com","password":"pw2"}`)
	assert.Equal(t, http.StatusOK, rec.Code, "the new password must sign in")

	// Replaying the redeemed token fails.
	rec = doJSON(e, http.MethodPost, "/reset",
		`{"email":"a@x.com","password":"pw3","token":"`+resetToken+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func scenarioResetToken(t *testing.T, body string) string {
	t.Helper()

	idx := strings.Index(body, "https://")
	require.GreaterOrEqual(t, idx, 0)

	link, err := url.Parse(strings.TrimSpace(body[idx:]))
	require.NoError(t, err)

	token := link.Query().Get("token")
	require.NotEmpty(t, token)

	return token
}
