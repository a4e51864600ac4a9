package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"passport/config"
	"passport/internal/domain/entity"
	"passport/internal/domain/repository"
	"passport/internal/domain/service"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func boolPtr(b bool) *bool {
	return &b
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.SecretKey.Access = "access-secret"
	cfg.SecretKey.Refresh = "refresh-secret"
	cfg.Auth = &config.AuthConfig{
		BcryptCost:          bcrypt.MinCost,
		AccessTokenTTL:      time.Minute,
		RefreshTokenTTL:     2 * time.Minute,
		RefreshCookieMaxAge: 24 * time.Hour,
		ResetTokenTTL:       15 * time.Minute,
		RequireResetToken:   boolPtr(true),
	}
	cfg.Mail = &config.MailConfig{
		From:          "noreply@example.com",
		ResetLinkBase: "https://accounts.example.com/reset",
	}

	return cfg
}

// fakeUserRepo is an in-memory UserRepository with the same uniqueness
// guarantee as the real store: the insert is atomic under a single lock.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entity.User)}
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	copied := *user

	return &copied, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Email]; exists {
		return repository.ErrEmailTaken
	}

	r.nextID++
	user.ID = r.nextID
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	copied := *user
	r.users[user.Email] = &copied

	return nil
}

func (r *fakeUserRepo) UpdatePasswordHash(_ context.Context, email string, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[email]
	if !ok {
		return repository.ErrUserNotFound
	}

	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now()

	return nil
}

func (r *fakeUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.users)
}

// fakeResetTokenRepo is an in-memory ResetTokenRepository keyed by token hash.
type fakeResetTokenRepo struct {
	mu     sync.Mutex
	nextID uint
	resets map[string]*entity.PasswordReset
}

func newFakeResetTokenRepo() *fakeResetTokenRepo {
	return &fakeResetTokenRepo{resets: make(map[string]*entity.PasswordReset)}
}

func (r *fakeResetTokenRepo) Create(_ context.Context, reset *entity.PasswordReset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	reset.ID = r.nextID
	reset.CreatedAt = time.Now()

	copied := *reset
	r.resets[reset.TokenHash] = &copied

	return nil
}

func (r *fakeResetTokenRepo) FindByHash(_ context.Context, tokenHash string) (*entity.PasswordReset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reset, ok := r.resets[tokenHash]
	if !ok {
		return nil, repository.ErrResetTokenNotFound
	}

	copied := *reset

	return &copied, nil
}

func (r *fakeResetTokenRepo) MarkUsed(_ context.Context, id uint) error {
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

func (r *fakeResetTokenRepo) DeleteExpired(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for hash, reset := range r.resets {
		if now.After(reset.ExpiresAt) {
			delete(r.resets, hash)
		}
	}

	return nil
}

// fakeRepoFactory hands out the shared in-memory repositories; the fake
// transaction manager just runs the function without transactional semantics.
type fakeRepoFactory struct {
	userRepo  *fakeUserRepo
	resetRepo *fakeResetTokenRepo
}

func (f *fakeRepoFactory) UserRepo() repository.UserRepository {
	return f.userRepo
}

func (f *fakeRepoFactory) ResetTokenRepo() repository.ResetTokenRepository {
	return f.resetRepo
}

type fakeTxManager struct {
	factory *fakeRepoFactory
}

func (m *fakeTxManager) Execute(_ context.Context, fn func(txRepoFactory repository.RepositoryFactory) error) error {
	return fn(m.factory)
}

// fakeMailSender records outbound messages instead of delivering them.
type fakeMailSender struct {
	mu      sync.Mutex
	sent    []*service.MailMessage
	sendErr error
}

func (s *fakeMailSender) Send(_ context.Context, msg *service.MailMessage) (*service.MailDelivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sendErr != nil {
		return nil, s.sendErr
	}

	s.sent = append(s.sent, msg)

	return &service.MailDelivery{
		MessageID:  "test-message",
		PreviewURL: "https://preview.example.com/test-message",
	}, nil
}

func (s *fakeMailSender) lastMail() *service.MailMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sent) == 0 {
		return nil
	}

	return s.sent[len(s.sent)-1]
}
