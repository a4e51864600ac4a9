package postgres

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"passport/internal/domain/entity"
	"passport/internal/domain/repository"
	"passport/internal/infra/persistence/model"
)

// resetTokenRepository implements the repository.ResetTokenRepository interface using GORM.
type resetTokenRepository struct {
	db *gorm.DB
}

// NewResetTokenRepository is the constructor for resetTokenRepository.
func NewResetTokenRepository(db *gorm.DB) repository.ResetTokenRepository {
	return &resetTokenRepository{db: db}
}

// Create persists a new reset grant.
func (repo *resetTokenRepository) Create(ctx context.Context, reset *entity.PasswordReset) error {
	resetM := fromResetDomain(reset)

	if err := repo.db.WithContext(ctx).Create(resetM).Error; err != nil {
		return errors.Wrap(err, "failed to create reset token")
	}

	reset.ID = resetM.ID
	reset.CreatedAt = resetM.CreatedAt

	return nil
}

// FindByHash retrieves a reset grant by the SHA-256 hash of its raw token.
func (repo *resetTokenRepository) FindByHash(ctx context.Context, tokenHash string) (*entity.PasswordReset, error) {
	var resetM model.ResetTokenModel

	err := repo.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&resetM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrResetTokenNotFound
		}

		return nil, errors.Wrap(err, "failed to find reset token by hash")
	}

	return toResetDomain(&resetM), nil
}

// MarkUsed records that the grant has been redeemed.
func (repo *resetTokenRepository) MarkUsed(ctx context.Context, id uint) error {
	now := time.Now()

	result := repo.db.WithContext(ctx).
		Model(&model.ResetTokenModel{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", now)

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to mark reset token used")
	}
	if result.RowsAffected == 0 {
		return repository.ErrResetTokenNotFound
	}

	return nil
}

// DeleteExpired removes grants whose expiry has passed.
func (repo *resetTokenRepository) DeleteExpired(ctx context.Context) error {
	err := repo.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&model.ResetTokenModel{}).Error
	if err != nil {
		return errors.Wrap(err, "failed to delete expired reset tokens")
	}

	return nil
}

// toResetDomain converts a GORM ResetTokenModel to a domain PasswordReset entity.
func toResetDomain(data *model.ResetTokenModel) *entity.PasswordReset {
	if data == nil {
		return nil
	}

	return &entity.PasswordReset{
		ID:        data.ID,
		Email:     data.Email,
		TokenHash: data.TokenHash,
		ExpiresAt: data.ExpiresAt,
		UsedAt:    data.UsedAt,
		CreatedAt: data.CreatedAt,
	}
}

// fromResetDomain converts a domain PasswordReset entity to a GORM ResetTokenModel.
func fromResetDomain(data *entity.PasswordReset) *model.ResetTokenModel {
	if data == nil {
		return nil
	}

	return &model.ResetTokenModel{
		ID:        data.ID,
		Email:     data.Email,
		TokenHash: data.TokenHash,
		ExpiresAt: data.ExpiresAt,
		UsedAt:    data.UsedAt,
	}
}
