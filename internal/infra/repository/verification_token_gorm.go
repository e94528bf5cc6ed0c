package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	domainrepo "app/internal/repository"

	"gorm.io/gorm"
)

type verificationTokenGormRepository struct {
	db *gorm.DB
}

// GORM実装
func NewVerificationTokenGormRepository(db *gorm.DB) domainrepo.VerificationTokenRepository {
	return &verificationTokenGormRepository{db: db}
}

// メール認証トークンを保存。
func (r *verificationTokenGormRepository) Create(ctx context.Context, token *model.VerificationToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		return err
	}
	return nil
}

// token_hashで1件検索します。
func (r *verificationTokenGormRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.VerificationToken, error) {
	var token model.VerificationToken

	err := r.db.WithContext(ctx).
		Where("token_hash = ?", tokenHash).
		First(&token).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainrepo.ErrVerificationTokenNotFound
		}
		return nil, err
	}

	return &token, nil
}

// usedをセットして「使用済み」にします。
// used=falseの行だけが対象なので、同時に来ても成功は一度きり。
func (r *verificationTokenGormRepository) MarkUsed(ctx context.Context, tokenID string) error {
	result := r.db.WithContext(ctx).
		Model(&model.VerificationToken{}).
		Where("id = ? AND used = ?", tokenID, false).
		Update("used", true)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return domainrepo.ErrVerificationTokenNotFound
	}

	return nil
}
