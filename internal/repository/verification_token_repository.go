package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrVerificationTokenNotFound = errors.New("verification token not found")

// メール認証トークンの保存・取得・消費
type VerificationTokenRepository interface {
	Create(ctx context.Context, token *model.VerificationToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.VerificationToken, error)
	// used=falseの行だけをtrueにする（0件ならErrVerificationTokenNotFound）
	MarkUsed(ctx context.Context, tokenID string) error
}
