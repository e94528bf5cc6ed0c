package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// リフレッシュトークンの保存・取得・失効
// 行は物理削除しない。失効はrevokedフラグで表す。
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	// revoked=falseの行だけを失効させる（0件ならErrRefreshTokenNotFound）
	Revoke(ctx context.Context, tokenID string) error
	//再利用検知時のセッション一斉失効
	RevokeAllByUserID(ctx context.Context, userID string) error
}
