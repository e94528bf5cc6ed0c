package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"
	"app/internal/token"
)

// VerificationUsecaseはメール認証トークンの発行と一度きりの消費を担う。
type VerificationUsecase struct {
	tokens repository.VerificationTokenRepository
	tx     repository.TransactionManager
	idGen  IDGenerator
	clock  Clock
	ttl    time.Duration
}

// DI
func NewVerificationUsecase(
	tokens repository.VerificationTokenRepository,
	tx repository.TransactionManager,
	idGen IDGenerator,
	clock Clock,
	ttl time.Duration,
) *VerificationUsecase {
	return &VerificationUsecase{
		tokens: tokens,
		tx:     tx,
		idGen:  idGen,
		clock:  clock,
		ttl:    ttl,
	}
}

// Issue はランダムトークンを作ってhashだけ保存し、平文を返す。
// 平文はメールのリンクに埋めて届ける（送信は呼び出し側）。
func (u *VerificationUsecase) Issue(ctx context.Context, userID string) (string, error) {
	plain, err := token.GenerateOpaque()
	if err != nil {
		return "", err
	}

	now := u.clock.Now()

	vt := &model.VerificationToken{
		ID:        u.idGen.NewID(),
		UserID:    userID,
		TokenHash: token.Fingerprint(plain),
		Used:      false,
		ExpiresAt: now.Add(u.ttl),
		CreatedAt: now,
	}
	if err := u.tokens.Create(ctx, vt); err != nil {
		return "", err
	}

	return plain, nil
}

// Consume はトークンを一度だけ消費してユーザーを認証済みにする。
// used化とis_verified化は同一トランザクション。二度目は必ず失敗する。
func (u *VerificationUsecase) Consume(ctx context.Context, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return ErrVerificationNotFound
	}

	tokenHash := token.Fingerprint(raw)
	now := u.clock.Now()

	return u.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		vt, err := r.VerificationTokens().FindByTokenHash(ctx, tokenHash)
		if err != nil {
			if errors.Is(err, repository.ErrVerificationTokenNotFound) {
				return ErrVerificationNotFound
			}
			return err
		}

		//ちょうどexpires_atの瞬間も期限切れ扱い（fail closed）
		if !now.Before(vt.ExpiresAt) {
			return ErrVerificationExpired
		}
		if vt.Used {
			return ErrVerificationUsed
		}

		if err := r.VerificationTokens().MarkUsed(ctx, vt.ID); err != nil {
			if errors.Is(err, repository.ErrVerificationTokenNotFound) {
				//並行消費に負けた
				return ErrVerificationUsed
			}
			return err
		}

		return r.Users().MarkVerified(ctx, vt.UserID)
	})
}
