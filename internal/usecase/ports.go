package usecase

import (
	"context"
	"time"
)

// 現在の時間
type Clock interface {
	Now() time.Time
}

// UUID 等のIDを作る約束
type IDGenerator interface {
	NewID() string
}

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

// 署名付きトークンを発行する約束
type TokenIssuer interface {
	IssueAccess(userID string, now time.Time) (token string, expiresAt time.Time, err error)
	IssueRefresh(userID string, now time.Time) (token string, expiresAt time.Time, err error)
}

// メール送信。応答を待たせないため呼び出し側でgoroutineに逃がす。
type MailSender interface {
	Send(ctx context.Context, to []string, params map[string]string) error
}

// usecaseがValidatorInterfaceに依存する約束
type AuthValidator interface {
	ValidateRegister(ctx context.Context, in RegisterInput) error
	ValidateLogin(ctx context.Context, in LoginInput) error
	ValidateRefresh(ctx context.Context, refreshToken string) error
}
