package usecase

import (
	"context"
	"fmt"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"

	"github.com/stretchr/testify/mock"
)

// テスト用の固定時計
type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// 連番ID
type seqIDGen struct{ n int }

func (g *seqIDGen) NewID() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

// 決定的なトークン発行スタブ
type stubIssuer struct {
	accessTTL  time.Duration
	refreshTTL time.Duration
	issued     int
}

func (s *stubIssuer) IssueAccess(userID string, now time.Time) (string, time.Time, error) {
	return "access-" + userID, now.Add(s.accessTTL), nil
}

func (s *stubIssuer) IssueRefresh(userID string, now time.Time) (string, time.Time, error) {
	s.issued++
	return fmt.Sprintf("refresh-%s-%d", userID, s.issued), now.Add(s.refreshTTL), nil
}

// 全部通すvalidator。validatorの挙動は validator パッケージ側で検証する
type okValidator struct{}

func (okValidator) ValidateRegister(ctx context.Context, in RegisterInput) error { return nil }
func (okValidator) ValidateLogin(ctx context.Context, in LoginInput) error       { return nil }
func (okValidator) ValidateRefresh(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return ErrUnauthorized
	}
	return nil
}

// 送信paramsをchannelに流すメール送信スタブ
type stubMailSender struct{ sent chan map[string]string }

func (s *stubMailSender) Send(ctx context.Context, to []string, params map[string]string) error {
	if s.sent != nil {
		s.sent <- params
	}
	return nil
}

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) ExistsByEmailOrUsername(ctx context.Context, email string, username string) (bool, error) {
	args := m.Called(ctx, email, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) MarkVerified(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockRefreshTokenRepository struct{ mock.Mock }

func (m *MockRefreshTokenRepository) Create(ctx context.Context, token *model.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	args := m.Called(ctx, tokenHash)
	if t := args.Get(0); t != nil {
		return t.(*model.RefreshToken), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRefreshTokenRepository) Revoke(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) RevokeAllByUserID(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockVerificationTokenRepository struct{ mock.Mock }

func (m *MockVerificationTokenRepository) Create(ctx context.Context, token *model.VerificationToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockVerificationTokenRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*model.VerificationToken, error) {
	args := m.Called(ctx, tokenHash)
	if t := args.Get(0); t != nil {
		return t.(*model.VerificationToken), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockVerificationTokenRepository) MarkUsed(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

// mockのrepoをそのままtx内repoとして返す
type stubTxRepos struct {
	users  repository.UserRepository
	tokens repository.RefreshTokenRepository
	verifs repository.VerificationTokenRepository
}

func (r *stubTxRepos) Users() repository.UserRepository                 { return r.users }
func (r *stubTxRepos) RefreshTokens() repository.RefreshTokenRepository { return r.tokens }
func (r *stubTxRepos) VerificationTokens() repository.VerificationTokenRepository {
	return r.verifs
}

// fnをそのまま実行するTransactionManager
type passthroughTxManager struct{ repos repository.TxRepos }

func (m *passthroughTxManager) WithinTx(ctx context.Context, fn func(r repository.TxRepos) error) error {
	return fn(m.repos)
}
