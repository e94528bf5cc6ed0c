package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"
	"app/internal/token"

	"github.com/labstack/gommon/log"
)

// API返却用。パスワードハッシュは絶対に載せない。
type UserDTO struct {
	ID         string `json:"user_id"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	IsVerified bool   `json:"is_verified"`
	IsActive   bool   `json:"is_active"`
}

// token 形（JwtAccessToken相当）
type JwtAccessToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// 会員登録の入力
type RegisterInput struct {
	Email           string
	Username        string
	FirstName       string
	LastName        string
	Password        string
	ConfirmPassword string
}

// 会員登録の出力
type RegisterOutput struct {
	User UserDTO `json:"user"`
}

// handlerからusecaseに渡す入力
// EmailとUsernameは排他（両方指定はvalidatorが弾く）
type LoginInput struct {
	Email    string
	Username string
	Password string
}

// handlerがJSONにして返す
type LoginOutput struct {
	User  UserDTO        `json:"user"`
	Token JwtAccessToken `json:"token"`
}

// handlerがCookieに詰めるために必要な値
type LoginSideEffect struct {
	PlainRefreshToken string
	AccessExpiresAt   time.Time
	RefreshExpiresAt  time.Time
}

type RefreshOutput struct {
	User  UserDTO        `json:"user"`
	Token JwtAccessToken `json:"token"`
}

type RefreshSideEffect struct {
	PlainRefreshToken string
	AccessExpiresAt   time.Time
	RefreshExpiresAt  time.Time
}

// AuthUsecaseはログイン・トークン発行・ローテーションを担う。
// 共有状態はストアのみ。プロセス内キャッシュは持たない。
type AuthUsecase struct {
	users         repository.UserRepository
	refreshTokens repository.RefreshTokenRepository
	tx            repository.TransactionManager
	validator     AuthValidator
	hasher        PasswordHasher
	verifier      PasswordVerifier
	issuer        TokenIssuer
	idGen         IDGenerator
	clock         Clock
	mail          MailSender
	verification  *VerificationUsecase
	appName       string
	baseURL       string
}

// DI
func NewAuthUsecase(
	users repository.UserRepository,
	refreshTokens repository.RefreshTokenRepository,
	tx repository.TransactionManager,
	validator AuthValidator,
	hasher PasswordHasher,
	verifier PasswordVerifier,
	issuer TokenIssuer,
	idGen IDGenerator,
	clock Clock,
	mail MailSender,
	verification *VerificationUsecase,
	appName string,
	baseURL string,
) *AuthUsecase {
	return &AuthUsecase{
		users:         users,
		refreshTokens: refreshTokens,
		tx:            tx,
		validator:     validator,
		hasher:        hasher,
		verifier:      verifier,
		issuer:        issuer,
		idGen:         idGen,
		clock:         clock,
		mail:          mail,
		verification:  verification,
		appName:       appName,
		baseURL:       baseURL,
	}
}

// 会員登録実行。成功したら認証メールを裏で送る。
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (*RegisterOutput, error) {
	//入力検証（validatorに寄せる）
	if err := u.validator.ValidateRegister(ctx, in); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.ToLower(strings.TrimSpace(in.Username))

	// email/username重複チェック
	exists, err := u.users.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrConflict
	}

	//パスワードは必ずハッシュ化して保存（平文保存しない）
	hashed, err := u.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := u.clock.Now()

	user := &model.User{
		ID:           u.idGen.NewID(),
		Email:        email,
		Username:     username,
		PasswordHash: hashed,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		IsVerified:   false,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}

	//メール認証トークンを発行して送信（送信はレスポンスを待たせない）
	verifToken, err := u.verification.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	u.sendVerificationMail(user, verifToken)

	return &RegisterOutput{User: toUserDTO(user)}, nil
}

// ログイン処理を実行する
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (*LoginOutput, *LoginSideEffect, error) {
	if err := u.validator.ValidateLogin(ctx, in); err != nil {
		return nil, nil, err
	}

	//識別子はemailかusernameのどちらか片方
	var user *model.User
	var err error
	if in.Email != "" {
		user, err = u.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	} else {
		user, err = u.users.FindByUsername(ctx, strings.ToLower(strings.TrimSpace(in.Username)))
	}
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			//存在有無は外向きには区別しない
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	//判定順序：存在 → 資格情報 → 停止 → 未認証
	if !u.verifier.Verify(in.Password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, nil, ErrUserInactive
	}
	if !user.IsVerified {
		return nil, nil, ErrUserUnverified
	}

	now := u.clock.Now()

	//AccessToken発行（短命）
	accessToken, accessExp, err := u.issuer.IssueAccess(user.ID, now)
	if err != nil {
		return nil, nil, err
	}

	//RefreshToken発行（長命）。DBにはhashだけ保存
	refreshPlain, refreshExp, err := u.issuer.IssueRefresh(user.ID, now)
	if err != nil {
		return nil, nil, err
	}

	rt := &model.RefreshToken{
		ID:        u.idGen.NewID(),
		UserID:    user.ID,
		TokenHash: token.Fingerprint(refreshPlain),
		Revoked:   false,
		ExpiresAt: refreshExp,
		CreatedAt: now,
	}
	if err := u.refreshTokens.Create(ctx, rt); err != nil {
		return nil, nil, err
	}

	//最終ログイン時刻更新
	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := u.users.Update(ctx, user); err != nil {
		return nil, nil, err
	}

	out := &LoginOutput{
		User: toUserDTO(user),
		Token: JwtAccessToken{
			AccessToken: accessToken,
			ExpiresIn:   int(accessExp.Sub(now).Seconds()),
		},
	}
	side := &LoginSideEffect{
		PlainRefreshToken: refreshPlain,
		AccessExpiresAt:   accessExp,
		RefreshExpiresAt:  refreshExp,
	}

	return out, side, nil
}

// Refresh はローテーションプロトコル本体。
// 提示トークンの照合・失効・新ペア発行をひとつのトランザクションで行う。
func (u *AuthUsecase) Refresh(ctx context.Context, refreshTokenPlain string) (*RefreshOutput, *RefreshSideEffect, error) {
	if err := u.validator.ValidateRefresh(ctx, refreshTokenPlain); err != nil {
		return nil, nil, err
	}

	tokenHash := token.Fingerprint(refreshTokenPlain)
	now := u.clock.Now()

	var out RefreshOutput
	var side RefreshSideEffect
	var reuseDetected bool

	err := u.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		rt, err := r.RefreshTokens().FindByTokenHash(ctx, tokenHash)
		if err != nil {
			if errors.Is(err, repository.ErrRefreshTokenNotFound) {
				return ErrUnauthorized
			}
			return err
		}

		//ちょうどexpires_atの瞬間も期限切れ扱い（fail closed）
		if !now.Before(rt.ExpiresAt) {
			return ErrUnauthorized
		}

		user, err := r.Users().FindByID(ctx, rt.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if !user.IsActive {
			return ErrForbidden
		}

		//再利用検知：失効済みトークンの再提示はセッション全体を畳む。
		//一斉失効をcommitさせるため、ここではerrorを返さずフラグで抜ける
		if rt.Revoked {
			if err := r.RefreshTokens().RevokeAllByUserID(ctx, rt.UserID); err != nil {
				return err
			}
			reuseDetected = true
			return nil
		}

		//ローテーション：消費したトークンを失効させてから新ペアを発行。
		//行は残す（将来の再利用チェックの証跡）
		if err := r.RefreshTokens().Revoke(ctx, rt.ID); err != nil {
			if errors.Is(err, repository.ErrRefreshTokenNotFound) {
				//並行リクエストに先を越された。勝者は一人だけ
				return ErrUnauthorized
			}
			return err
		}

		accessToken, accessExp, err := u.issuer.IssueAccess(user.ID, now)
		if err != nil {
			return err
		}

		refreshPlain, refreshExp, err := u.issuer.IssueRefresh(user.ID, now)
		if err != nil {
			return err
		}

		newRT := &model.RefreshToken{
			ID:        u.idGen.NewID(),
			UserID:    user.ID,
			TokenHash: token.Fingerprint(refreshPlain),
			Revoked:   false,
			ExpiresAt: refreshExp,
			CreatedAt: now,
		}
		if err := r.RefreshTokens().Create(ctx, newRT); err != nil {
			return err
		}

		out = RefreshOutput{
			User: toUserDTO(user),
			Token: JwtAccessToken{
				AccessToken: accessToken,
				ExpiresIn:   int(accessExp.Sub(now).Seconds()),
			},
		}
		side = RefreshSideEffect{
			PlainRefreshToken: refreshPlain,
			AccessExpiresAt:   accessExp,
			RefreshExpiresAt:  refreshExp,
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if reuseDetected {
		return nil, nil, ErrTokenReuse
	}

	return &out, &side, nil
}

// Logout は提示されたリフレッシュトークンを失効させる。
func (u *AuthUsecase) Logout(ctx context.Context, refreshTokenPlain string) error {
	if strings.TrimSpace(refreshTokenPlain) == "" {
		return ErrUnauthorized
	}

	rt, err := u.refreshTokens.FindByTokenHash(ctx, token.Fingerprint(refreshTokenPlain))
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return ErrUnauthorized
		}
		return err
	}

	if err := u.refreshTokens.Revoke(ctx, rt.ID); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			return ErrUnauthorized
		}
		return err
	}

	return nil
}

// Me は認証済みユーザー自身の情報を返す。
// 停止・未認証ユーザーはアクセストークンが有効でも弾く。
func (u *AuthUsecase) Me(ctx context.Context, userID string) (*UserDTO, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if !user.IsVerified {
		return nil, ErrUserUnverified
	}

	dto := toUserDTO(user)
	return &dto, nil
}

// 認証リンク付きメールを裏で送る。失敗はログに残すだけでレスポンスには影響させない。
func (u *AuthUsecase) sendVerificationMail(user *model.User, verifToken string) {
	link := fmt.Sprintf(
		"%s/auth/verify_email?token=%s",
		strings.TrimRight(u.baseURL, "/"),
		url.QueryEscape(verifToken),
	)
	params := map[string]string{
		"receiver":          user.Username,
		"app_name":          u.appName,
		"verification_link": link,
	}
	to := []string{user.Email}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := u.mail.Send(ctx, to, params); err != nil {
			log.Warnf("verification mail send failed: %v", err)
		}
	}()
}

// model.UserをAPI返却用DTOに変換。
func toUserDTO(u *model.User) UserDTO {
	return UserDTO{
		ID:         u.ID,
		Email:      u.Email,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		IsVerified: u.IsVerified,
		IsActive:   u.IsActive,
	}
}
