package usecase

import "errors"

var (
	//401 メールまたはパスワードが違う（存在しない場合も外向きには同じ）
	ErrInvalidCredentials = errors.New("invalid credentials")
	//403 停止済みユーザー
	ErrUserInactive = errors.New("user is inactive")
	//403 メール未認証
	ErrUserUnverified = errors.New("user is not verified")
	//404 リフレッシュ時にユーザーが消えている
	ErrUserNotFound = errors.New("user not found")
	//401 無効・期限切れのリフレッシュトークン
	ErrUnauthorized = errors.New("unauthorized")
	//401 失効済みトークンの再提示（盗難の疑い）
	ErrTokenReuse = errors.New("refresh token reuse detected")
	//403 権限
	ErrForbidden = errors.New("forbidden")
	//409 email/username重複
	ErrConflict = errors.New("email or username already exists")

	//403 メール認証トークンが存在しない
	ErrVerificationNotFound = errors.New("verification token not found")
	//403 メール認証トークンが期限切れ
	ErrVerificationExpired = errors.New("verification token expired")
	//403 メール認証トークンが使用済み
	ErrVerificationUsed = errors.New("verification token already used")
)
