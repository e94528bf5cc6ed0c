package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// 署名は正しいが期限切れ
	ErrTokenExpired = errors.New("token expired")
	// 署名不正・形式不正
	ErrTokenInvalid = errors.New("invalid token")
)

// デコード結果のclaim
type Claims struct {
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
	JTI       string // refreshのみ
}

// Codecは署名付きトークンの発行とデコードを担う。
// シークレットとアルゴリズム（HS256固定）はプロセス起動時に決まり、以後不変。
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time // expiry判定用（テストで差し替え）
}

func NewCodec(secret string, accessTTL, refreshTTL time.Duration, now func() time.Time) *Codec {
	if now == nil {
		now = time.Now
	}
	return &Codec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        now,
	}
}

// アクセストークン発行。claimsは{user_id, iat, exp}のみ。
func (c *Codec) IssueAccess(userID string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(c.accessTTL)

	claims := jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Unix(),
		"exp":     expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// リフレッシュトークン発行。jtiを足してハッシュ空間での偶然衝突を防ぐ。
func (c *Codec) IssueRefresh(userID string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(c.refreshTTL)

	claims := jwt.MapClaims{
		"user_id": userID,
		"iat":     now.Unix(),
		"exp":     expiresAt.Unix(),
		"jti":     uuid.NewString(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// Decode はトークンを検証してclaimsを返す。状態は一切変えない。
func (c *Codec) Decode(raw string) (Claims, error) {
	parsed, err := jwt.Parse(
		raw,
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return Claims{}, ErrTokenInvalid
	}

	userID, ok := mapClaims["user_id"].(string)
	if !ok || userID == "" {
		return Claims{}, ErrTokenInvalid
	}

	out := Claims{UserID: userID}

	if iat, ok := mapClaims["iat"].(float64); ok {
		out.IssuedAt = time.Unix(int64(iat), 0)
	}
	if exp, ok := mapClaims["exp"].(float64); ok {
		out.ExpiresAt = time.Unix(int64(exp), 0)
	}
	if jti, ok := mapClaims["jti"].(string); ok {
		out.JTI = jti
	}

	return out, nil
}

// Fingerprint は保存・検索用の一方向ダイジェスト。
// プロセスをまたいで安定（ソルトなし）。平文はDBに残さない。
func Fingerprint(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// GenerateOpaque はメール認証用のランダムなURL-safe文字列を作る。
// claimsを持つ必要がないので署名形式とは独立。32バイトのエントロピー。
func GenerateOpaque() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
