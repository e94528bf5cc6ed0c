package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DatabaseURL    string // Postgres接続文字列
	DBMaxOpenConns int    // コネクションプール上限
	DBMaxIdleConns int    // アイドル保持数

	TokenSecretKey string // トークン署名シークレット
	TokenAlgorithm string // 署名アルゴリズム（HS256のみ）

	AccessTokenExpireMinutes     int // アクセストークン有効期限（分）
	RefreshTokenExpireDays       int // リフレッシュトークン有効期限（日）
	VerificationTokenExpireHours int // メール認証トークン有効期限（時間）

	MailServer   string // SMTPサーバー
	MailPort     int    // SMTPポート
	MailUsername string // SMTPユーザー
	MailPassword string // SMTPパスワード
	MailFrom     string // 送信元アドレス
	MailFromName string // 送信元表示名

	AppBaseURL string // 認証リンクのベースURL
	GoEnv      string // dev/prod
}

// Loadは環境変数
func Load() (Config, error) {
	maxOpen, err := mustAtoi("DB_POOL_MAX_OPEN")
	if err != nil {
		return Config{}, err
	}
	maxIdle, err := mustAtoi("DB_POOL_MAX_IDLE")
	if err != nil {
		return Config{}, err
	}
	accessMin, err := mustAtoi("ACCESS_TOKEN_EXPIRE_MINUTES")
	if err != nil {
		return Config{}, err
	}
	refreshDays, err := mustAtoi("REFRESH_TOKEN_EXPIRE_DAYS")
	if err != nil {
		return Config{}, err
	}
	verifHours, err := mustAtoi("VERIFICATION_TOKEN_EXPIRE_HOURS")
	if err != nil {
		return Config{}, err
	}
	mailPort, err := mustAtoi("MAIL_PORT")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port: os.Getenv("PORT"),

		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DBMaxOpenConns: maxOpen,
		DBMaxIdleConns: maxIdle,

		TokenSecretKey: os.Getenv("TOKEN_SECRET_KEY"),
		TokenAlgorithm: os.Getenv("TOKEN_ALGORITHM"),

		AccessTokenExpireMinutes:     accessMin,
		RefreshTokenExpireDays:       refreshDays,
		VerificationTokenExpireHours: verifHours,

		MailServer:   os.Getenv("MAIL_SERVER"),
		MailPort:     mailPort,
		MailUsername: os.Getenv("MAIL_USERNAME"),
		MailPassword: os.Getenv("MAIL_PASSWORD"),
		MailFrom:     os.Getenv("MAIL_FROM"),
		MailFromName: os.Getenv("MAIL_FROM_NAME"),

		AppBaseURL: os.Getenv("APP_BASE_URL"),
		GoEnv:      os.Getenv("GO_ENV"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.TokenSecretKey == "" {
		return Config{}, fmt.Errorf("TOKEN_SECRET_KEY is required")
	}
	//対称鍵HS256以外は起動時に弾く
	if cfg.TokenAlgorithm != "HS256" {
		return Config{}, fmt.Errorf("TOKEN_ALGORITHM must be HS256, got %q", cfg.TokenAlgorithm)
	}
	if cfg.MailServer == "" {
		return Config{}, fmt.Errorf("MAIL_SERVER is required")
	}
	if cfg.MailFrom == "" {
		return Config{}, fmt.Errorf("MAIL_FROM is required")
	}
	if cfg.AppBaseURL == "" {
		return Config{}, fmt.Errorf("APP_BASE_URL is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}

	return cfg, nil
}

// アクセストークンTTL（分）
func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

// リフレッシュトークンTTL（単位は常に「日」）
func (c Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshTokenExpireDays) * 24 * time.Hour
}

// メール認証トークンTTL（時間）
func (c Config) VerificationTokenTTL() time.Duration {
	return time.Duration(c.VerificationTokenExpireHours) * time.Hour
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}
