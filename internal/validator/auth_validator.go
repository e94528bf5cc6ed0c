package validator

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"app/internal/usecase"
)

var (
	// 入力が不正（詳細は個別のエラーで補足する）
	ErrInvalidInput = errors.New("invalid input")

	ErrPasswordMismatch = fmt.Errorf("%w: password and confirm password do not match", ErrInvalidInput)
	ErrBothIdentifiers  = fmt.Errorf("%w: provide either username or email, not both", ErrInvalidInput)
	ErrNoIdentifier     = fmt.Errorf("%w: username or email is required", ErrInvalidInput)
	ErrInvalidEmail     = fmt.Errorf("%w: invalid email format", ErrInvalidInput)
	ErrInvalidUsername  = fmt.Errorf("%w: username must be 4-20 alphanumeric characters", ErrInvalidInput)
	ErrInvalidName      = fmt.Errorf("%w: first and last name must be at least 2 characters", ErrInvalidInput)
	ErrPasswordTooShort = fmt.Errorf("%w: password must contain at least 8 characters", ErrInvalidInput)
	ErrWeakPassword     = fmt.Errorf("%w: password must contain an uppercase letter, a digit and a special character", ErrInvalidInput)
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

type authValidator struct{}

// Usecaseは interface を依存注入
func NewAuthValidator() usecase.AuthValidator {
	return &authValidator{}
}

// サインアップの入力を検証
func (v *authValidator) ValidateRegister(ctx context.Context, in usecase.RegisterInput) error {
	email := strings.TrimSpace(in.Email)
	username := strings.TrimSpace(in.Username)

	// 必須チェック
	if email == "" || username == "" || in.Password == "" {
		return ErrInvalidInput
	}

	if !isEmailLike(email) {
		return ErrInvalidEmail
	}

	// username 4〜20文字の英数字
	if len(username) < 4 || len(username) > 20 || !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}

	// 氏名は2文字以上
	if len(strings.TrimSpace(in.FirstName)) < 2 || len(strings.TrimSpace(in.LastName)) < 2 {
		return ErrInvalidName
	}

	if len(in.Password) < 8 {
		return ErrPasswordTooShort
	}
	if !hasRequiredClasses(in.Password) {
		return ErrWeakPassword
	}

	// 確認用と一致すること
	if in.Password != in.ConfirmPassword {
		return ErrPasswordMismatch
	}

	return nil
}

// ログインの入力を検証
func (v *authValidator) ValidateLogin(ctx context.Context, in usecase.LoginInput) error {
	email := strings.TrimSpace(in.Email)
	username := strings.TrimSpace(in.Username)

	// 識別子は排他。両方はエラー
	if email != "" && username != "" {
		return ErrBothIdentifiers
	}
	if email == "" && username == "" {
		return ErrNoIdentifier
	}

	if email != "" && !isEmailLike(email) {
		return ErrInvalidEmail
	}

	if in.Password == "" {
		return ErrInvalidInput
	}

	return nil
}

// refresh 入力を検証
func (v *authValidator) ValidateRefresh(ctx context.Context, refreshToken string) error {
	// トークン欠落は入力不備ではなく認証失敗として扱う
	if strings.TrimSpace(refreshToken) == "" {
		return usecase.ErrUnauthorized
	}

	return nil
}

// 簡易メール形式をチェック
func isEmailLike(s string) bool {
	_, err := mail.ParseAddress(s)
	return err == nil
}

// 大文字・数字・記号を最低1つずつ
func hasRequiredClasses(password string) bool {
	var hasUpper, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune("@#$%^&+=!\"", r):
			hasSpecial = true
		}
	}
	return hasUpper && hasDigit && hasSpecial
}
