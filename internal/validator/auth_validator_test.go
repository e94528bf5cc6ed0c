package validator

import (
	"context"
	"testing"

	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func validRegisterInput() usecase.RegisterInput {
	return usecase.RegisterInput{
		Email:           "taro@example.com",
		Username:        "taro1234",
		FirstName:       "Taro",
		LastName:        "Yamada",
		Password:        "Passw0rd!",
		ConfirmPassword: "Passw0rd!",
	}
}

func TestValidateRegister(t *testing.T) {
	v := NewAuthValidator()
	ctx := context.Background()

	t.Run("valid input", func(t *testing.T) {
		assert.NoError(t, v.ValidateRegister(ctx, validRegisterInput()))
	})

	t.Run("invalid email", func(t *testing.T) {
		in := validRegisterInput()
		in.Email = "not-an-email"
		assert.ErrorIs(t, v.ValidateRegister(ctx, in), ErrInvalidEmail)
	})

	t.Run("username too short", func(t *testing.T) {
		in := validRegisterInput()
		in.Username = "abc"
		assert.ErrorIs(t, v.ValidateRegister(ctx, in), ErrInvalidUsername)
	})

	t.Run("username with symbols", func(t *testing.T) {
		in := validRegisterInput()
		in.Username = "taro_1234"
		assert.ErrorIs(t, v.ValidateRegister(ctx, in), ErrInvalidUsername)
	})

	t.Run("short name", func(t *testing.T) {
		in := validRegisterInput()
		in.FirstName = "T"
		assert.ErrorIs(t, v.ValidateRegister(ctx, in), ErrInvalidName)
	})

	t.Run("password too short", func(t *testing.T) {
		in := validRegisterInput()
		in.Password = "P0d!"
		in.ConfirmPassword = "P0d!"
		assert.ErrorIs(t, v.ValidateRegister(ctx, in), ErrPasswordTooShort)
	})

	t.Run("weak password", func(t *testing.T) {
		in := validRegisterInput()
		in.Password = "passwordonly"
		in.ConfirmPassword = "passwordonly"
		assert.ErrorIs(t, v.ValidateRegister(ctx, in), ErrWeakPassword)
	})

	t.Run("confirm mismatch", func(t *testing.T) {
		in := validRegisterInput()
		in.ConfirmPassword = "Different1!"
		assert.ErrorIs(t, v.ValidateRegister(ctx, in), ErrPasswordMismatch)
	})

	//どの失敗もErrInvalidInputにまとめてマッチすること（handlerの400判定用）
	t.Run("all wrap ErrInvalidInput", func(t *testing.T) {
		in := validRegisterInput()
		in.Username = "x"
		assert.ErrorIs(t, v.ValidateRegister(ctx, in), ErrInvalidInput)
	})
}

func TestValidateLogin(t *testing.T) {
	v := NewAuthValidator()
	ctx := context.Background()

	t.Run("email only", func(t *testing.T) {
		err := v.ValidateLogin(ctx, usecase.LoginInput{Email: "taro@example.com", Password: "x"})
		assert.NoError(t, err)
	})

	t.Run("username only", func(t *testing.T) {
		err := v.ValidateLogin(ctx, usecase.LoginInput{Username: "taro1234", Password: "x"})
		assert.NoError(t, err)
	})

	//識別子は排他
	t.Run("both identifiers", func(t *testing.T) {
		err := v.ValidateLogin(ctx, usecase.LoginInput{Email: "taro@example.com", Username: "taro1234", Password: "x"})
		assert.ErrorIs(t, err, ErrBothIdentifiers)
	})

	t.Run("no identifier", func(t *testing.T) {
		err := v.ValidateLogin(ctx, usecase.LoginInput{Password: "x"})
		assert.ErrorIs(t, err, ErrNoIdentifier)
	})

	t.Run("missing password", func(t *testing.T) {
		err := v.ValidateLogin(ctx, usecase.LoginInput{Email: "taro@example.com"})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestValidateRefresh(t *testing.T) {
	v := NewAuthValidator()
	ctx := context.Background()

	assert.NoError(t, v.ValidateRefresh(ctx, "some-token"))

	//欠落は入力不備ではなく認証失敗
	assert.ErrorIs(t, v.ValidateRefresh(ctx, ""), usecase.ErrUnauthorized)
	assert.ErrorIs(t, v.ValidateRefresh(ctx, "   "), usecase.ErrUnauthorized)
}
