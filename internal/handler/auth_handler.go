package handler

import (
	"errors"
	"net/http"
	"time"

	"app/internal/middleware"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// /authのHTTP
type AuthHandler struct {
	authUC       *usecase.AuthUsecase
	verifUC      *usecase.VerificationUsecase
	cookieSecure bool
}

// DI
func NewAuthHandler(
	authUC *usecase.AuthUsecase,
	verifUC *usecase.VerificationUsecase,
	cookieSecure bool,
) *AuthHandler {
	return &AuthHandler{
		authUC:       authUC,
		verifUC:      verifUC,
		cookieSecure: cookieSecure,
	}
}

// /auth/registerのリクエストボディ。
type registerRequest struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// /auth/loginのリクエストボディ。emailかusernameのどちらか片方を指定。
type loginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// /auth配下を登録
func (h *AuthHandler) RegisterRoutes(e *echo.Echo, guard echo.MiddlewareFunc) {
	g := e.Group("/auth")

	g.POST("/register", h.register)
	g.GET("/verify_email", h.verifyEmail)
	g.POST("/login", h.login)
	g.POST("/refresh", h.refresh)
	g.POST("/logout", h.logout)
	g.GET("/me", h.me, guard)
}

func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.authUC.Register(c.Request().Context(), usecase.RegisterInput{
		Email:           req.Email,
		Username:        req.Username,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *AuthHandler) verifyEmail(c echo.Context) error {
	tok := c.QueryParam("token")
	if tok == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "token is required"})
	}

	if err := h.verifUC.Consume(c.Request().Context(), tok); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "email verified"})
}

func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, side, err := h.authUC.Login(c.Request().Context(), usecase.LoginInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}

	//トークンはhttp-only cookieで運ぶ
	h.setAuthCookies(c, out.Token.AccessToken, side.AccessExpiresAt, side.PlainRefreshToken, side.RefreshExpiresAt)

	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) refresh(c echo.Context) error {
	//refresh tokenはcookieから
	cookie, err := c.Cookie("refresh_token")
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
	}

	out, side, err := h.authUC.Refresh(c.Request().Context(), cookie.Value)
	if err != nil {
		return writeError(c, err)
	}

	h.setAuthCookies(c, out.Token.AccessToken, side.AccessExpiresAt, side.PlainRefreshToken, side.RefreshExpiresAt)

	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) logout(c echo.Context) error {
	cookie, err := c.Cookie("refresh_token")
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
	}

	if err := h.authUC.Logout(c.Request().Context(), cookie.Value); err != nil {
		return writeError(c, err)
	}

	h.clearAuthCookies(c)

	return c.JSON(http.StatusOK, SuccessResponse{Message: "logout success"})
}

func (h *AuthHandler) me(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.authUC.Me(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

// usecaseのエラーをHTTPステータスに写す
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, validator.ErrInvalidInput):
		//入力不備は詳細を返す
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrConflict):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "the provided email or username already exists"})
	case errors.Is(err, usecase.ErrInvalidCredentials),
		errors.Is(err, usecase.ErrUnauthorized),
		errors.Is(err, usecase.ErrTokenReuse):
		//存在しない・パスワード違い・不正トークンは外向きには同じ応答
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
	case errors.Is(err, usecase.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "user not found"})
	case errors.Is(err, usecase.ErrUserInactive):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "this user is not active"})
	case errors.Is(err, usecase.ErrUserUnverified):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "please verify your email first"})
	case errors.Is(err, usecase.ErrForbidden):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	case errors.Is(err, usecase.ErrVerificationNotFound):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "invalid verification token"})
	case errors.Is(err, usecase.ErrVerificationExpired):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "verification token expired"})
	case errors.Is(err, usecase.ErrVerificationUsed):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "verification token already used"})
	default:
		//500 内部事情は漏らさない
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

// access/refreshを secure http-only cookie に詰める
func (h *AuthHandler) setAuthCookies(c echo.Context, access string, accessExp time.Time, refresh string, refreshExp time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     "access_token",
		Value:    access,
		Path:     "/",
		Expires:  accessExp,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	c.SetCookie(&http.Cookie{
		Name:     "refresh_token",
		Value:    refresh,
		Path:     "/",
		Expires:  refreshExp,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearAuthCookies(c echo.Context) {
	for _, name := range []string{"access_token", "refresh_token"} {
		c.SetCookie(&http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.cookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
