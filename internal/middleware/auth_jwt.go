package middleware

import (
	"errors"
	"net/http"
	"strings"

	"app/internal/token"

	"github.com/labstack/echo/v4"
)

const CtxUserIDKey = "user_id" // string

// アクセストークン検証ミドルウェア。
// Authorization: Bearer を優先し、なければaccess_token cookieを見る。
func AuthJWT(codec *token.Codec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c)
			if raw == "" {
				if cookie, err := c.Cookie("access_token"); err == nil {
					raw = cookie.Value
				}
			}
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("could not validate credentials"))
			}

			claims, err := codec.Decode(raw)
			if err != nil {
				if errors.Is(err, token.ErrTokenExpired) {
					return c.JSON(http.StatusUnauthorized, errorJSON("token has expired"))
				}
				return c.JSON(http.StatusUnauthorized, errorJSON("could not validate credentials"))
			}

			//contextへ保存
			c.Set(CtxUserIDKey, claims.UserID)

			return next(c)
		}
	}
}

// handler側でuser_idを取り出すヘルパ
func UserIDFromContext(c echo.Context) (string, bool) {
	v := c.Get(CtxUserIDKey)
	if v == nil {
		return "", false
	}

	id, ok := v.(string)
	if !ok || id == "" {
		return "", false
	}

	return id, true
}

func bearerToken(c echo.Context) string {
	authz := c.Request().Header.Get("Authorization")
	if authz == "" {
		return ""
	}

	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func errorJSON(msg string) map[string]string {
	return map[string]string{"error": msg}
}
