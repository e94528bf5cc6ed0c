package server

import (
	"app/internal/handler"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, authH *handler.AuthHandler, guard echo.MiddlewareFunc) {
	authH.RegisterRoutes(e, guard)
}
