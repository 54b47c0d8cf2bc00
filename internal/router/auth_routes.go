package router

import (
	"github.com/labstack/echo/v4"

	"github.com/fyd-app/fyd-api/internal/handler"
	"github.com/fyd-app/fyd-api/internal/middleware"
)

// RegisterAuth mounts /auth.  Register, login and refresh are public;
// logout and me need an access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/auth", limit)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)

	jwt := middleware.JWTAuth(jwtSecret)
	g.POST("/logout", a.Logout, jwt)
	g.GET("/me", a.Me, jwt)
}
