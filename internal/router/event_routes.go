package router

import (
	"github.com/labstack/echo/v4"

	"github.com/fyd-app/fyd-api/internal/handler"
	"github.com/fyd-app/fyd-api/internal/middleware"
)

// RegisterEvents mounts /api/events behind authentication.
func RegisterEvents(e *echo.Echo, h *handler.EventHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/api/events", middleware.JWTAuth(jwtSecret), limit)
	g.POST("/fetch", h.Fetch)
}
