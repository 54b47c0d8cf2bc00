package router

import (
	"github.com/labstack/echo/v4"

	"github.com/fyd-app/fyd-api/internal/handler"
	"github.com/fyd-app/fyd-api/internal/middleware"
	"github.com/fyd-app/fyd-api/internal/model"
)

// RegisterUsers mounts /api/users.  Every route needs an access token;
// listing, creating and deleting users additionally need the admin role.
// Get and update check "admin or self" in the handler.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/api/users", middleware.JWTAuth(jwtSecret), limit)
	admin := middleware.RequireRole(model.RoleAdmin)

	// static saved-events paths win over /:id in Echo's router
	g.GET("/saved-events", u.SavedEvents)
	g.POST("/saved-events", u.SaveEvent)
	g.DELETE("/saved-events/:eventId", u.RemoveSavedEvent)
	g.GET("/saved-events/:eventId/check", u.CheckSavedEvent)

	g.GET("", u.List, admin)
	g.POST("/add-user", u.Create, admin)
	g.GET("/:id", u.Get)
	g.PUT("/:id", u.Update)
	g.DELETE("/:id", u.Delete, admin)
}
