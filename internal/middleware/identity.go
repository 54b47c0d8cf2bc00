package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/fyd-app/fyd-api/internal/utils"
)

// Context keys set by JWTAuth.
const (
	ctxUserID = "user_id"
	ctxEmail  = "email"
	ctxRole   = "role"
)

// CurrentIdentity returns the identity JWTAuth stored on c.  ok is false
// on routes that are not behind JWTAuth.
func CurrentIdentity(c echo.Context) (utils.Identity, bool) {
	id, _ := c.Get(ctxUserID).(string)
	if id == "" {
		return utils.Identity{}, false
	}
	email, _ := c.Get(ctxEmail).(string)
	role, _ := c.Get(ctxRole).(string)
	return utils.Identity{UserID: id, Email: email, Role: role}, true
}

func setIdentity(c echo.Context, id utils.Identity) {
	c.Set(ctxUserID, id.UserID)
	c.Set(ctxEmail, id.Email)
	c.Set(ctxRole, id.Role)
}

// userID is the rate-limit key part for the caller, "anon" for guests.
func userID(c echo.Context) string {
	if id, ok := CurrentIdentity(c); ok {
		return id.UserID
	}
	return "anon"
}

// fail writes the error envelope used by every handler.
func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "error": msg})
}
