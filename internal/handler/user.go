package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyd-app/fyd-api/internal/model"
	"github.com/fyd-app/fyd-api/internal/service"
	"github.com/fyd-app/fyd-api/internal/utils"
)

// UserHandler serves /api/users, including the saved-events sub-resource.
type UserHandler struct {
	Users  *service.UserService
	Logger *zap.Logger
}

func NewUserHandler(u *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{Users: u, Logger: logger}
}

// List: GET /api/users (admin).
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	users, err := h.Users.GetAllUsers(ctx)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return ok(c, http.StatusOK, users, fmt.Sprintf("Retrieved %d users", len(users)))
}

// Create: POST /api/users/add-user (admin).
func (h *UserHandler) Create(c echo.Context) error {
	var req service.CreateUserInput
	if err := bind(c, &req); err != nil {
		return respondError(c, h.Logger, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	u, err := h.Users.CreateUser(ctx, req)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	if id, found := callerOrZero(c); found {
		h.Logger.Info("user created by admin", zap.String("user_id", u.ID.Hex()), zap.String("by", id.UserID))
	}
	return ok(c, http.StatusCreated, u, "User created successfully")
}

// Get: GET /api/users/:id (admin or the user themself).
func (h *UserHandler) Get(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	target := c.Param("id")
	if !canAccess(id, target) {
		return fail(c, http.StatusForbidden, "forbidden")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	u, found, err := h.Users.GetUserByID(ctx, target)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	if !found {
		return fail(c, http.StatusNotFound, "User not found")
	}
	return ok(c, http.StatusOK, u, "User retrieved successfully")
}

// Update: PUT /api/users/:id.  Users may edit their own profile but only
// admins may change role or isActive.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	target := c.Param("id")
	if !canAccess(id, target) {
		return fail(c, http.StatusForbidden, "forbidden")
	}
	var req service.UpdateUserInput
	if err := bind(c, &req); err != nil {
		return respondError(c, h.Logger, err)
	}
	if id.Role != model.RoleAdmin && (req.Role != nil || req.IsActive != nil) {
		return fail(c, http.StatusForbidden, "only admins may change role or isActive")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	u, found, err := h.Users.UpdateUser(ctx, target, req)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	if !found {
		return fail(c, http.StatusNotFound, "User not found")
	}
	return ok(c, http.StatusOK, u, "User updated successfully")
}

// Delete: DELETE /api/users/:id (admin).
func (h *UserHandler) Delete(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()

	u, found, err := h.Users.DeleteUser(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	if !found {
		return fail(c, http.StatusNotFound, "User not found")
	}
	return ok(c, http.StatusOK, u, "User deleted successfully")
}

func canAccess(id utils.Identity, target string) bool {
	return id.Role == model.RoleAdmin || id.UserID == target
}

func callerOrZero(c echo.Context) (utils.Identity, bool) {
	id, err := caller(c)
	return id, err == nil
}
