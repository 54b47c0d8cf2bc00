package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyd-app/fyd-api/internal/model"
	"github.com/fyd-app/fyd-api/internal/service"
)

// AuthHandler serves /auth.
type AuthHandler struct {
	Auth   *service.AuthService
	Users  *service.UserService
	Logger *zap.Logger
}

func NewAuthHandler(a *service.AuthService, u *service.UserService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{Auth: a, Users: u, Logger: logger}
}

type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type registerResp struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

type loginResp struct {
	User         model.User `json:"user"`
	Token        string     `json:"token"`
	RefreshToken string     `json:"refreshToken"`
}

type tokenResp struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// Register: POST /auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	var req service.RegisterInput
	if err := bind(c, &req); err != nil {
		return respondError(c, h.Logger, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	res, err := h.Auth.Register(ctx, req)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return ok(c, http.StatusCreated, registerResp{User: res.User, Token: res.AccessToken}, "User registered successfully")
}

// Login: POST /auth/login.  Every credential failure gets the same 401.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return respondError(c, h.Logger, err)
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, h.Logger, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	res, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return ok(c, http.StatusOK, loginResp{User: res.User, Token: res.AccessToken, RefreshToken: res.RefreshToken}, "Login successful")
}

// Refresh: POST /auth/refresh.  The presented refresh token is rotated.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := bind(c, &req); err != nil {
		return respondError(c, h.Logger, err)
	}
	if err := c.Validate(&req); err != nil {
		return respondError(c, h.Logger, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	res, err := h.Auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return ok(c, http.StatusOK, tokenResp{Token: res.AccessToken, RefreshToken: res.RefreshToken}, "")
}

// Logout: POST /auth/logout.  Access tokens stay valid until they expire.
func (h *AuthHandler) Logout(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	if err := h.Auth.Logout(ctx, id.UserID); err != nil {
		return respondError(c, h.Logger, err)
	}
	return ok(c, http.StatusOK, nil, "Logged out")
}

// Me: GET /auth/me.
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	u, found, err := h.Users.GetUserByID(ctx, id.UserID)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	if !found {
		return fail(c, http.StatusNotFound, "User not found")
	}
	return ok(c, http.StatusOK, u, "")
}
