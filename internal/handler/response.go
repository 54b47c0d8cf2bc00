// Package handler exposes the services over HTTP.  Every response uses
// the same envelope: {success, data?, message?, error?}.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyd-app/fyd-api/internal/middleware"
	"github.com/fyd-app/fyd-api/internal/service"
	"github.com/fyd-app/fyd-api/internal/utils"
	"github.com/fyd-app/fyd-api/internal/validation"
)

// requestTimeout bounds store work done on behalf of one request.
const requestTimeout = 5 * time.Second

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func ok(c echo.Context, status int, data any, msg string) error {
	return c.JSON(status, envelope{Success: true, Data: data, Message: msg})
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, envelope{Success: false, Error: msg})
}

// respondError maps a service error to its status.  Unclassified errors
// are logged and hidden behind a generic message.
func respondError(c echo.Context, logger *zap.Logger, err error) error {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		return fail(c, http.StatusBadRequest, verr.Message)
	case errors.Is(err, service.ErrDuplicateEvent):
		return fail(c, http.StatusBadRequest, "Event already saved")
	case errors.Is(err, service.ErrInvalidCredentials):
		return fail(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrExternalService):
		logger.Error("events provider failed", requestFields(c, err)...)
		return fail(c, http.StatusInternalServerError, "Failed to fetch events")
	case errors.Is(err, context.DeadlineExceeded):
		logger.Error("request timed out", requestFields(c, err)...)
		return fail(c, http.StatusInternalServerError, "Request timed out")
	default:
		logger.Error("request failed", requestFields(c, err)...)
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}
}

func requestFields(c echo.Context, err error) []zap.Field {
	return []zap.Field{
		zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err),
	}
}

// bind decodes the body into dst; a malformed body is a 400.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return validation.Errorf("invalid request body")
	}
	return nil
}

// caller returns the authenticated identity.  Routes using it sit behind
// JWTAuth, so a missing identity is a wiring bug reported as 401.
func caller(c echo.Context) (utils.Identity, error) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return utils.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return id, nil
}

func withTimeout(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}
