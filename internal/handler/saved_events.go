package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fyd-app/fyd-api/internal/model"
	"github.com/fyd-app/fyd-api/internal/service"
)

type savedEventsResp struct {
	SavedEvents []model.SavedEvent `json:"savedEvents"`
}

type isSavedResp struct {
	IsSaved bool `json:"isSaved"`
}

// SavedEvents: GET /api/users/saved-events.
func (h *UserHandler) SavedEvents(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	evs, found, err := h.Users.GetSavedEvents(ctx, id.UserID)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	if !found {
		return fail(c, http.StatusNotFound, "User not found")
	}
	return ok(c, http.StatusOK, savedEventsResp{SavedEvents: evs}, "")
}

// SaveEvent: POST /api/users/saved-events.  A second save of the same
// eventId is a 400 and leaves the list unchanged.
func (h *UserHandler) SaveEvent(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	var req service.SaveEventInput
	if err := bind(c, &req); err != nil {
		return respondError(c, h.Logger, err)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	evs, found, err := h.Users.SaveEvent(ctx, id.UserID, req)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	if !found {
		return fail(c, http.StatusNotFound, "User not found")
	}
	return ok(c, http.StatusOK, savedEventsResp{SavedEvents: evs}, "Event saved successfully")
}

// RemoveSavedEvent: DELETE /api/users/saved-events/:eventId.
func (h *UserHandler) RemoveSavedEvent(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	evs, found, err := h.Users.RemoveSavedEvent(ctx, id.UserID, c.Param("eventId"))
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	if !found {
		return fail(c, http.StatusNotFound, "User not found")
	}
	return ok(c, http.StatusOK, savedEventsResp{SavedEvents: evs}, "Event removed successfully")
}

// CheckSavedEvent: GET /api/users/saved-events/:eventId/check.
func (h *UserHandler) CheckSavedEvent(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	saved, err := h.Users.IsEventSaved(ctx, id.UserID, c.Param("eventId"))
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return ok(c, http.StatusOK, isSavedResp{IsSaved: saved}, "")
}
