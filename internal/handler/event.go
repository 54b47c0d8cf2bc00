package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyd-app/fyd-api/internal/model"
	"github.com/fyd-app/fyd-api/internal/service"
)

// EventHandler serves /api/events.
type EventHandler struct {
	Events *service.EventService
	Logger *zap.Logger
}

func NewEventHandler(s *service.EventService, logger *zap.Logger) *EventHandler {
	return &EventHandler{Events: s, Logger: logger}
}

// Fetch: POST /api/events/fetch with {ville, interet}.  The provider call
// is bounded by the client timeout, not requestTimeout.
func (h *EventHandler) Fetch(c echo.Context) error {
	var req service.FetchEventsInput
	if err := bind(c, &req); err != nil {
		return respondError(c, h.Logger, err)
	}
	h.Logger.Info("fetch events", zap.String("city", req.City), zap.Strings("interests", req.Interests))

	events, err := h.Events.FetchExternalEvents(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.Logger, err)
	}
	return ok(c, http.StatusOK, model.FormatEvents(events), "")
}
