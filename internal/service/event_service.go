package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyd-app/fyd-api/internal/model"
	"github.com/fyd-app/fyd-api/internal/ticketing"
	"github.com/fyd-app/fyd-api/internal/validation"
)

// EventService proxies the external events provider.
type EventService struct {
	fetcher  ticketing.Fetcher
	validate *validation.Validator
	logger   *zap.Logger
}

func NewEventService(f ticketing.Fetcher, v *validation.Validator, logger *zap.Logger) *EventService {
	return &EventService{fetcher: f, validate: v, logger: logger}
}

// FetchEventsInput filters provider events.
type FetchEventsInput struct {
	City      string   `json:"ville" validate:"required"`
	Interests []string `json:"interet" validate:"required"`
}

// FetchExternalEvents returns the provider's raw events for the filters.
// It is all-or-nothing: any provider failure is reported as
// ErrExternalService and no events are returned.
func (s *EventService) FetchExternalEvents(ctx context.Context, in FetchEventsInput) ([]model.ExternalEvent, error) {
	if err := s.validate.Validate(&in); err != nil {
		return nil, err
	}
	events, err := s.fetcher.FetchEvents(ctx, ticketing.Query{City: in.City, Interests: in.Interests})
	if err != nil {
		s.logger.Error("fetch external events failed", zap.String("city", in.City), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrExternalService, err)
	}
	return events, nil
}
