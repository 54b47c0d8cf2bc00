package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fyd-app/fyd-api/internal/model"
	"github.com/fyd-app/fyd-api/internal/queue"
	"github.com/fyd-app/fyd-api/internal/repository"
	"github.com/fyd-app/fyd-api/internal/utils"
	"github.com/fyd-app/fyd-api/internal/validation"
)

// UserService manages user documents and their saved events.
type UserService struct {
	users      repository.UserStore
	validate   *validation.Validator
	bcryptCost int
	publisher  queue.Publisher
	logger     *zap.Logger
	now        func() time.Time
}

func NewUserService(users repository.UserStore, v *validation.Validator, bcryptCost int, pub queue.Publisher, logger *zap.Logger) *UserService {
	if pub == nil {
		pub = queue.NopPublisher{}
	}
	return &UserService{
		users:      users,
		validate:   v,
		bcryptCost: bcryptCost,
		publisher:  pub,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreateUserInput is the admin create payload.  Role defaults to "user"
// and IsActive to true.
type CreateUserInput struct {
	Name      string   `json:"name" validate:"required"`
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required"`
	City      string   `json:"city"`
	Interests []string `json:"interests"`
	Age       *int     `json:"age" validate:"omitnil,gte=0,lte=150"`
	Role      string   `json:"role" validate:"omitempty,oneof=user admin"`
	IsActive  *bool    `json:"isActive"`
}

// UpdateUserInput is a partial update; nil fields are left unchanged.
type UpdateUserInput struct {
	Name      *string   `json:"name" validate:"omitnil,min=1"`
	Email     *string   `json:"email" validate:"omitnil,email"`
	Password  *string   `json:"password" validate:"omitnil,min=1"`
	City      *string   `json:"city"`
	Interests *[]string `json:"interests"`
	Age       *int      `json:"age" validate:"omitnil,gte=0,lte=150"`
	Role      *string   `json:"role" validate:"omitnil,oneof=user admin"`
	IsActive  *bool     `json:"isActive"`
}

// SaveEventInput is the bookmark payload for SaveEvent.
type SaveEventInput struct {
	EventID  string `json:"eventId" validate:"required"`
	Name     string `json:"name" validate:"required,max=100"`
	Date     string `json:"date" validate:"required"`
	Location string `json:"location" validate:"required,max=200"`
	ImageURL string `json:"imageUrl" validate:"omitempty,url"`
}

// CreateUser persists a new user.  A taken email is a validation error.
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = repository.NormalizeEmail(in.Email)
	if err := s.validate.Validate(&in); err != nil {
		return model.User{}, err
	}
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}
	u := model.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Age:          in.Age,
		City:         in.City,
		Role:         in.Role,
		IsActive:     true,
		Interests:    in.Interests,
	}
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
	if err := s.users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return model.User{}, validation.Errorf("email already registered")
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// GetAllUsers returns every user, newest first.
func (s *UserService) GetAllUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// GetUserByID returns the user and true, or false when it does not exist.
func (s *UserService) GetUserByID(ctx context.Context, id string) (model.User, bool, error) {
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, false, nil
	}
	if err != nil {
		return model.User{}, false, fmt.Errorf("get user: %w", err)
	}
	return u, true, nil
}

// UpdateUser validates and applies a partial update.
func (s *UserService) UpdateUser(ctx context.Context, id string, in UpdateUserInput) (model.User, bool, error) {
	if in.Email != nil {
		e := repository.NormalizeEmail(*in.Email)
		in.Email = &e
	}
	if in.Name != nil {
		n := strings.TrimSpace(*in.Name)
		in.Name = &n
	}
	if err := s.validate.Validate(&in); err != nil {
		return model.User{}, false, err
	}

	upd := model.UserUpdate{
		Name:      in.Name,
		Email:     in.Email,
		Age:       in.Age,
		City:      in.City,
		Role:      in.Role,
		IsActive:  in.IsActive,
		Interests: in.Interests,
	}
	if in.Password != nil {
		hash, err := utils.HashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return model.User{}, false, fmt.Errorf("hash password: %w", err)
		}
		upd.PasswordHash = &hash
	}

	u, err := s.users.Update(ctx, id, upd)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return model.User{}, false, nil
	case errors.Is(err, repository.ErrEmailExists):
		return model.User{}, false, validation.Errorf("email already registered")
	case err != nil:
		return model.User{}, false, fmt.Errorf("update user: %w", err)
	}
	return u, true, nil
}

// DeleteUser removes the user and returns the deleted document.
func (s *UserService) DeleteUser(ctx context.Context, id string) (model.User, bool, error) {
	u, err := s.users.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.User{}, false, nil
	}
	if err != nil {
		return model.User{}, false, fmt.Errorf("delete user: %w", err)
	}
	return u, true, nil
}

// SaveEvent appends the event to the user's list and returns the new
// list.  Saving an id twice fails with ErrDuplicateEvent.
func (s *UserService) SaveEvent(ctx context.Context, userID string, in SaveEventInput) ([]model.SavedEvent, bool, error) {
	if err := s.validate.Validate(&in); err != nil {
		return nil, false, err
	}
	ev := model.SavedEvent{
		EventID:  in.EventID,
		Name:     in.Name,
		Date:     in.Date,
		Location: in.Location,
		ImageURL: in.ImageURL,
		SavedAt:  s.now(),
	}
	evs, err := s.users.PushSavedEvent(ctx, userID, ev)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, false, nil
	case errors.Is(err, repository.ErrDuplicateEvent):
		return nil, true, ErrDuplicateEvent
	case err != nil:
		return nil, false, fmt.Errorf("save event: %w", err)
	}
	s.publish(ctx, queue.ActivitySaved, userID, ev.EventID, ev.Name, len(evs))
	return evs, true, nil
}

// GetSavedEvents returns the user's saved list.
func (s *UserService) GetSavedEvents(ctx context.Context, userID string) ([]model.SavedEvent, bool, error) {
	evs, err := s.users.SavedEvents(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get saved events: %w", err)
	}
	return evs, true, nil
}

// RemoveSavedEvent drops eventID from the list.  An id that is not in the
// list leaves it unchanged, is not an error and publishes nothing.
func (s *UserService) RemoveSavedEvent(ctx context.Context, userID, eventID string) ([]model.SavedEvent, bool, error) {
	evs, removed, err := s.users.PullSavedEvent(ctx, userID, eventID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("remove saved event: %w", err)
	}
	if removed {
		s.publish(ctx, queue.ActivityRemoved, userID, eventID, "", len(evs))
	}
	return evs, true, nil
}

// IsEventSaved reports whether eventID is in the user's list; unknown users
// have nothing saved.
func (s *UserService) IsEventSaved(ctx context.Context, userID, eventID string) (bool, error) {
	evs, err := s.users.SavedEvents(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check saved event: %w", err)
	}
	for _, ev := range evs {
		if ev.EventID == eventID {
			return true, nil
		}
	}
	return false, nil
}

// publish never fails the caller; broker problems are only logged.
func (s *UserService) publish(ctx context.Context, typ, userID, eventID, name string, count int) {
	a := queue.SavedEventActivity{
		Type:       typ,
		UserID:     userID,
		EventID:    eventID,
		EventName:  name,
		SavedCount: count,
		OccurredAt: s.now().Format(time.RFC3339),
	}
	if err := s.publisher.PublishSavedEventActivity(ctx, a); err != nil {
		s.logger.Warn("publish saved-event activity failed",
			zap.String("type", typ), zap.String("user_id", userID), zap.Error(err))
	}
}
