package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fyd-app/fyd-api/internal/model"
)

// MemoryUserRepo is an in-process UserStore with the same semantics as
// UserRepo.  Every method holds one lock, which gives the same
// single-document atomicity the Mongo update operators provide.  It backs
// the tests and STORE_DRIVER=memory runs.
type MemoryUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]model.User
	// now is overridable so tests can control ordering.
	now func() time.Time
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		users: make(map[primitive.ObjectID]model.User),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryUserRepo) Create(_ context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := NormalizeEmail(u.Email)
	if r.emailTaken(email, primitive.NilObjectID) {
		return ErrEmailExists
	}
	now := r.now()
	u.ID = primitive.NewObjectID()
	u.Email = email
	u.CreatedAt, u.UpdatedAt = now, now
	if u.Interests == nil {
		u.Interests = []string{}
	}
	if u.SavedEvents == nil {
		u.SavedEvents = []model.SavedEvent{}
	}
	r.users[u.ID] = clone(*u)
	return nil
}

func (r *MemoryUserRepo) GetByID(_ context.Context, id string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.lookup(id)
	if !ok {
		return model.User{}, ErrNotFound
	}
	return clone(u), nil
}

func (r *MemoryUserRepo) GetByEmail(_ context.Context, email string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	email = NormalizeEmail(email)
	for _, u := range r.users {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return model.User{}, ErrNotFound
}

func (r *MemoryUserRepo) List(_ context.Context) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, clone(u))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			// ObjectIDs grow with insertion order.
			return out[i].ID.Hex() > out[j].ID.Hex()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryUserRepo) Update(_ context.Context, id string, upd model.UserUpdate) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.lookup(id)
	if !ok {
		return model.User{}, ErrNotFound
	}
	if upd.Email != nil {
		e := NormalizeEmail(*upd.Email)
		if r.emailTaken(e, u.ID) {
			return model.User{}, ErrEmailExists
		}
		upd.Email = &e
	}
	upd.Apply(&u)
	u.UpdatedAt = r.now()
	r.users[u.ID] = u
	return clone(u), nil
}

func (r *MemoryUserRepo) Delete(_ context.Context, id string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.lookup(id)
	if !ok {
		return model.User{}, ErrNotFound
	}
	delete(r.users, u.ID)
	return u, nil
}

func (r *MemoryUserRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *MemoryUserRepo) SetRefreshToken(_ context.Context, id, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.lookup(id)
	if !ok {
		return ErrNotFound
	}
	u.RefreshToken = tokenHash
	r.users[u.ID] = u
	return nil
}

func (r *MemoryUserRepo) PushSavedEvent(_ context.Context, userID string, ev model.SavedEvent) ([]model.SavedEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.lookup(userID)
	if !ok {
		return nil, ErrNotFound
	}
	if u.HasSavedEvent(ev.EventID) {
		return nil, ErrDuplicateEvent
	}
	u.SavedEvents = append(append([]model.SavedEvent{}, u.SavedEvents...), ev)
	r.users[u.ID] = u
	return copyEvents(u.SavedEvents), nil
}

func (r *MemoryUserRepo) PullSavedEvent(_ context.Context, userID, eventID string) ([]model.SavedEvent, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.lookup(userID)
	if !ok {
		return nil, false, ErrNotFound
	}
	kept := make([]model.SavedEvent, 0, len(u.SavedEvents))
	for _, ev := range u.SavedEvents {
		if ev.EventID != eventID {
			kept = append(kept, ev)
		}
	}
	if len(kept) == len(u.SavedEvents) {
		return copyEvents(kept), false, nil
	}
	u.SavedEvents = kept
	r.users[u.ID] = u
	return copyEvents(kept), true, nil
}

func (r *MemoryUserRepo) SavedEvents(_ context.Context, userID string) ([]model.SavedEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.lookup(userID)
	if !ok {
		return nil, ErrNotFound
	}
	return copyEvents(u.SavedEvents), nil
}

func (r *MemoryUserRepo) lookup(id string) (model.User, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.User{}, false
	}
	u, ok := r.users[oid]
	return u, ok
}

func (r *MemoryUserRepo) emailTaken(email string, except primitive.ObjectID) bool {
	for id, u := range r.users {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func clone(u model.User) model.User {
	u.Interests = append([]string{}, u.Interests...)
	u.SavedEvents = copyEvents(u.SavedEvents)
	if u.Age != nil {
		age := *u.Age
		u.Age = &age
	}
	return u
}

func copyEvents(evs []model.SavedEvent) []model.SavedEvent {
	return append([]model.SavedEvent{}, evs...)
}

var (
	_ UserStore = (*UserRepo)(nil)
	_ UserStore = (*MemoryUserRepo)(nil)
)
