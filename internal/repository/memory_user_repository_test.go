package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyd-app/fyd-api/internal/model"
)

func newUser(t *testing.T, r *MemoryUserRepo, email string) model.User {
	t.Helper()
	u := model.User{Name: "T", Email: email, Role: model.RoleUser, IsActive: true}
	require.NoError(t, r.Create(context.Background(), &u))
	return u
}

func TestMemory_CreateNormalizesAndRejectsDuplicateEmail(t *testing.T) {
	r := NewMemoryUserRepo()
	ctx := context.Background()

	u := newUser(t, r, "  T@X.com ")
	assert.Equal(t, "t@x.com", u.Email)
	assert.False(t, u.ID.IsZero())
	assert.NotNil(t, u.SavedEvents)

	dup := model.User{Name: "Other", Email: "t@x.COM"}
	assert.ErrorIs(t, r.Create(ctx, &dup), ErrEmailExists)

	got, err := r.GetByEmail(ctx, "T@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestMemory_GetByIDMalformedIsNotFound(t *testing.T) {
	r := NewMemoryUserRepo()
	_, err := r.GetByID(context.Background(), "not-an-object-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_ListNewestFirst(t *testing.T) {
	r := NewMemoryUserRepo()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var tick int
	r.now = func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Minute) }

	first := newUser(t, r, "a@x.com")
	second := newUser(t, r, "b@x.com")

	users, err := r.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, second.ID, users[0].ID)
	assert.Equal(t, first.ID, users[1].ID)
}

func TestMemory_UpdateEmailConflict(t *testing.T) {
	r := NewMemoryUserRepo()
	ctx := context.Background()
	a := newUser(t, r, "a@x.com")
	newUser(t, r, "b@x.com")

	taken := "B@x.com"
	_, err := r.Update(ctx, a.ID.Hex(), model.UserUpdate{Email: &taken})
	assert.ErrorIs(t, err, ErrEmailExists)

	city := "Lyon"
	got, err := r.Update(ctx, a.ID.Hex(), model.UserUpdate{City: &city})
	require.NoError(t, err)
	assert.Equal(t, "Lyon", got.City)
	assert.Equal(t, "a@x.com", got.Email)
}

func TestMemory_SavedEventsPushPull(t *testing.T) {
	r := NewMemoryUserRepo()
	ctx := context.Background()
	u := newUser(t, r, "a@x.com")
	id := u.ID.Hex()

	evs, err := r.PushSavedEvent(ctx, id, model.SavedEvent{EventID: "e1", Name: "Jazz"})
	require.NoError(t, err)
	assert.Len(t, evs, 1)

	_, err = r.PushSavedEvent(ctx, id, model.SavedEvent{EventID: "e1", Name: "Jazz again"})
	assert.ErrorIs(t, err, ErrDuplicateEvent)

	evs, removed, err := r.PullSavedEvent(ctx, id, "missing")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Len(t, evs, 1)

	evs, removed, err = r.PullSavedEvent(ctx, id, "e1")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, evs)

	_, err = r.PushSavedEvent(ctx, "665f1c2e9b1e8a0012345678", model.SavedEvent{EventID: "e1"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemory_ConcurrentSavesOfSameEvent(t *testing.T) {
	r := NewMemoryUserRepo()
	ctx := context.Background()
	u := newUser(t, r, "a@x.com")

	var ok, dup int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.PushSavedEvent(ctx, u.ID.Hex(), model.SavedEvent{EventID: "same"})
			switch err {
			case nil:
				atomic.AddInt32(&ok, 1)
			case ErrDuplicateEvent:
				atomic.AddInt32(&dup, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok)
	assert.Equal(t, int32(19), dup)
	evs, err := r.SavedEvents(ctx, u.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, evs, 1)
}

func TestMemory_ReturnedUsersAreCopies(t *testing.T) {
	r := NewMemoryUserRepo()
	ctx := context.Background()
	u := newUser(t, r, "a@x.com")
	_, err := r.PushSavedEvent(ctx, u.ID.Hex(), model.SavedEvent{EventID: "e1"})
	require.NoError(t, err)

	got, err := r.GetByID(ctx, u.ID.Hex())
	require.NoError(t, err)
	got.SavedEvents[0].EventID = "mutated"

	again, err := r.GetByID(ctx, u.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "e1", again.SavedEvents[0].EventID)
}

func TestMemory_DeleteAndRefreshToken(t *testing.T) {
	r := NewMemoryUserRepo()
	ctx := context.Background()
	u := newUser(t, r, "a@x.com")

	require.NoError(t, r.SetRefreshToken(ctx, u.ID.Hex(), "hash"))
	got, err := r.GetByID(ctx, u.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "hash", got.RefreshToken)

	deleted, err := r.Delete(ctx, u.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, u.ID, deleted.ID)

	_, err = r.Delete(ctx, u.ID.Hex())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, r.SetRefreshToken(ctx, u.ID.Hex(), ""), ErrNotFound)

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
