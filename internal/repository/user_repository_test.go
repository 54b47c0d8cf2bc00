package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/fyd-app/fyd-api/internal/model"
)

func mockMongo(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func namespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

// userDoc renders u the way the server would return it.
func userDoc(t *testing.T, u model.User) bson.D {
	t.Helper()
	raw, err := bson.Marshal(u)
	require.NoError(t, err)
	var d bson.D
	require.NoError(t, bson.Unmarshal(raw, &d))
	return d
}

func storedUser(id primitive.ObjectID, evs ...model.SavedEvent) model.User {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	if evs == nil {
		evs = []model.SavedEvent{}
	}
	return model.User{
		ID:          id,
		Name:        "Ana",
		Email:       "ana@x.com",
		City:        "Paris",
		Role:        model.RoleUser,
		IsActive:    true,
		Interests:   []string{"music"},
		SavedEvents: evs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func countResponse(mt *mtest.T, n int32) bson.D {
	if n == 0 {
		return mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch)
	}
	return mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch, bson.D{{Key: "n", Value: n}})
}

func TestUserRepo_PushSavedEvent(t *testing.T) {
	mt := mockMongo(t)
	jazz := model.SavedEvent{EventID: "e1", Name: "Jazz", Date: "2024-06-01", Location: "Lyon"}

	mt.Run("fresh list", func(mt *mtest.T) {
		repo := &UserRepo{Coll: mt.Coll}
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: userDoc(mt.T, storedUser(id, jazz))},
		))

		evs, err := repo.PushSavedEvent(context.Background(), id.Hex(), jazz)
		require.NoError(mt, err)
		require.Len(mt, evs, 1)
		assert.Equal(mt, "e1", evs[0].EventID)
		assert.Equal(mt, "Jazz", evs[0].Name)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, "e1", cmd.Lookup("query", "savedEvents.eventId", "$ne").StringValue())
		assert.Equal(mt, "e1", cmd.Lookup("update", "$push", "savedEvents", "eventId").StringValue())
	})

	mt.Run("already saved", func(mt *mtest.T) {
		repo := &UserRepo{Coll: mt.Coll}
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			countResponse(mt, 1),
		)

		_, err := repo.PushSavedEvent(context.Background(), primitive.NewObjectID().Hex(), jazz)
		assert.ErrorIs(mt, err, ErrDuplicateEvent)
	})

	mt.Run("unknown user", func(mt *mtest.T) {
		repo := &UserRepo{Coll: mt.Coll}
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			countResponse(mt, 0),
		)

		_, err := repo.PushSavedEvent(context.Background(), primitive.NewObjectID().Hex(), jazz)
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		repo := &UserRepo{Coll: mt.Coll}

		_, err := repo.PushSavedEvent(context.Background(), "not-an-id", jazz)
		assert.ErrorIs(mt, err, ErrNotFound)
		assert.Nil(mt, mt.GetStartedEvent())
	})
}

func TestUserRepo_PullSavedEvent(t *testing.T) {
	mt := mockMongo(t)
	rock := model.SavedEvent{EventID: "e2", Name: "Rock"}

	mt.Run("removed", func(mt *mtest.T) {
		repo := &UserRepo{Coll: mt.Coll}
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: userDoc(mt.T, storedUser(id, rock))},
		))

		evs, removed, err := repo.PullSavedEvent(context.Background(), id.Hex(), "e1")
		require.NoError(mt, err)
		assert.True(mt, removed)
		require.Len(mt, evs, 1)
		assert.Equal(mt, "e2", evs[0].EventID)

		cmd := mt.GetStartedEvent().Command
		assert.Equal(mt, "e1", cmd.Lookup("query", "savedEvents.eventId").StringValue())
	})

	mt.Run("not in list", func(mt *mtest.T) {
		repo := &UserRepo{Coll: mt.Coll}
		id := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch, userDoc(mt.T, storedUser(id, rock))),
		)

		evs, removed, err := repo.PullSavedEvent(context.Background(), id.Hex(), "absent")
		require.NoError(mt, err)
		assert.False(mt, removed)
		require.Len(mt, evs, 1)
		assert.Equal(mt, "e2", evs[0].EventID)
	})

	mt.Run("unknown user", func(mt *mtest.T) {
		repo := &UserRepo{Coll: mt.Coll}
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch),
		)

		_, removed, err := repo.PullSavedEvent(context.Background(), primitive.NewObjectID().Hex(), "e1")
		assert.ErrorIs(mt, err, ErrNotFound)
		assert.False(mt, removed)
	})
}

func TestUserRepo_Create(t *testing.T) {
	mt := mockMongo(t)

	mt.Run("fills defaults", func(mt *mtest.T) {
		repo := &UserRepo{Coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		u := &model.User{Name: "Ana", Email: "  Ana@X.com "}
		require.NoError(mt, repo.Create(context.Background(), u))
		assert.False(mt, u.ID.IsZero())
		assert.Equal(mt, "ana@x.com", u.Email)
		assert.NotNil(mt, u.Interests)
		assert.NotNil(mt, u.SavedEvents)
		assert.False(mt, u.CreatedAt.IsZero())
	})

	mt.Run("duplicate email", func(mt *mtest.T) {
		repo := &UserRepo{Coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: fyd.users index: email_unique",
		}))

		err := repo.Create(context.Background(), &model.User{Email: "ana@x.com"})
		assert.ErrorIs(mt, err, ErrEmailExists)
	})
}

func TestUserRepo_Update(t *testing.T) {
	mt := mockMongo(t)

	mt.Run("sets only provided fields", func(mt *mtest.T) {
		repo := &UserRepo{Coll: mt.Coll}
		id := primitive.NewObjectID()
		want := storedUser(id)
		want.City = "Lyon"
		want.IsActive = false
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: userDoc(mt.T, want)},
		))

		city, active, email := "Lyon", false, " New@X.com"
		got, err := repo.Update(context.Background(), id.Hex(), model.UserUpdate{
			City: &city, IsActive: &active, Email: &email,
		})
		require.NoError(mt, err)
		assert.Equal(mt, "Lyon", got.City)

		set := mt.GetStartedEvent().Command.Lookup("update", "$set").Document()
		assert.Equal(mt, "Lyon", set.Lookup("city").StringValue())
		assert.False(mt, set.Lookup("isActive").Boolean())
		assert.Equal(mt, "new@x.com", set.Lookup("email").StringValue())
		assert.Equal(mt, bson.TypeDateTime, set.Lookup("updatedAt").Type)
		for _, absent := range []string{"name", "password", "age", "role", "interests"} {
			_, err := set.LookupErr(absent)
			assert.Error(mt, err, absent)
		}
	})

	mt.Run("duplicate email", func(mt *mtest.T) {
		repo := &UserRepo{Coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    11000,
			Message: "E11000 duplicate key error collection: fyd.users index: email_unique",
			Name:    "DuplicateKey",
		}))

		email := "taken@x.com"
		_, err := repo.Update(context.Background(), primitive.NewObjectID().Hex(), model.UserUpdate{Email: &email})
		assert.ErrorIs(mt, err, ErrEmailExists)
	})

	mt.Run("unknown user", func(mt *mtest.T) {
		repo := &UserRepo{Coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		name := "Bo"
		_, err := repo.Update(context.Background(), primitive.NewObjectID().Hex(), model.UserUpdate{Name: &name})
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestUserRepo_ListNewestFirst(t *testing.T) {
	mt := mockMongo(t)

	mt.Run("sorted by createdAt", func(mt *mtest.T) {
		repo := &UserRepo{Coll: mt.Coll}
		newer, older := storedUser(primitive.NewObjectID()), storedUser(primitive.NewObjectID())
		newer.CreatedAt = older.CreatedAt.Add(time.Hour)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			userDoc(mt.T, newer), userDoc(mt.T, older)))

		users, err := repo.List(context.Background())
		require.NoError(mt, err)
		require.Len(mt, users, 2)
		assert.Equal(mt, newer.ID, users[0].ID)

		sort := mt.GetStartedEvent().Command.Lookup("sort", "createdAt")
		assert.Equal(mt, int64(-1), sort.AsInt64())
	})

	mt.Run("empty collection", func(mt *mtest.T) {
		repo := &UserRepo{Coll: mt.Coll}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		users, err := repo.List(context.Background())
		require.NoError(mt, err)
		assert.NotNil(mt, users)
		assert.Empty(mt, users)
	})
}

func TestToSetDoc_DropsNilFields(t *testing.T) {
	age := 31
	set, err := toSetDoc(model.UserUpdate{Age: &age})
	require.NoError(t, err)
	assert.Len(t, set, 1)
	assert.EqualValues(t, 31, set["age"])
}
