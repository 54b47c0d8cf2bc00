package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fyd-app/fyd-api/internal/model"
)

// UserStore is the persistence contract for user documents.  UserRepo is
// the MongoDB implementation and MemoryUserRepo the in-process one.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, id string, upd model.UserUpdate) (model.User, error)
	Delete(ctx context.Context, id string) (model.User, error)
	Count(ctx context.Context) (int64, error)
	SetRefreshToken(ctx context.Context, id, tokenHash string) error
	PushSavedEvent(ctx context.Context, userID string, ev model.SavedEvent) ([]model.SavedEvent, error)
	PullSavedEvent(ctx context.Context, userID, eventID string) ([]model.SavedEvent, bool, error)
	SavedEvents(ctx context.Context, userID string) ([]model.SavedEvent, error)
}

// UsersCollection is the collection name used for user documents.
const UsersCollection = "users"

// UserRepo stores users in MongoDB.
type UserRepo struct{ Coll *mongo.Collection }

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{Coll: db.Collection(UsersCollection)}
}

// EnsureIndexes creates the unique email index.  It is idempotent.
func (r *UserRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.Coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	return err
}

// NormalizeEmail lower-cases and trims an address before storage or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts u and fills in its ID and timestamps.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.Email = NormalizeEmail(u.Email)
	u.CreatedAt, u.UpdatedAt = now, now
	if u.Interests == nil {
		u.Interests = []string{}
	}
	if u.SavedEvents == nil {
		u.SavedEvents = []model.SavedEvent{}
	}
	if _, err := r.Coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// GetByID fetches a user by hex id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.User{}, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid}, nil)
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.findOne(ctx, bson.M{"email": NormalizeEmail(email)}, nil)
}

// List returns every user, newest first.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	cur, err := r.Coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	users := []model.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Update applies the non-nil fields of upd and returns the new document.
func (r *UserRepo) Update(ctx context.Context, id string, upd model.UserUpdate) (model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.User{}, ErrNotFound
	}
	if upd.Email != nil {
		e := NormalizeEmail(*upd.Email)
		upd.Email = &e
	}
	set, err := toSetDoc(upd)
	if err != nil {
		return model.User{}, err
	}
	set["updatedAt"] = time.Now().UTC()

	u, err := r.findOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if mongo.IsDuplicateKeyError(err) {
		return model.User{}, ErrEmailExists
	}
	return u, err
}

// Delete removes a user and returns the removed document.
func (r *UserRepo) Delete(ctx context.Context, id string) (model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.User{}, ErrNotFound
	}
	var u model.User
	err = r.Coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// Count returns the number of user documents.
func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	return r.Coll.CountDocuments(ctx, bson.D{})
}

// SetRefreshToken stores the refresh token digest; an empty hash clears it.
func (r *UserRepo) SetRefreshToken(ctx context.Context, id, tokenHash string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	update := bson.M{"$set": bson.M{"refreshToken": tokenHash}}
	if tokenHash == "" {
		update = bson.M{"$unset": bson.M{"refreshToken": ""}}
	}
	res, err := r.Coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PushSavedEvent appends ev in one conditional update: the filter only
// matches when ev.EventID is not yet in the list, so two concurrent saves
// of the same id cannot both succeed.
func (r *UserRepo) PushSavedEvent(ctx context.Context, userID string, ev model.SavedEvent) ([]model.SavedEvent, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrNotFound
	}
	filter := bson.M{"_id": oid, "savedEvents.eventId": bson.M{"$ne": ev.EventID}}
	u, err := r.findOneAndUpdate(ctx, filter, bson.M{"$push": bson.M{"savedEvents": ev}})
	if errors.Is(err, ErrNotFound) {
		// Either the user is gone or the event is already there.
		n, cerr := r.Coll.CountDocuments(ctx, bson.M{"_id": oid})
		if cerr != nil {
			return nil, cerr
		}
		if n > 0 {
			return nil, ErrDuplicateEvent
		}
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return nonNilEvents(u.SavedEvents), nil
}

// PullSavedEvent removes every entry with eventID and reports whether
// anything was removed.  Removing an id that is not in the list returns the
// list unchanged with removed false.
func (r *UserRepo) PullSavedEvent(ctx context.Context, userID, eventID string) ([]model.SavedEvent, bool, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, false, ErrNotFound
	}
	filter := bson.M{"_id": oid, "savedEvents.eventId": eventID}
	u, err := r.findOneAndUpdate(ctx, filter,
		bson.M{"$pull": bson.M{"savedEvents": bson.M{"eventId": eventID}}})
	if errors.Is(err, ErrNotFound) {
		// Either the user is gone or the event was never saved.
		evs, serr := r.SavedEvents(ctx, userID)
		return evs, false, serr
	}
	if err != nil {
		return nil, false, err
	}
	return nonNilEvents(u.SavedEvents), true, nil
}

// SavedEvents returns the user's saved list.
func (r *UserRepo) SavedEvents(ctx context.Context, userID string) ([]model.SavedEvent, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrNotFound
	}
	u, err := r.findOne(ctx, bson.M{"_id": oid}, bson.M{"savedEvents": 1})
	if err != nil {
		return nil, err
	}
	return nonNilEvents(u.SavedEvents), nil
}

func (r *UserRepo) findOne(ctx context.Context, filter, projection bson.M) (model.User, error) {
	opts := options.FindOne()
	if projection != nil {
		opts.SetProjection(projection)
	}
	var u model.User
	err := r.Coll.FindOne(ctx, filter, opts).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

func (r *UserRepo) findOneAndUpdate(ctx context.Context, filter, update bson.M) (model.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u model.User
	err := r.Coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// toSetDoc marshals upd through bson so nil fields are dropped by omitempty.
func toSetDoc(upd model.UserUpdate) (bson.M, error) {
	raw, err := bson.Marshal(upd)
	if err != nil {
		return nil, err
	}
	set := bson.M{}
	if err := bson.Unmarshal(raw, &set); err != nil {
		return nil, err
	}
	return set, nil
}

func nonNilEvents(evs []model.SavedEvent) []model.SavedEvent {
	if evs == nil {
		return []model.SavedEvent{}
	}
	return evs
}
