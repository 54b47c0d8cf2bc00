package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role names stored in users.role and carried in the JWT role claim.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a document of the `users` collection.  The ID is a Mongo
// ObjectID rendered as a hex string, and Email is unique and lower-cased.
// PasswordHash holds the bcrypt hash and RefreshToken the SHA-256 hex
// digest of the last issued refresh token; neither is rendered to JSON.
// SavedEvents are embedded bookmarks, unique by EventID.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"`
	Age          *int               `bson:"age,omitempty" json:"age,omitempty"`
	City         string             `bson:"city" json:"city"`
	Role         string             `bson:"role" json:"role"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	RefreshToken string             `bson:"refreshToken,omitempty" json:"-"`
	Interests    []string           `bson:"interests" json:"interests"`
	SavedEvents  []SavedEvent       `bson:"savedEvents" json:"savedEvents"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// SavedEvent is a user's bookmark of an external event.  SavedAt is
// assigned by the server when the entry is pushed.
type SavedEvent struct {
	EventID  string    `bson:"eventId" json:"eventId"`
	Name     string    `bson:"name" json:"name"`
	Date     string    `bson:"date" json:"date"`
	Location string    `bson:"location" json:"location"`
	ImageURL string    `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	SavedAt  time.Time `bson:"savedAt" json:"savedAt"`
}

// UserUpdate is a partial update of a user.  Nil fields are left
// untouched; the bson tags let the struct be used directly as a $set
// document.
type UserUpdate struct {
	Name         *string   `bson:"name,omitempty"`
	Email        *string   `bson:"email,omitempty"`
	PasswordHash *string   `bson:"password,omitempty"`
	Age          *int      `bson:"age,omitempty"`
	City         *string   `bson:"city,omitempty"`
	Role         *string   `bson:"role,omitempty"`
	IsActive     *bool     `bson:"isActive,omitempty"`
	Interests    *[]string `bson:"interests,omitempty"`
}

// Apply copies the non-nil fields onto user.
func (u UserUpdate) Apply(user *User) {
	if u.Name != nil {
		user.Name = *u.Name
	}
	if u.Email != nil {
		user.Email = *u.Email
	}
	if u.PasswordHash != nil {
		user.PasswordHash = *u.PasswordHash
	}
	if u.Age != nil {
		age := *u.Age
		user.Age = &age
	}
	if u.City != nil {
		user.City = *u.City
	}
	if u.Role != nil {
		user.Role = *u.Role
	}
	if u.IsActive != nil {
		user.IsActive = *u.IsActive
	}
	if u.Interests != nil {
		user.Interests = append([]string(nil), (*u.Interests)...)
	}
}

// HasSavedEvent reports whether eventID is in the user's saved list.
func (u User) HasSavedEvent(eventID string) bool {
	for _, ev := range u.SavedEvents {
		if ev.EventID == eventID {
			return true
		}
	}
	return false
}
