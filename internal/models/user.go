package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User status values kept in the users collection.
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// User represents a registered account.
// The password hash is bson-only and never serialized into API responses.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Username  string             `bson:"username" json:"username"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	Avatar    string             `bson:"avatar" json:"avatar"`
	Status    string             `bson:"status" json:"status"`
	LastSeen  time.Time          `bson:"lastSeen" json:"lastSeen"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UserSummary is the populated shape embedded in chats and messages.
// It carries only the fields the API selects when populating references.
type UserSummary struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	Username string             `bson:"username" json:"username"`
	Email    string             `bson:"email" json:"email"`
	Avatar   string             `bson:"avatar" json:"avatar"`
	Status   string             `bson:"status,omitempty" json:"status,omitempty"`
}

// Summary converts a full User into its embeddable form.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Avatar:   u.Avatar,
		Status:   u.Status,
	}
}
