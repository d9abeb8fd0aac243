package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Chat is a conversation between two users (direct) or more (group).
// ParticipantIDs/AdminID/LastMessageID are the stored references;
// Participants/Admin/LastMessage hold the populated versions.
type Chat struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name           string               `bson:"name,omitempty" json:"name,omitempty"`
	IsGroupChat    bool                 `bson:"isGroupChat" json:"isGroupChat"`
	ParticipantIDs []primitive.ObjectID `bson:"participants" json:"-"`
	Participants   []UserSummary        `bson:"-" json:"participants"`
	AdminID        primitive.ObjectID   `bson:"admin,omitempty" json:"-"`
	Admin          *UserSummary         `bson:"-" json:"admin,omitempty"`
	LastMessageID  primitive.ObjectID   `bson:"lastMessage,omitempty" json:"-"`
	LastMessage    *Message             `bson:"-" json:"lastMessage,omitempty"`
	Avatar         string               `bson:"avatar" json:"avatar"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// HasParticipant reports whether userID is a member of the chat.
func (c *Chat) HasParticipant(userID primitive.ObjectID) bool {
	for _, id := range c.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}
