package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message types accepted on the wire.
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeVideo = "video"
	MessageTypeFile  = "file"
	MessageTypeAudio = "audio"
)

// ValidMessageType reports whether t is one of the accepted message types.
func ValidMessageType(t string) bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeVideo, MessageTypeFile, MessageTypeAudio:
		return true
	}
	return false
}

// Media describes an attachment already uploaded to external storage.
type Media struct {
	URL      string `bson:"url,omitempty" json:"url,omitempty"`
	Filename string `bson:"filename,omitempty" json:"filename,omitempty"`
	Size     int64  `bson:"size,omitempty" json:"size,omitempty"`
	MimeType string `bson:"mimeType,omitempty" json:"mimeType,omitempty"`
}

// ReadReceipt records that a user has seen a message.
type ReadReceipt struct {
	User   primitive.ObjectID `bson:"user" json:"user"`
	ReadAt time.Time          `bson:"readAt" json:"readAt"`
}

// Message is one durable chat message.
// SenderID is what is stored; Sender is filled in by the storage layer
// when the record is populated for broadcast or API responses.
type Message struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	SenderID    primitive.ObjectID `bson:"sender" json:"-"`
	Sender      *UserSummary       `bson:"-" json:"sender,omitempty"`
	ChatID      primitive.ObjectID `bson:"chat" json:"chat"`
	Content     string             `bson:"content" json:"content"`
	MessageType string             `bson:"messageType" json:"messageType"`
	Media       *Media             `bson:"media,omitempty" json:"media,omitempty"`
	ReadBy      []ReadReceipt      `bson:"readBy" json:"readBy"`
	Edited      bool               `bson:"edited" json:"edited"`
	EditedAt    *time.Time         `bson:"editedAt,omitempty" json:"editedAt,omitempty"`
	Deleted     bool               `bson:"deleted" json:"deleted"`
	DeletedAt   *time.Time         `bson:"deletedAt,omitempty" json:"deletedAt,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
