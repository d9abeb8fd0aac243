package storage

import (
	"errors"
	"log"
	"time"

	"chatterbox/backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateMessage durably stores a message and returns it with its
// generated ID. The record is not yet populated with sender info.
func (s *Service) CreateMessage(senderID, chatID, content, messageType string, media *models.Media) (*models.Message, error) {
	sender, err := primitive.ObjectIDFromHex(senderID)
	if err != nil {
		return nil, ErrInvalidID
	}
	chat, err := primitive.ObjectIDFromHex(chatID)
	if err != nil {
		return nil, ErrInvalidID
	}

	if messageType == "" {
		messageType = models.MessageTypeText
	}

	now := time.Now().UTC()
	msg := models.Message{
		SenderID:    sender,
		ChatID:      chat,
		Content:     content,
		MessageType: messageType,
		Media:       media,
		ReadBy:      []models.ReadReceipt{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	res, err := s.messages().InsertOne(s.Ctx, &msg)
	if err != nil {
		log.Printf("ERROR: Failed to save message for chat %s: %v", chatID, err)
		return nil, err
	}
	msg.ID = res.InsertedID.(primitive.ObjectID)
	return &msg, nil
}

// GetMessageWithSender loads a message populated with its sender summary.
func (s *Service) GetMessageWithSender(messageID string) (*models.Message, error) {
	oid, err := primitive.ObjectIDFromHex(messageID)
	if err != nil {
		return nil, ErrInvalidID
	}

	var msg models.Message
	err = s.messages().FindOne(s.Ctx, bson.M{"_id": oid}).Decode(&msg)
	if err != nil {
		return nil, err
	}

	summaries, err := s.userSummaries([]primitive.ObjectID{msg.SenderID})
	if err != nil {
		return nil, err
	}
	if sender, ok := summaries[msg.SenderID]; ok {
		msg.Sender = &sender
	}
	return &msg, nil
}

// GetChatMessages returns one page of non-deleted messages for a chat,
// newest page first, each page ordered oldest to newest.
func (s *Service) GetChatMessages(chatID string, page, limit int64) ([]models.Message, error) {
	chat, err := primitive.ObjectIDFromHex(chatID)
	if err != nil {
		return nil, ErrInvalidID
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cur, err := s.messages().Find(s.Ctx, bson.M{"chat": chat, "deleted": false}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(s.Ctx)

	var msgs []models.Message
	if err := cur.All(s.Ctx, &msgs); err != nil {
		return nil, err
	}

	// Reverse into chronological order.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	if err := s.populateSenders(msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (s *Service) populateSenders(msgs []models.Message) error {
	ids := make([]primitive.ObjectID, 0, len(msgs))
	seen := make(map[primitive.ObjectID]bool, len(msgs))
	for i := range msgs {
		if !seen[msgs[i].SenderID] {
			seen[msgs[i].SenderID] = true
			ids = append(ids, msgs[i].SenderID)
		}
	}

	summaries, err := s.userSummaries(ids)
	if err != nil {
		return err
	}
	for i := range msgs {
		if sender, ok := summaries[msgs[i].SenderID]; ok {
			snd := sender
			msgs[i].Sender = &snd
		}
	}
	return nil
}

// UpdateLastMessage points a chat at its newest message and bumps
// updatedAt so chat lists sort correctly.
func (s *Service) UpdateLastMessage(chatID, messageID string) error {
	chat, err := primitive.ObjectIDFromHex(chatID)
	if err != nil {
		return ErrInvalidID
	}
	msg, err := primitive.ObjectIDFromHex(messageID)
	if err != nil {
		return ErrInvalidID
	}

	res, err := s.chats().UpdateOne(s.Ctx,
		bson.M{"_id": chat},
		bson.M{"$set": bson.M{"lastMessage": msg, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		log.Printf("ERROR: Failed to update last message for chat %s: %v", chatID, err)
		return err
	}
	if res.MatchedCount == 0 {
		return ErrChatNotFound
	}
	return nil
}

// mongoNotFound reports driver not-found errors uniformly.
func mongoNotFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
