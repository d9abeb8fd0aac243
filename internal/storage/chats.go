package storage

import (
	"log"
	"time"

	"chatterbox/backend/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateChat inserts a new chat document and fills in its generated ID.
func (s *Service) CreateChat(chat *models.Chat) error {
	now := time.Now().UTC()
	chat.CreatedAt = now
	chat.UpdatedAt = now

	res, err := s.chats().InsertOne(s.Ctx, chat)
	if err != nil {
		log.Printf("ERROR: Failed to create chat: %v", err)
		return err
	}
	chat.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// FindDirectChat returns the existing 1-on-1 chat between two users,
// or nil when none exists.
func (s *Service) FindDirectChat(userA, userB string) (*models.Chat, error) {
	a, err := primitive.ObjectIDFromHex(userA)
	if err != nil {
		return nil, ErrInvalidID
	}
	b, err := primitive.ObjectIDFromHex(userB)
	if err != nil {
		return nil, ErrInvalidID
	}

	filter := bson.M{
		"isGroupChat":  false,
		"participants": bson.M{"$all": bson.A{a, b}, "$size": 2},
	}

	var chat models.Chat
	err = s.chats().FindOne(s.Ctx, filter).Decode(&chat)
	if mongoNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.populateChat(&chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// GetChatWithParticipants loads one chat populated with participant
// summaries and its last message.
func (s *Service) GetChatWithParticipants(chatID string) (*models.Chat, error) {
	oid, err := primitive.ObjectIDFromHex(chatID)
	if err != nil {
		return nil, ErrInvalidID
	}

	var chat models.Chat
	err = s.chats().FindOne(s.Ctx, bson.M{"_id": oid}).Decode(&chat)
	if mongoNotFound(err) {
		return nil, ErrChatNotFound
	}
	if err != nil {
		log.Printf("ERROR: Failed to get chat %s: %v", chatID, err)
		return nil, err
	}

	if err := s.populateChat(&chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// GetChatsForUser returns all chats the user participates in, most
// recently updated first, populated for the chat list view.
func (s *Service) GetChatsForUser(userID string) ([]models.Chat, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidID
	}

	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cur, err := s.chats().Find(s.Ctx, bson.M{"participants": oid}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(s.Ctx)

	var chats []models.Chat
	if err := cur.All(s.Ctx, &chats); err != nil {
		return nil, err
	}

	for i := range chats {
		if err := s.populateChat(&chats[i]); err != nil {
			return nil, err
		}
	}
	return chats, nil
}

// populateChat resolves participant, admin and last-message references.
func (s *Service) populateChat(chat *models.Chat) error {
	ids := append([]primitive.ObjectID{}, chat.ParticipantIDs...)
	if !chat.AdminID.IsZero() {
		ids = append(ids, chat.AdminID)
	}

	summaries, err := s.userSummaries(ids)
	if err != nil {
		return err
	}

	chat.Participants = make([]models.UserSummary, 0, len(chat.ParticipantIDs))
	for _, id := range chat.ParticipantIDs {
		if sum, ok := summaries[id]; ok {
			chat.Participants = append(chat.Participants, sum)
		}
	}
	if admin, ok := summaries[chat.AdminID]; ok {
		chat.Admin = &admin
	}

	if !chat.LastMessageID.IsZero() {
		msg, err := s.GetMessageWithSender(chat.LastMessageID.Hex())
		if err != nil && !mongoNotFound(err) {
			return err
		}
		chat.LastMessage = msg
	}
	return nil
}
