package storage

import (
	"context"
	"errors"

	"chatterbox/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Sentinel errors surfaced to handlers.
var (
	ErrChatNotFound = errors.New("chat not found")
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidID    = errors.New("invalid object id")
)

// Storage is the persistence surface consumed by the hub and the HTTP
// handlers. All identifiers are hex object-id strings as they appear on
// the wire; implementations parse them.
type Storage interface {
	// Users
	CreateUser(user *models.User) error
	FindUserByEmail(email string) (*models.User, error)
	FindUserByID(userID string) (*models.User, error)
	SearchUsers(query string, excludeUserID string) ([]models.User, error)

	// Chats
	CreateChat(chat *models.Chat) error
	FindDirectChat(userA, userB string) (*models.Chat, error)
	GetChatWithParticipants(chatID string) (*models.Chat, error)
	GetChatsForUser(userID string) ([]models.Chat, error)
	UpdateLastMessage(chatID, messageID string) error

	// Messages
	CreateMessage(senderID, chatID, content, messageType string, media *models.Media) (*models.Message, error)
	GetMessageWithSender(messageID string) (*models.Message, error)
	GetChatMessages(chatID string, page, limit int64) ([]models.Message, error)

	// Presence snapshot (Redis-backed, mirrors the hub registry)
	SetUserOnline(userID string) error
	SetUserOffline(userID string) error
	GetOnlineUserIDs() ([]string, error)
	ClearOnlineUsers() error
}

// Service implements Storage over MongoDB (durable records) and Redis
// (ephemeral presence snapshot).
type Service struct {
	DB    *mongo.Database
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *mongo.Database, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

func (s *Service) users() *mongo.Collection    { return s.DB.Collection("users") }
func (s *Service) chats() *mongo.Collection    { return s.DB.Collection("chats") }
func (s *Service) messages() *mongo.Collection { return s.DB.Collection("messages") }
