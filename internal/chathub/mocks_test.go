package chathub_test

import (
	"chatterbox/backend/internal/chathub"
	"chatterbox/backend/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify double for the storage.Storage interface.
type MockStorage struct {
	mock.Mock
}

// User operations
func (m *MockStorage) CreateUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockStorage) FindUserByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) FindUserByID(userID string) (*models.User, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) SearchUsers(query string, excludeUserID string) ([]models.User, error) {
	args := m.Called(query, excludeUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

// Chat operations
func (m *MockStorage) CreateChat(chat *models.Chat) error {
	args := m.Called(chat)
	return args.Error(0)
}

func (m *MockStorage) FindDirectChat(userA, userB string) (*models.Chat, error) {
	args := m.Called(userA, userB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chat), args.Error(1)
}

func (m *MockStorage) GetChatWithParticipants(chatID string) (*models.Chat, error) {
	args := m.Called(chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chat), args.Error(1)
}

func (m *MockStorage) GetChatsForUser(userID string) ([]models.Chat, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Chat), args.Error(1)
}

func (m *MockStorage) UpdateLastMessage(chatID, messageID string) error {
	args := m.Called(chatID, messageID)
	return args.Error(0)
}

// Message operations
func (m *MockStorage) CreateMessage(senderID, chatID, content, messageType string, media *models.Media) (*models.Message, error) {
	args := m.Called(senderID, chatID, content, messageType, media)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockStorage) GetMessageWithSender(messageID string) (*models.Message, error) {
	args := m.Called(messageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Message), args.Error(1)
}

func (m *MockStorage) GetChatMessages(chatID string, page, limit int64) ([]models.Message, error) {
	args := m.Called(chatID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

// Presence operations
func (m *MockStorage) SetUserOnline(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockStorage) SetUserOffline(userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockStorage) GetOnlineUserIDs() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStorage) ClearOnlineUsers() error {
	args := m.Called()
	return args.Error(0)
}

// MockClient is a test double for the chathub.Client interface.
type MockClient struct {
	userID string
	connID string
	send   chan models.Event
}

func newMockClient(userID string) *MockClient {
	return &MockClient{
		userID: userID,
		connID: uuid.NewString(),
		send:   make(chan models.Event, 16), // Buffered to prevent blocking in tests
	}
}

// newStalledClient has no channel capacity and no reader, so every
// delivery attempt fails immediately.
func newStalledClient(userID string) *MockClient {
	return &MockClient{
		userID: userID,
		connID: uuid.NewString(),
		send:   make(chan models.Event),
	}
}

func (c *MockClient) GetUserID() string                   { return c.userID }
func (c *MockClient) GetConnID() string                   { return c.connID }
func (c *MockClient) GetSendChannel() chan<- models.Event { return c.send }
func (c *MockClient) Run()                                {}
func (c *MockClient) Close()                              { close(c.send) }

// drainEvents empties the client's outbound channel.
func (c *MockClient) drainEvents() []models.Event {
	var events []models.Event
	for {
		select {
		case ev, ok := <-c.send:
			if !ok {
				return events
			}
			events = append(events, ev)
		default:
			return events
		}
	}
}

// createTestHub builds a hub whose presence writes always succeed.
func createTestHub(s *MockStorage) *chathub.ManagerService {
	s.On("SetUserOnline", mock.Anything).Return(nil).Maybe()
	s.On("SetUserOffline", mock.Anything).Return(nil).Maybe()
	return chathub.NewManagerService(s)
}
