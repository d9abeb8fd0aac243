package chathub_test

import (
	"encoding/json"
	"errors"
	"testing"

	"chatterbox/backend/internal/chathub"
	"chatterbox/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func mustEvent(t *testing.T, name string, payload any) models.Event {
	t.Helper()
	ev, err := models.NewEvent(name, payload)
	require.NoError(t, err)
	return ev
}

// twoClientsInRoom registers A and B and joins both to roomID.
func twoClientsInRoom(hub *chathub.ManagerService, roomID string) (*MockClient, *MockClient) {
	clientA := newMockClient("user_A")
	clientB := newMockClient("user_B")
	hub.Register(clientA)
	hub.Register(clientB)
	hub.JoinRoom(clientA, roomID)
	hub.JoinRoom(clientB, roomID)
	clientA.drainEvents()
	clientB.drainEvents()
	return clientA, clientB
}

func TestSendMessage_BroadcastsAfterPersist(t *testing.T) {
	storageMock := new(MockStorage)
	hub := createTestHub(storageMock)
	clientA, clientB := twoClientsInRoom(hub, "room1")

	msgID := primitive.NewObjectID()
	stored := &models.Message{ID: msgID, Content: "hi", MessageType: models.MessageTypeText}
	populated := &models.Message{
		ID:          msgID,
		Content:     "hi",
		MessageType: models.MessageTypeText,
		Sender:      &models.UserSummary{Username: "alice", Email: "alice@example.com"},
	}
	chat := &models.Chat{LastMessage: populated}

	storageMock.On("CreateMessage", "user_A", "room1", "hi", "text", (*models.Media)(nil)).Return(stored, nil)
	storageMock.On("UpdateLastMessage", "room1", msgID.Hex()).Return(nil)
	storageMock.On("GetMessageWithSender", msgID.Hex()).Return(populated, nil)
	storageMock.On("GetChatWithParticipants", "room1").Return(chat, nil)

	hub.HandleEvent(clientA, mustEvent(t, models.EventSendMessage, models.SendMessagePayload{
		ChatID:      "room1",
		Content:     "hi",
		MessageType: models.MessageTypeText,
	}))

	storageMock.AssertExpectations(t)

	events := clientB.drainEvents()
	require.Len(t, events, 2)

	assert.Equal(t, models.EventNewMessage, events[0].Event)
	var gotMsg models.Message
	require.NoError(t, json.Unmarshal(events[0].Data, &gotMsg))
	assert.Equal(t, "hi", gotMsg.Content)
	require.NotNil(t, gotMsg.Sender)
	assert.Equal(t, "alice", gotMsg.Sender.Username)

	assert.Equal(t, models.EventChatUpdated, events[1].Event)
	var gotChat models.Chat
	require.NoError(t, json.Unmarshal(events[1].Data, &gotChat))
	require.NotNil(t, gotChat.LastMessage)
	assert.Equal(t, "hi", gotChat.LastMessage.Content)

	// The sender is excluded from both room broadcasts.
	assert.Empty(t, clientA.drainEvents())
}

func TestSendMessage_PersistFailureReportedToSenderOnly(t *testing.T) {
	storageMock := new(MockStorage)
	hub := createTestHub(storageMock)
	clientA, clientB := twoClientsInRoom(hub, "room1")

	storageMock.On("CreateMessage", "user_A", "room1", "hi", "text", (*models.Media)(nil)).
		Return(nil, errors.New("write failed"))

	hub.HandleEvent(clientA, mustEvent(t, models.EventSendMessage, models.SendMessagePayload{
		ChatID:      "room1",
		Content:     "hi",
		MessageType: models.MessageTypeText,
	}))

	events := clientA.drainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, models.EventMessageError, events[0].Event)

	var payload models.MessageErrorPayload
	require.NoError(t, json.Unmarshal(events[0].Data, &payload))
	assert.Equal(t, "Failed to send message", payload.Message)

	assert.Empty(t, clientB.drainEvents(), "other members see nothing on a failed send")
	storageMock.AssertNotCalled(t, "UpdateLastMessage", mock.Anything, mock.Anything)
}

func TestTyping_RelayedInOrderWithoutState(t *testing.T) {
	storageMock := new(MockStorage)
	hub := createTestHub(storageMock)
	clientA, clientB := twoClientsInRoom(hub, "room1")

	hub.HandleEvent(clientA, mustEvent(t, models.EventTyping, models.TypingPayload{ChatID: "room1", IsTyping: true}))
	hub.HandleEvent(clientA, mustEvent(t, models.EventTyping, models.TypingPayload{ChatID: "room1", IsTyping: false}))

	events := clientB.drainEvents()
	require.Len(t, events, 2)

	var first, second models.UserTypingPayload
	require.NoError(t, json.Unmarshal(events[0].Data, &first))
	require.NoError(t, json.Unmarshal(events[1].Data, &second))

	assert.Equal(t, models.EventUserTyping, events[0].Event)
	assert.Equal(t, "user_A", first.UserID)
	assert.True(t, first.IsTyping)
	assert.False(t, second.IsTyping)

	assert.Empty(t, clientA.drainEvents())
}

func TestCallUser_RelaysToRegisteredTarget(t *testing.T) {
	storageMock := new(MockStorage)
	hub := createTestHub(storageMock)

	clientA := newMockClient("user_A")
	clientB := newMockClient("user_B")
	hub.Register(clientA)
	hub.Register(clientB)
	clientA.drainEvents()
	clientB.drainEvents()

	signal := json.RawMessage(`{"sdp":"offer"}`)
	hub.HandleEvent(clientA, mustEvent(t, models.EventCallUser, models.CallUserPayload{
		UserID:     "user_B",
		SignalData: signal,
		CallType:   "video",
	}))

	events := clientB.drainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, models.EventIncomingCall, events[0].Event)

	var payload models.IncomingCallPayload
	require.NoError(t, json.Unmarshal(events[0].Data, &payload))
	assert.Equal(t, "user_A", payload.From)
	assert.Equal(t, "video", payload.CallType)
	assert.JSONEq(t, `{"sdp":"offer"}`, string(payload.Signal))
}

func TestCallUser_SilentDropWhenTargetOffline(t *testing.T) {
	storageMock := new(MockStorage)
	hub := createTestHub(storageMock)

	clientA := newMockClient("user_A")
	clientB := newMockClient("user_B")
	hub.Register(clientA)
	hub.Register(clientB)
	hub.Unregister(clientB)
	clientA.drainEvents()

	hub.HandleEvent(clientA, mustEvent(t, models.EventCallUser, models.CallUserPayload{
		UserID:     "user_B",
		SignalData: json.RawMessage(`{}`),
		CallType:   "video",
	}))

	// No delivery anywhere and no error back to the caller.
	assert.Empty(t, clientA.drainEvents())
	assert.Empty(t, clientB.drainEvents())
}

func TestAnswerCall_RelaysSignalBack(t *testing.T) {
	storageMock := new(MockStorage)
	hub := createTestHub(storageMock)

	clientA := newMockClient("user_A")
	clientB := newMockClient("user_B")
	hub.Register(clientA)
	hub.Register(clientB)
	clientA.drainEvents()
	clientB.drainEvents()

	hub.HandleEvent(clientB, mustEvent(t, models.EventAnswerCall, models.AnswerCallPayload{
		To:     "user_A",
		Signal: json.RawMessage(`{"sdp":"answer"}`),
	}))

	events := clientA.drainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, models.EventCallAnswered, events[0].Event)

	var payload models.CallAnsweredPayload
	require.NoError(t, json.Unmarshal(events[0].Data, &payload))
	assert.Equal(t, "user_B", payload.From)
}

func TestCallTeardown_RelaysPeerEvents(t *testing.T) {
	storageMock := new(MockStorage)
	hub := createTestHub(storageMock)

	clientA := newMockClient("user_A")
	clientB := newMockClient("user_B")
	hub.Register(clientA)
	hub.Register(clientB)
	clientA.drainEvents()
	clientB.drainEvents()

	hub.HandleEvent(clientA, mustEvent(t, models.EventRejectCall, models.RejectCallPayload{To: "user_B"}))
	hub.HandleEvent(clientA, mustEvent(t, models.EventEndCall, models.EndCallPayload{To: "user_B"}))

	events := clientB.drainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, models.EventCallRejected, events[0].Event)
	assert.Equal(t, models.EventCallEnded, events[1].Event)

	var payload models.CallPeerPayload
	require.NoError(t, json.Unmarshal(events[1].Data, &payload))
	assert.Equal(t, "user_A", payload.From)
}

func TestICECandidate_RelayedPointToPoint(t *testing.T) {
	storageMock := new(MockStorage)
	hub := createTestHub(storageMock)

	clientA := newMockClient("user_A")
	clientB := newMockClient("user_B")
	hub.Register(clientA)
	hub.Register(clientB)
	clientA.drainEvents()
	clientB.drainEvents()

	hub.HandleEvent(clientA, mustEvent(t, models.EventICECandidate, models.ICECandidatePayload{
		To:        "user_B",
		Candidate: json.RawMessage(`{"candidate":"c0"}`),
	}))

	events := clientB.drainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, models.EventICECandidate, events[0].Event)

	var payload models.ICECandidateRelayPayload
	require.NoError(t, json.Unmarshal(events[0].Data, &payload))
	assert.Equal(t, "user_A", payload.From)
	assert.JSONEq(t, `{"candidate":"c0"}`, string(payload.Candidate))
}

func TestJoinRoomEvent_DecodesRoomID(t *testing.T) {
	storageMock := new(MockStorage)
	hub := createTestHub(storageMock)

	clientA := newMockClient("user_A")
	hub.Register(clientA)

	hub.HandleEvent(clientA, mustEvent(t, models.EventJoinRoom, "room42"))
	assert.Equal(t, 1, hub.RoomSize("room42"))

	hub.HandleEvent(clientA, mustEvent(t, models.EventLeaveRoom, "room42"))
	assert.Equal(t, 0, hub.RoomSize("room42"))
}
