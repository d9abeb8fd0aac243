package chathub

import (
	"encoding/json"
	"log"

	"chatterbox/backend/internal/models"
)

// sendFailedText is the body of every messageError event, matching the
// client's expectation.
const sendFailedText = "Failed to send message"

// HandleEvent dispatches one inbound envelope for a connection. It runs
// on the connection's read goroutine, so events from the same client
// are handled strictly in arrival order.
func (m *ManagerService) HandleEvent(client Client, ev models.Event) {
	switch ev.Event {
	case models.EventJoinRoom:
		m.handleJoinRoom(client, ev.Data)
	case models.EventLeaveRoom:
		m.handleLeaveRoom(client, ev.Data)
	case models.EventSendMessage:
		m.handleSendMessage(client, ev.Data)
	case models.EventTyping:
		m.handleTyping(client, ev.Data)
	case models.EventCallUser:
		m.handleCallUser(client, ev.Data)
	case models.EventAnswerCall:
		m.handleAnswerCall(client, ev.Data)
	case models.EventRejectCall:
		m.handleRejectCall(client, ev.Data)
	case models.EventEndCall:
		m.handleEndCall(client, ev.Data)
	case models.EventICECandidate:
		m.handleICECandidate(client, ev.Data)
	default:
		log.Printf("Unknown event %q from user %s", ev.Event, client.GetUserID())
	}
}

func (m *ManagerService) handleJoinRoom(client Client, data json.RawMessage) {
	var roomID string
	if err := json.Unmarshal(data, &roomID); err != nil || roomID == "" {
		return
	}
	m.JoinRoom(client, roomID)
	log.Printf("User %s joined room %s", client.GetUserID(), roomID)
}

func (m *ManagerService) handleLeaveRoom(client Client, data json.RawMessage) {
	var roomID string
	if err := json.Unmarshal(data, &roomID); err != nil || roomID == "" {
		return
	}
	m.LeaveRoom(client, roomID)
	log.Printf("User %s left room %s", client.GetUserID(), roomID)
}

// handleSendMessage is the write-then-broadcast path: the durable write
// is awaited before anything is emitted, so no receiver ever observes a
// message that is not persisted. Any persistence failure is reported to
// the sender alone.
func (m *ManagerService) handleSendMessage(client Client, data json.RawMessage) {
	var p models.SendMessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		m.sendMessageError(client)
		return
	}

	msg, err := m.Storage.CreateMessage(client.GetUserID(), p.ChatID, p.Content, p.MessageType, p.Media)
	if err != nil {
		log.Printf("Error handling message: %v", err)
		m.sendMessageError(client)
		return
	}

	if err := m.Storage.UpdateLastMessage(p.ChatID, msg.ID.Hex()); err != nil {
		log.Printf("Error handling message: %v", err)
		m.sendMessageError(client)
		return
	}

	populated, err := m.Storage.GetMessageWithSender(msg.ID.Hex())
	if err != nil {
		log.Printf("Error handling message: %v", err)
		m.sendMessageError(client)
		return
	}

	newMsg, err := models.NewEvent(models.EventNewMessage, populated)
	if err != nil {
		m.sendMessageError(client)
		return
	}
	m.BroadcastToRoom(p.ChatID, newMsg, client)

	chat, err := m.Storage.GetChatWithParticipants(p.ChatID)
	if err != nil {
		log.Printf("Error handling message: %v", err)
		m.sendMessageError(client)
		return
	}

	chatUpdated, err := models.NewEvent(models.EventChatUpdated, chat)
	if err != nil {
		return
	}
	m.BroadcastToRoom(p.ChatID, chatUpdated, client)
}

// handleTyping is a pure relay; the hub keeps no typing state and does
// no debouncing.
func (m *ManagerService) handleTyping(client Client, data json.RawMessage) {
	var p models.TypingPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}

	ev, err := models.NewEvent(models.EventUserTyping, models.UserTypingPayload{
		UserID:   client.GetUserID(),
		IsTyping: p.IsTyping,
	})
	if err != nil {
		return
	}
	m.BroadcastToRoom(p.ChatID, ev, client)
}

// Call signaling below is point-to-point: look the target up in the
// registry and forward, or drop silently when the target is offline.

func (m *ManagerService) handleCallUser(client Client, data json.RawMessage) {
	var p models.CallUserPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}

	ev, err := models.NewEvent(models.EventIncomingCall, models.IncomingCallPayload{
		From:     client.GetUserID(),
		Signal:   p.SignalData,
		CallType: p.CallType,
	})
	if err != nil {
		return
	}
	m.SendToUser(p.UserID, ev)
}

func (m *ManagerService) handleAnswerCall(client Client, data json.RawMessage) {
	var p models.AnswerCallPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}

	ev, err := models.NewEvent(models.EventCallAnswered, models.CallAnsweredPayload{
		Signal: p.Signal,
		From:   client.GetUserID(),
	})
	if err != nil {
		return
	}
	m.SendToUser(p.To, ev)
}

func (m *ManagerService) handleRejectCall(client Client, data json.RawMessage) {
	var p models.RejectCallPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}

	ev, err := models.NewEvent(models.EventCallRejected, models.CallPeerPayload{From: client.GetUserID()})
	if err != nil {
		return
	}
	m.SendToUser(p.To, ev)
}

func (m *ManagerService) handleEndCall(client Client, data json.RawMessage) {
	var p models.EndCallPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}

	ev, err := models.NewEvent(models.EventCallEnded, models.CallPeerPayload{From: client.GetUserID()})
	if err != nil {
		return
	}
	m.SendToUser(p.To, ev)
}

func (m *ManagerService) handleICECandidate(client Client, data json.RawMessage) {
	var p models.ICECandidatePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}

	ev, err := models.NewEvent(models.EventICECandidate, models.ICECandidateRelayPayload{
		From:      client.GetUserID(),
		Candidate: p.Candidate,
	})
	if err != nil {
		return
	}
	m.SendToUser(p.To, ev)
}

func (m *ManagerService) sendMessageError(client Client) {
	ev, err := models.NewEvent(models.EventMessageError, models.MessageErrorPayload{Message: sendFailedText})
	if err != nil {
		return
	}
	m.SendTo(client, ev)
}
