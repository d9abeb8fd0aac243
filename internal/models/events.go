package models

import "encoding/json"

// Inbound event names (client → hub).
const (
	EventJoinRoom     = "joinRoom"
	EventLeaveRoom    = "leaveRoom"
	EventSendMessage  = "sendMessage"
	EventTyping       = "typing"
	EventCallUser     = "callUser"
	EventAnswerCall   = "answerCall"
	EventRejectCall   = "rejectCall"
	EventEndCall      = "endCall"
	EventICECandidate = "ice-candidate"
)

// Outbound event names (hub → client).
const (
	EventNewMessage       = "newMessage"
	EventChatUpdated      = "chatUpdated"
	EventMessageError     = "messageError"
	EventUserStatusUpdate = "userStatusUpdate"
	EventUserTyping       = "userTyping"
	EventIncomingCall     = "incomingCall"
	EventCallAnswered     = "callAnswered"
	EventCallRejected     = "callRejected"
	EventCallEnded        = "callEnded"
	// ice-candidate is relayed under the same name in both directions.
)

// Event is the wire envelope for everything crossing the websocket.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEvent builds an envelope with the payload marshalled into Data.
func NewEvent(name string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{Event: name, Data: data}, nil
}

// --- Inbound payloads ---

type SendMessagePayload struct {
	ChatID      string `json:"chatId"`
	Content     string `json:"content"`
	MessageType string `json:"messageType"`
	Media       *Media `json:"media,omitempty"`
}

type TypingPayload struct {
	ChatID   string `json:"chatId"`
	IsTyping bool   `json:"isTyping"`
}

type CallUserPayload struct {
	UserID     string          `json:"userId"`
	SignalData json.RawMessage `json:"signalData"`
	CallType   string          `json:"callType"`
}

type AnswerCallPayload struct {
	To     string          `json:"to"`
	Signal json.RawMessage `json:"signal"`
}

type RejectCallPayload struct {
	To string `json:"to"`
}

type EndCallPayload struct {
	To string `json:"to"`
}

type ICECandidatePayload struct {
	To        string          `json:"to"`
	Candidate json.RawMessage `json:"candidate"`
}

// --- Outbound payloads ---

type UserStatusPayload struct {
	UserID string `json:"userId"`
	Status string `json:"status"`
}

type UserTypingPayload struct {
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

type IncomingCallPayload struct {
	From     string          `json:"from"`
	Signal   json.RawMessage `json:"signal"`
	CallType string          `json:"callType"`
}

type CallAnsweredPayload struct {
	Signal json.RawMessage `json:"signal"`
	From   string          `json:"from"`
}

// CallPeerPayload is shared by callRejected and callEnded, which only
// identify the other side of the call.
type CallPeerPayload struct {
	From string `json:"from"`
}

type ICECandidateRelayPayload struct {
	From      string          `json:"from"`
	Candidate json.RawMessage `json:"candidate"`
}

type MessageErrorPayload struct {
	Message string `json:"message"`
}
