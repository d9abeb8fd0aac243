package chathub

import "chatterbox/backend/internal/models"

// Client is the interface for one live transport session. It abstracts
// the underlying connection so the hub can relay events without knowing
// whether they cross a real websocket or a test double.
type Client interface {
	// GetUserID returns the authenticated user behind the connection.
	GetUserID() string
	// GetConnID returns the identifier of this particular connection.
	// A user who reconnects gets a new connection id.
	GetConnID() string

	// GetSendChannel returns the channel the hub writes outbound events
	// to. It is a send-only channel; the client's write pump drains it.
	GetSendChannel() chan<- models.Event

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the outbound channel, which stops the write pump.
	Close()
}
