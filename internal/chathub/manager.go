package chathub

import (
	"log"
	"sync"

	"chatterbox/backend/internal/models"
	"chatterbox/backend/internal/storage"
)

// ManagerService is the presence and relay hub. It owns the registry of
// online users, room membership, and the three broadcast scopes the
// relay handlers are written against: one connection, a room excluding
// the sender, and everyone excluding the sender.
//
// All maps are guarded by mu; handlers run on each connection's read
// goroutine, so concurrent access is the norm here.
type ManagerService struct {
	mu       sync.RWMutex
	conns    map[Client]bool   // every live connection
	registry map[string]Client // userID → current connection, last write wins
	rooms    map[string]map[Client]bool

	Storage storage.Storage
}

// NewManagerService Constructor
func NewManagerService(s storage.Storage) *ManagerService {
	return &ManagerService{
		conns:    make(map[Client]bool),
		registry: make(map[string]Client),
		rooms:    make(map[string]map[Client]bool),
		Storage:  s,
	}
}

// Register admits an authenticated connection: it takes over the user's
// registry slot (an older connection for the same user stays open but
// becomes unreachable for signaling), joins the personal room keyed by
// the user id, mirrors presence into the snapshot store and announces
// the user as online to everyone else.
func (m *ManagerService) Register(client Client) {
	userID := client.GetUserID()

	m.mu.Lock()
	m.conns[client] = true
	m.registry[userID] = client
	m.joinRoomLocked(client, userID)
	m.mu.Unlock()

	log.Printf("User connected: %s", userID)

	if err := m.Storage.SetUserOnline(userID); err != nil {
		log.Printf("WARNING: Failed to record online presence for %s: %v", userID, err)
	}

	ev, err := models.NewEvent(models.EventUserStatusUpdate, models.UserStatusPayload{
		UserID: userID,
		Status: models.StatusOnline,
	})
	if err != nil {
		return
	}
	m.BroadcastAll(ev, client)
}

// Unregister tears a connection down. The registry entry and the
// offline announcement only happen when the departing connection is
// still the user's current one, so a reconnect that already replaced it
// is not knocked back offline.
func (m *ManagerService) Unregister(client Client) {
	userID := client.GetUserID()

	m.mu.Lock()
	if !m.conns[client] {
		m.mu.Unlock()
		return
	}
	delete(m.conns, client)
	for roomID, members := range m.rooms {
		delete(members, client)
		if len(members) == 0 {
			delete(m.rooms, roomID)
		}
	}
	wasCurrent := m.registry[userID] == client
	if wasCurrent {
		delete(m.registry, userID)
	}
	// Closing under the write lock orders the close after every
	// in-flight send; trySend only runs under the read lock.
	client.Close()
	m.mu.Unlock()

	if !wasCurrent {
		return
	}

	log.Printf("User disconnected: %s", userID)

	if err := m.Storage.SetUserOffline(userID); err != nil {
		log.Printf("WARNING: Failed to clear online presence for %s: %v", userID, err)
	}

	ev, err := models.NewEvent(models.EventUserStatusUpdate, models.UserStatusPayload{
		UserID: userID,
		Status: models.StatusOffline,
	})
	if err != nil {
		return
	}
	m.BroadcastAll(ev, client)
}

// JoinRoom adds the connection to a room. Repeated joins are no-ops.
func (m *ManagerService) JoinRoom(client Client, roomID string) {
	m.mu.Lock()
	m.joinRoomLocked(client, roomID)
	m.mu.Unlock()
}

// LeaveRoom removes the connection from a room. Leaving a room the
// connection never joined is a no-op.
func (m *ManagerService) LeaveRoom(client Client, roomID string) {
	m.mu.Lock()
	if members, ok := m.rooms[roomID]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(m.rooms, roomID)
		}
	}
	m.mu.Unlock()
}

func (m *ManagerService) joinRoomLocked(client Client, roomID string) {
	if m.rooms[roomID] == nil {
		m.rooms[roomID] = make(map[Client]bool)
	}
	m.rooms[roomID][client] = true
}

// BroadcastToRoom delivers an event to every room member except the
// given connection.
func (m *ManagerService) BroadcastToRoom(roomID string, ev models.Event, except Client) {
	m.mu.RLock()
	var stalled []Client
	for member := range m.rooms[roomID] {
		if member == except {
			continue
		}
		if !trySend(member, ev) {
			stalled = append(stalled, member)
		}
	}
	m.mu.RUnlock()

	for _, member := range stalled {
		m.dropSlow(member)
	}
}

// BroadcastAll delivers an event to every connection except the given one.
func (m *ManagerService) BroadcastAll(ev models.Event, except Client) {
	m.mu.RLock()
	var stalled []Client
	for conn := range m.conns {
		if conn == except {
			continue
		}
		if !trySend(conn, ev) {
			stalled = append(stalled, conn)
		}
	}
	m.mu.RUnlock()

	for _, conn := range stalled {
		m.dropSlow(conn)
	}
}

// SendToUser delivers an event to the single connection registered for
// the user. It reports false when the user is not registered; callers
// relaying signaling payloads treat that as a silent drop.
func (m *ManagerService) SendToUser(userID string, ev models.Event) bool {
	m.mu.RLock()
	target := m.registry[userID]
	sent := target != nil && trySend(target, ev)
	m.mu.RUnlock()

	if target == nil {
		return false
	}
	if !sent {
		m.dropSlow(target)
	}
	return sent
}

// SendTo delivers an event to one specific connection.
func (m *ManagerService) SendTo(client Client, ev models.Event) {
	m.mu.RLock()
	sent := !m.conns[client] || trySend(client, ev)
	m.mu.RUnlock()

	if !sent {
		m.dropSlow(client)
	}
}

// trySend performs a non-blocking write to the client's outbound
// channel. A full channel means the client cannot keep up.
func trySend(client Client, ev models.Event) bool {
	select {
	case client.GetSendChannel() <- ev:
		return true
	default:
		return false
	}
}

func (m *ManagerService) dropSlow(client Client) {
	log.Printf("Dropping slow client %s (user %s)", client.GetConnID(), client.GetUserID())
	m.Unregister(client)
}

// IsOnline reports whether a user has a registered connection.
func (m *ManagerService) IsOnline(userID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.registry[userID]
	return ok
}

// OnlineCount returns the number of registered users.
func (m *ManagerService) OnlineCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.registry)
}

// RoomSize returns the number of connections currently in a room.
func (m *ManagerService) RoomSize(roomID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms[roomID])
}
