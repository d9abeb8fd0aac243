package storage

// The presence snapshot mirrors the hub's in-process registry into a
// Redis set so the HTTP layer can report who is online without asking
// the hub. It is ephemeral state: the set is cleared on startup.

const onlineUsersKey = "online_users"

// SetUserOnline adds a user to the online set.
func (s *Service) SetUserOnline(userID string) error {
	return s.Redis.SAdd(s.Ctx, onlineUsersKey, userID).Err()
}

// SetUserOffline removes a user from the online set.
func (s *Service) SetUserOffline(userID string) error {
	return s.Redis.SRem(s.Ctx, onlineUsersKey, userID).Err()
}

// GetOnlineUserIDs returns every user currently in the online set.
func (s *Service) GetOnlineUserIDs() ([]string, error) {
	return s.Redis.SMembers(s.Ctx, onlineUsersKey).Result()
}

// ClearOnlineUsers drops the whole set. Called on startup so a crashed
// process does not leave stale presence behind.
func (s *Service) ClearOnlineUsers() error {
	return s.Redis.Del(s.Ctx, onlineUsersKey).Err()
}
