package domain

import "time"

// DefaultOnlineWindow is how long a heartbeat keeps a user online
const DefaultOnlineWindow = 30 * time.Second

// Presence is the last heartbeat seen for a user
type Presence struct {
	UserID   string
	LastSeen time.Time
}

// IsOnline reports whether the heartbeat is younger than window at now.
// A zero LastSeen (no heartbeat ever) is offline.
func (p Presence) IsOnline(now time.Time, window time.Duration) bool {
	if p.LastSeen.IsZero() {
		return false
	}
	return now.Sub(p.LastSeen) < window
}

// PresenceStatus is the presence query result
type PresenceStatus struct {
	UserID   string     `json:"userId"`
	Online   bool       `json:"online"`
	LastSeen *time.Time `json:"lastSeen,omitempty"`
}
