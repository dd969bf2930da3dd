package repo

import (
	"context"
	"time"
)

// PresenceRepo stores the last heartbeat per user
type PresenceRepo interface {
	// Touch records at as the last heartbeat of userID
	Touch(ctx context.Context, userID string, at time.Time) error

	// LastSeen returns the last heartbeat, ok=false if none was ever recorded
	LastSeen(ctx context.Context, userID string) (time.Time, bool, error)

	// LastSeenMany returns the last heartbeat of every known user in userIDs
	LastSeenMany(ctx context.Context, userIDs []string) (map[string]time.Time, error)
}
