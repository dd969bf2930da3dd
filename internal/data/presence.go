package data

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/neztrixTON/app/internal/biz/repo"
)

// presenceRepo implements the Presence repository
type presenceRepo struct {
	db *sql.DB
}

// NewPresenceRepo creates a new Presence repository
func NewPresenceRepo(db *sql.DB) repo.PresenceRepo {
	return &presenceRepo{db: db}
}

// Touch records the last heartbeat of userID
func (r *presenceRepo) Touch(ctx context.Context, userID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO presence (user_id, last_seen) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET last_seen = MAX(last_seen, excluded.last_seen)
	`, userID, at.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to touch presence: %w", err)
	}
	return nil
}

// LastSeen gets the last heartbeat of userID
func (r *presenceRepo) LastSeen(ctx context.Context, userID string) (time.Time, bool, error) {
	var ms int64
	err := r.db.QueryRowContext(ctx, `SELECT last_seen FROM presence WHERE user_id = ?`, userID).Scan(&ms)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query presence: %w", err)
	}
	return time.UnixMilli(ms), true, nil
}

// LastSeenMany gets the last heartbeat of every known user in userIDs
func (r *presenceRepo) LastSeenMany(ctx context.Context, userIDs []string) (map[string]time.Time, error) {
	result := make(map[string]time.Time)
	if len(userIDs) == 0 {
		return result, nil
	}

	// Build IN clause
	placeholders := make([]string, len(userIDs))
	args := make([]interface{}, len(userIDs))
	for i, id := range userIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT user_id, last_seen FROM presence WHERE user_id IN (%s)
	`, strings.Join(placeholders, ","))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query presence: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		var ms int64
		if err := rows.Scan(&userID, &ms); err != nil {
			return nil, fmt.Errorf("failed to scan presence: %w", err)
		}
		result[userID] = time.UnixMilli(ms)
	}
	return result, rows.Err()
}
