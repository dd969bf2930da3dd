package data

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/neztrixTON/app/internal/biz/repo"
)

// permissionRepo implements the Permission repository. The set is small and
// read on every guarded request, so it is cached and guarded by its own lock.
type permissionRepo struct {
	db    *sql.DB
	mu    sync.RWMutex
	cache map[string]bool
}

// NewPermissionRepo creates a new Permission repository and loads the set
func NewPermissionRepo(db *sql.DB) (repo.PermissionRepo, error) {
	r := &permissionRepo{db: db, cache: make(map[string]bool)}

	rows, err := db.Query(`SELECT user_id FROM admins`)
	if err != nil {
		return nil, fmt.Errorf("failed to load admins: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan admin: %w", err)
		}
		r.cache[userID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load admins: %w", err)
	}
	return r, nil
}

// Grant adds userID to the set
func (r *permissionRepo) Grant(ctx context.Context, userID, grantedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO admins (user_id, granted_by, created_at) VALUES (?, ?, ?)
	`, userID, grantedBy, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to grant admin: %w", err)
	}
	r.cache[userID] = true
	return nil
}

// Revoke removes userID from the set
func (r *permissionRepo) Revoke(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM admins WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to revoke admin: %w", err)
	}
	delete(r.cache, userID)
	return nil
}

// Has checks membership
func (r *permissionRepo) Has(ctx context.Context, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cache[userID], nil
}

// List lists the set, sorted
func (r *permissionRepo) List(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.cache))
	for id := range r.cache {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
