package data

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// schema is applied on every open; statements are idempotent
var schema = []string{
	`CREATE TABLE IF NOT EXISTS chats (
		chat_id TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS chat_participants (
		chat_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		PRIMARY KEY (chat_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_participants_user ON chat_participants(user_id)`,
	`CREATE TABLE IF NOT EXISTS presence (
		user_id TEXT PRIMARY KEY,
		last_seen INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS admins (
		user_id TEXT PRIMARY KEY,
		granted_by TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	)`,
}

// OpenDB opens (creating if needed) the SQLite database at dbPath and applies
// the schema. Writers take the lock at BEGIN so read-modify-write transactions
// never fail with SQLITE_BUSY on upgrade.
func OpenDB(dbPath string) (*sql.DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	return db, nil
}
