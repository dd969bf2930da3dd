package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/neztrixTON/app/internal/biz/domain"
	"github.com/neztrixTON/app/internal/biz/repo"
)

// chatRepo implements the Chat repository. Each chat is one JSON document;
// chat_participants indexes it by user.
type chatRepo struct {
	db    *sql.DB
	locks *keyLock
}

// NewChatRepo creates a new Chat repository
func NewChatRepo(db *sql.DB) repo.ChatRepo {
	return &chatRepo{db: db, locks: newKeyLock()}
}

// Get gets a chat by ID
func (r *chatRepo) Get(ctx context.Context, chatID string) (*domain.Chat, error) {
	row := r.db.QueryRowContext(ctx, `SELECT data FROM chats WHERE chat_id = ?`, chatID)
	var data string
	err := row.Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query chat: %w", err)
	}
	return decodeChat(data)
}

// Create inserts the chat unless one with the same ID exists
func (r *chatRepo) Create(ctx context.Context, chat *domain.Chat) (bool, error) {
	unlock := r.locks.Lock(chat.ID)
	defer unlock()

	data, err := json.Marshal(chat)
	if err != nil {
		return false, fmt.Errorf("failed to encode chat: %w", err)
	}

	// A committed create must not be undone by the caller going away
	ctx = context.WithoutCancel(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UnixMilli()
	result, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO chats (chat_id, data, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, chat.ID, string(data), now, now)
	if err != nil {
		return false, fmt.Errorf("failed to insert chat: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to insert chat: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	if err := syncParticipants(ctx, tx, chat); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit chat: %w", err)
	}
	return true, nil
}

// Update applies fn to the stored chat inside one transaction
func (r *chatRepo) Update(ctx context.Context, chatID string, fn func(chat *domain.Chat) error) (*domain.Chat, error) {
	unlock := r.locks.Lock(chatID)
	defer unlock()

	ctx = context.WithoutCancel(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var data string
	err = tx.QueryRowContext(ctx, `SELECT data FROM chats WHERE chat_id = ?`, chatID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, domain.NotFound("chat")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query chat: %w", err)
	}

	chat, err := decodeChat(data)
	if err != nil {
		return nil, err
	}
	if err := fn(chat); err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(chat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE chats SET data = ?, updated_at = ? WHERE chat_id = ?
	`, string(encoded), time.Now().UnixMilli(), chatID); err != nil {
		return nil, fmt.Errorf("failed to update chat: %w", err)
	}
	if err := syncParticipants(ctx, tx, chat); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit chat: %w", err)
	}
	return chat, nil
}

// ListByParticipant lists chats userID participates in, most recently active first
func (r *chatRepo) ListByParticipant(ctx context.Context, userID string) ([]*domain.Chat, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.data
		FROM chats c
		JOIN chat_participants p ON p.chat_id = c.chat_id
		WHERE p.user_id = ?
		ORDER BY c.updated_at DESC, c.chat_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	return scanChats(rows)
}

// ListAll lists every chat
func (r *chatRepo) ListAll(ctx context.Context) ([]*domain.Chat, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT data FROM chats ORDER BY chat_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	return scanChats(rows)
}

func scanChats(rows *sql.Rows) ([]*domain.Chat, error) {
	defer rows.Close()

	var chats []*domain.Chat
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		chat, err := decodeChat(data)
		if err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chats: %w", err)
	}
	return chats, nil
}

func decodeChat(data string) (*domain.Chat, error) {
	var chat domain.Chat
	if err := json.Unmarshal([]byte(data), &chat); err != nil {
		return nil, fmt.Errorf("failed to decode chat: %w", err)
	}
	if chat.Notify == nil {
		chat.Notify = make(map[string]*domain.NotifyEntry)
	}
	return &chat, nil
}

func syncParticipants(ctx context.Context, tx *sql.Tx, chat *domain.Chat) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM chat_participants WHERE chat_id = ?`, chat.ID); err != nil {
		return fmt.Errorf("failed to clear participants: %w", err)
	}
	for _, p := range chat.Participants {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO chat_participants (chat_id, user_id) VALUES (?, ?)
		`, chat.ID, p.UserID); err != nil {
			return fmt.Errorf("failed to index participant: %w", err)
		}
	}
	return nil
}
