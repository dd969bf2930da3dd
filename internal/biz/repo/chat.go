package repo

import (
	"context"

	"github.com/neztrixTON/app/internal/biz/domain"
)

// ChatRepo is the chat repository interface
// Every mutation goes through Update, which is an atomic read-modify-write
// serialized per chat and persisted before it returns.
type ChatRepo interface {
	// Get gets a chat by ID, returns nil if absent
	Get(ctx context.Context, chatID string) (*domain.Chat, error)

	// Create inserts chat unless a chat with the same ID exists.
	// Returns false (and no error) when the chat already existed.
	Create(ctx context.Context, chat *domain.Chat) (bool, error)

	// Update loads the chat, applies fn and persists the result atomically.
	// Returns a NotFound domain error if the chat does not exist. If fn
	// returns an error nothing is persisted and the error is returned as is.
	Update(ctx context.Context, chatID string, fn func(chat *domain.Chat) error) (*domain.Chat, error)

	// ListByParticipant lists chats that userID participates in
	ListByParticipant(ctx context.Context, userID string) ([]*domain.Chat, error)

	// ListAll lists every chat (used by the notify sweep)
	ListAll(ctx context.Context) ([]*domain.Chat, error)
}
