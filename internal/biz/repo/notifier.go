package repo

import (
	"context"

	"github.com/neztrixTON/app/internal/biz/domain"
)

// Notifier is the push transport. A nil error means the alert was delivered.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

// DigestComposer writes the body of a notification from the unread backlog.
// Optional; the dispatcher falls back to its templates when absent or failing.
type DigestComposer interface {
	Compose(ctx context.Context, chatTitle string, unread []domain.Message) (string, error)
}

// EventPublisher pushes live events to connected users
type EventPublisher interface {
	Publish(userIDs []string, event domain.Event)
}
