package data

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/neztrixTON/app/internal/biz/domain"
	"github.com/neztrixTON/app/internal/biz/repo"
	"github.com/neztrixTON/app/internal/infra/feishu"
	"github.com/neztrixTON/app/internal/logx"
)

// feishuSender is the part of the Feishu client the notifier needs
type feishuSender interface {
	SendPost(ctx context.Context, receiveIDType, receiveID, title, text string) error
}

// feishuNotifier pushes alerts as Feishu messages addressed by user id
type feishuNotifier struct {
	client        feishuSender
	receiveIDType string
}

// NewFeishuNotifier creates a notifier that sends to receiveIDType ids
// (open_id by default). Chat user ids are used as receive ids as is.
func NewFeishuNotifier(client *feishu.Client, receiveIDType string) repo.Notifier {
	return &feishuNotifier{client: client, receiveIDType: receiveIDType}
}

// Notify sends the notification
func (n *feishuNotifier) Notify(ctx context.Context, notification domain.Notification) error {
	return n.client.SendPost(ctx, n.receiveIDType, notification.UserID, notification.Title, notification.Body)
}

// logNotifier only logs. Used when no push transport is configured, so the
// notify state still advances.
type logNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier creates a notifier that writes alerts to the log
func NewLogNotifier() repo.Notifier {
	return &logNotifier{log: logx.Component("notifier")}
}

// Notify logs the notification
func (n *logNotifier) Notify(ctx context.Context, notification domain.Notification) error {
	n.log.Info().
		Str("chat_id", notification.ChatID).
		Str("user_id", notification.UserID).
		Int("unread", notification.UnreadCount).
		Str("title", notification.Title).
		Msg(notification.Body)
	return nil
}
