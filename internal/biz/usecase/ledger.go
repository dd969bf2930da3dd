package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/neztrixTON/app/internal/biz/domain"
	"github.com/neztrixTON/app/internal/biz/repo"
	"github.com/neztrixTON/app/internal/logx"
)

// AlertTrigger is told about every append so it can alert the recipient
type AlertTrigger interface {
	OnAppend(chatID, userID string)
}

// SendRequest is the input of SendText and SendAttachment
type SendRequest struct {
	ChatID  string
	From    string
	To      string
	Text    string
	ReplyTo string
}

// LedgerUsecase appends messages and tracks reads
type LedgerUsecase struct {
	chatRepo    repo.ChatRepo
	attachments repo.AttachmentStore
	presenceUC  *PresenceUsecase
	events      repo.EventPublisher
	trigger     AlertTrigger
	now         func() time.Time
	log         zerolog.Logger
}

// NewLedgerUsecase creates a new ledger usecase
func NewLedgerUsecase(
	chatRepo repo.ChatRepo,
	attachments repo.AttachmentStore,
	presenceUC *PresenceUsecase,
) *LedgerUsecase {
	return &LedgerUsecase{
		chatRepo:    chatRepo,
		attachments: attachments,
		presenceUC:  presenceUC,
		now:         time.Now,
		log:         logx.Component("ledger"),
	}
}

// SetEventPublisher attaches the live event hub
func (uc *LedgerUsecase) SetEventPublisher(events repo.EventPublisher) {
	uc.events = events
}

// SetAlertTrigger attaches the notification dispatcher
func (uc *LedgerUsecase) SetAlertTrigger(trigger AlertTrigger) {
	uc.trigger = trigger
}

// SetClock overrides the time source
func (uc *LedgerUsecase) SetClock(now func() time.Time) {
	uc.now = now
}

// SendText appends a text message
func (uc *LedgerUsecase) SendText(ctx context.Context, req SendRequest) (*domain.Message, error) {
	if req.ChatID == "" {
		return nil, domain.MissingParameter("chatId")
	}
	return uc.append(ctx, req, "")
}

// SendAttachment stores the upload and appends a message referencing it.
// Text is an optional caption.
func (uc *LedgerUsecase) SendAttachment(ctx context.Context, req SendRequest, filename string, r io.Reader) (*domain.Message, error) {
	if req.ChatID == "" {
		return nil, domain.MissingParameter("chatId")
	}
	if r == nil || strings.TrimSpace(filename) == "" {
		return nil, domain.InvalidPayload("attachment is required")
	}
	if uc.attachments == nil {
		return nil, domain.TransientDependencyFailure("attachment store", fmt.Errorf("not configured"))
	}

	// Don't store bytes for a chat that does not exist
	chat, err := uc.chatRepo.Get(ctx, req.ChatID)
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	if chat == nil {
		return nil, domain.NotFound("chat")
	}
	if req.From == "" || req.To == "" {
		return nil, domain.InvalidPayload("from and to are required")
	}

	ref, err := uc.attachments.Store(ctx, filename, r)
	if err != nil {
		if domain.KindOf(err) != "" {
			return nil, err
		}
		uc.log.Warn().Err(err).Str("chat_id", req.ChatID).Str("filename", filename).Msg("Failed to store attachment")
		return nil, domain.TransientDependencyFailure("attachment store", err)
	}

	return uc.append(ctx, req, ref)
}

func (uc *LedgerUsecase) append(ctx context.Context, req SendRequest, attachmentRef string) (*domain.Message, error) {
	now := uc.now()
	msg := domain.Message{
		ID:            domain.NewMessageID(now),
		From:          req.From,
		To:            req.To,
		Text:          req.Text,
		AttachmentRef: attachmentRef,
		Timestamp:     now,
		ReplyTo:       req.ReplyTo,
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}

	chat, err := uc.chatRepo.Update(ctx, req.ChatID, func(chat *domain.Chat) error {
		chat.Append(msg)
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Debug().
		Str("chat_id", req.ChatID).
		Str("message_id", msg.ID).
		Str("from", msg.From).
		Str("to", msg.To).
		Bool("attachment", msg.HasAttachment()).
		Msg("Message appended")

	uc.presenceUC.Touch(ctx, msg.From)

	if uc.events != nil {
		published := msg
		uc.events.Publish(chat.OtherParticipants(msg.From), domain.Event{
			Type:    domain.EventMessageCreated,
			ChatID:  chat.ID,
			UserID:  msg.From,
			Message: &published,
		})
	}
	if uc.trigger != nil && msg.To != msg.From {
		uc.trigger.OnAppend(chat.ID, msg.To)
	}

	return &msg, nil
}

// MarkRead marks every message addressed to userID as read and returns the
// chat as persisted after the read
func (uc *LedgerUsecase) MarkRead(ctx context.Context, chatID, userID string) (*domain.Chat, error) {
	if chatID == "" {
		return nil, domain.MissingParameter("chatId")
	}
	if userID == "" {
		return nil, domain.MissingParameter("userId")
	}

	changed := 0
	chat, err := uc.chatRepo.Update(ctx, chatID, func(chat *domain.Chat) error {
		changed = chat.MarkRead(userID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.presenceUC.Touch(ctx, userID)

	if changed > 0 {
		uc.log.Debug().Str("chat_id", chatID).Str("user_id", userID).Int("count", changed).Msg("Messages marked read")
		if uc.events != nil {
			uc.events.Publish(chat.OtherParticipants(userID), domain.Event{
				Type:   domain.EventMessagesRead,
				ChatID: chatID,
				UserID: userID,
			})
		}
	}
	return chat, nil
}

// UnreadCount counts messages addressed to userID that are still unread
func (uc *LedgerUsecase) UnreadCount(ctx context.Context, chatID, userID string) (int, error) {
	chat, err := uc.chatRepo.Get(ctx, chatID)
	if err != nil {
		return 0, fmt.Errorf("get chat: %w", err)
	}
	if chat == nil {
		return 0, domain.NotFound("chat")
	}
	return chat.UnreadCount(userID), nil
}
