package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/neztrixTON/app/internal/biz/domain"
	"github.com/neztrixTON/app/internal/biz/repo"
	"github.com/neztrixTON/app/internal/logx"
)

// DirectoryUsecase aggregates chats into per-user views
type DirectoryUsecase struct {
	chatRepo   repo.ChatRepo
	ledgerUC   *LedgerUsecase
	presenceUC *PresenceUsecase
	templates  TemplateConfig
	log        zerolog.Logger
}

// NewDirectoryUsecase creates a new directory usecase
func NewDirectoryUsecase(
	chatRepo repo.ChatRepo,
	ledgerUC *LedgerUsecase,
	presenceUC *PresenceUsecase,
	templates TemplateConfig,
) *DirectoryUsecase {
	return &DirectoryUsecase{
		chatRepo:   chatRepo,
		ledgerUC:   ledgerUC,
		presenceUC: presenceUC,
		templates:  templates.withDefaults(),
		log:        logx.Component("directory"),
	}
}

// ListChats returns a summary of every chat userID participates in
func (uc *DirectoryUsecase) ListChats(ctx context.Context, userID string) ([]domain.ChatSummary, error) {
	if userID == "" {
		return nil, domain.MissingParameter("userId")
	}

	uc.presenceUC.Touch(ctx, userID)

	chats, err := uc.chatRepo.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}

	summaries := make([]domain.ChatSummary, 0, len(chats))
	for _, chat := range chats {
		online, err := uc.presenceUC.AnyOnline(ctx, chat.OtherParticipants(userID))
		if err != nil {
			// Presence is advisory; show the chat as offline
			uc.log.Warn().Err(err).Str("chat_id", chat.ID).Msg("Failed to read presence")
			online = false
		}
		summaries = append(summaries, domain.ChatSummary{
			ChatID:             chat.ID,
			Title:              uc.templates.ChatTitle(chat, userID),
			Online:             online,
			UnreadCount:        chat.UnreadCount(userID),
			LastMessagePreview: uc.templates.LastMessagePreview(chat, userID),
			IsAdmin:            chat.IsAdmin(userID),
		})
	}
	return summaries, nil
}

// GetMessages marks the chat read for userID and returns its full history
func (uc *DirectoryUsecase) GetMessages(ctx context.Context, chatID, userID string) (*domain.MessagesView, error) {
	if chatID == "" {
		return nil, domain.MissingParameter("chatId")
	}
	if userID == "" {
		return nil, domain.MissingParameter("userId")
	}

	chat, err := uc.ledgerUC.MarkRead(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}

	views := make([]domain.MessageView, 0, len(chat.Messages))
	for _, m := range chat.Messages {
		views = append(views, domain.MessageView{
			Message:      m,
			ReplyPreview: uc.templates.ReplyPreview(chat, m.ReplyTo),
		})
	}

	return &domain.MessagesView{
		Messages: views,
		Meta: domain.ChatMeta{
			ChatID:       chat.ID,
			Participants: chat.Participants,
			IsAdmin:      chat.IsAdmin(userID),
			Meta:         chat.Meta,
		},
	}, nil
}
