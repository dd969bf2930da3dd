package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/neztrixTON/app/internal/biz/domain"
	"github.com/neztrixTON/app/internal/biz/repo"
	"github.com/neztrixTON/app/internal/logx"
)

// RegistryConfig contains participant registry configuration
type RegistryConfig struct {
	// RequireAdmin gates chat creation and participant management on the
	// permission set
	RequireAdmin bool
}

// CreateChatRequest is the input of CreateChat
type CreateChatRequest struct {
	CreatorID     string
	CounterpartID string
	CreatorRole   domain.Role
	Meta          map[string]interface{}
}

// RegistryUsecase manages chats' participants and the permission set
type RegistryUsecase struct {
	chatRepo       repo.ChatRepo
	permissionRepo repo.PermissionRepo
	presenceUC     *PresenceUsecase
	events         repo.EventPublisher
	config         RegistryConfig
	now            func() time.Time
	log            zerolog.Logger
}

// NewRegistryUsecase creates a new registry usecase
func NewRegistryUsecase(
	chatRepo repo.ChatRepo,
	permissionRepo repo.PermissionRepo,
	presenceUC *PresenceUsecase,
	config RegistryConfig,
) *RegistryUsecase {
	return &RegistryUsecase{
		chatRepo:       chatRepo,
		permissionRepo: permissionRepo,
		presenceUC:     presenceUC,
		config:         config,
		now:            time.Now,
		log:            logx.Component("registry"),
	}
}

// SetEventPublisher attaches the live event hub
func (uc *RegistryUsecase) SetEventPublisher(events repo.EventPublisher) {
	uc.events = events
}

// CreateChat creates the chat between creator and counterpart, or returns
// the existing one for the same founding pair (or request id)
func (uc *RegistryUsecase) CreateChat(ctx context.Context, req CreateChatRequest) (string, bool, error) {
	creator := strings.TrimSpace(req.CreatorID)
	counterpart := strings.TrimSpace(req.CounterpartID)
	if creator == "" || counterpart == "" || creator == counterpart {
		return "", false, domain.InvalidParticipants("invalid participants")
	}

	if uc.config.RequireAdmin {
		if err := uc.requirePermission(ctx, creator, "only admin can create chats"); err != nil {
			return "", false, err
		}
	}

	role := req.CreatorRole
	if role == "" {
		role = domain.RoleManager
	}

	chatID := domain.ChatIDFor(creator, counterpart)
	if requestID, ok := req.Meta[domain.MetaRequestID]; ok {
		if s := requestIDString(requestID); s != "" {
			chatID = domain.ChatIDForRequest(s)
		}
	}

	chat := domain.NewChat(chatID, creator, role, counterpart, req.Meta, uc.now())
	created, err := uc.chatRepo.Create(ctx, chat)
	if err != nil {
		return "", false, fmt.Errorf("create chat: %w", err)
	}

	uc.presenceUC.Touch(ctx, creator)

	if created {
		uc.log.Info().Str("chat_id", chatID).Str("creator", creator).Str("role", string(role)).Msg("Chat created")
	}
	return chatID, created, nil
}

// AddParticipant adds userID with role; a no-op if already present
func (uc *RegistryUsecase) AddParticipant(ctx context.Context, chatID, actorID, userID string, role domain.Role) error {
	if chatID == "" {
		return domain.MissingParameter("chatId")
	}
	if userID == "" {
		return domain.MissingParameter("userId")
	}
	if role == "" {
		role = domain.RoleClient
	}

	added := false
	chat, err := uc.chatRepo.Update(ctx, chatID, func(chat *domain.Chat) error {
		if err := uc.authorizeManage(ctx, chat, actorID); err != nil {
			return err
		}
		added = chat.AddParticipant(userID, role, uc.now())
		return nil
	})
	if err != nil {
		return err
	}

	uc.presenceUC.Touch(ctx, actorID)

	if added {
		uc.log.Info().Str("chat_id", chatID).Str("user_id", userID).Str("role", string(role)).Msg("Participant added")
		uc.publish(chat, actorID)
	}
	return nil
}

// RemoveParticipant removes a non-founding participant. Admin rights held
// through this chat go with it; other chats are not affected.
func (uc *RegistryUsecase) RemoveParticipant(ctx context.Context, chatID, actorID, userID string) error {
	if chatID == "" {
		return domain.MissingParameter("chatId")
	}
	if userID == "" {
		return domain.MissingParameter("userId")
	}

	chat, err := uc.chatRepo.Update(ctx, chatID, func(chat *domain.Chat) error {
		if p := chat.FindParticipant(userID); p != nil && p.Founding {
			return domain.InvalidOperation("founding participants cannot be removed")
		}
		if err := uc.authorizeManage(ctx, chat, actorID); err != nil {
			return err
		}
		return chat.RemoveParticipant(userID)
	})
	if err != nil {
		return err
	}

	uc.presenceUC.Touch(ctx, actorID)
	uc.log.Info().Str("chat_id", chatID).Str("user_id", userID).Msg("Participant removed")
	uc.publish(chat, actorID)
	return nil
}

// IsChatAdmin reports whether userID holds an elevated role in chatID
func (uc *RegistryUsecase) IsChatAdmin(ctx context.Context, chatID, userID string) (bool, error) {
	chat, err := uc.chatRepo.Get(ctx, chatID)
	if err != nil {
		return false, fmt.Errorf("get chat: %w", err)
	}
	if chat == nil {
		return false, domain.NotFound("chat")
	}
	return chat.IsAdmin(userID), nil
}

// IsAdmin reports whether userID is in the process-wide permission set
func (uc *RegistryUsecase) IsAdmin(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	ok, err := uc.permissionRepo.Has(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("check permission: %w", err)
	}
	return ok, nil
}

// GrantAdmin adds userID to the permission set; actorID must already be in it
func (uc *RegistryUsecase) GrantAdmin(ctx context.Context, actorID, userID string) error {
	if userID == "" {
		return domain.MissingParameter("userId")
	}
	if err := uc.requirePermission(ctx, actorID, "only admin can grant admin"); err != nil {
		return err
	}
	if err := uc.permissionRepo.Grant(ctx, userID, actorID); err != nil {
		return fmt.Errorf("grant admin: %w", err)
	}
	uc.log.Info().Str("user_id", userID).Str("granted_by", actorID).Msg("Admin granted")
	return nil
}

// RevokeAdmin removes userID from the permission set
func (uc *RegistryUsecase) RevokeAdmin(ctx context.Context, actorID, userID string) error {
	if userID == "" {
		return domain.MissingParameter("userId")
	}
	if err := uc.requirePermission(ctx, actorID, "only admin can revoke admin"); err != nil {
		return err
	}
	if err := uc.permissionRepo.Revoke(ctx, userID); err != nil {
		return fmt.Errorf("revoke admin: %w", err)
	}
	uc.log.Info().Str("user_id", userID).Str("revoked_by", actorID).Msg("Admin revoked")
	return nil
}

// ListAdmins lists the permission set
func (uc *RegistryUsecase) ListAdmins(ctx context.Context) ([]string, error) {
	ids, err := uc.permissionRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return ids, nil
}

// SeedAdmins grants every id in userIDs without an actor check (bootstrap)
func (uc *RegistryUsecase) SeedAdmins(ctx context.Context, userIDs []string) error {
	for _, id := range userIDs {
		if id == "" {
			continue
		}
		if err := uc.permissionRepo.Grant(ctx, id, "config"); err != nil {
			return fmt.Errorf("seed admin %s: %w", id, err)
		}
	}
	return nil
}

// authorizeManage allows permission-set members and admins of the chat
func (uc *RegistryUsecase) authorizeManage(ctx context.Context, chat *domain.Chat, actorID string) error {
	if !uc.config.RequireAdmin {
		return nil
	}
	if actorID != "" && chat.IsAdmin(actorID) {
		return nil
	}
	return uc.requirePermission(ctx, actorID, "only admin can manage participants")
}

// requestIDString renders a meta request id. JSON numbers decode as float64
// and are printed without exponent.
func requestIDString(v interface{}) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(id)
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case json.Number:
		return id.String()
	default:
		return strings.TrimSpace(fmt.Sprint(id))
	}
}

func (uc *RegistryUsecase) requirePermission(ctx context.Context, actorID, msg string) error {
	ok, err := uc.IsAdmin(ctx, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.Forbidden(msg)
	}
	return nil
}

func (uc *RegistryUsecase) publish(chat *domain.Chat, actorID string) {
	if uc.events == nil || chat == nil {
		return
	}
	uc.events.Publish(chat.ParticipantIDs(), domain.Event{
		Type:   domain.EventParticipants,
		ChatID: chat.ID,
		UserID: actorID,
	})
}
