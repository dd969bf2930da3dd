package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/neztrixTON/app/internal/biz/domain"
)

func TestDirectoryUsecase_ReadFlow(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(RegistryConfig{}, NotifyConfig{})
	chatID := e.createChat(ctx)
	e.send(ctx, chatID, "U1", "U2", "hi")

	list, err := e.directoryUC.ListChats(ctx, "U2")
	if err != nil {
		t.Fatalf("ListChats failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("Expected 1 chat, got %d", len(list))
	}
	if list[0].UnreadCount != 1 || list[0].LastMessagePreview != "hi" {
		t.Errorf("Unexpected summary %+v", list[0])
	}
	if !list[0].Online {
		t.Error("Expected U1 online after sending")
	}
	if list[0].IsAdmin {
		t.Error("Expected client not to be admin")
	}

	view, err := e.directoryUC.GetMessages(ctx, chatID, "U2")
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(view.Messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(view.Messages))
	}
	if len(view.Meta.Participants) != 2 {
		t.Errorf("Expected 2 participants in meta, got %d", len(view.Meta.Participants))
	}

	list, _ = e.directoryUC.ListChats(ctx, "U2")
	if list[0].UnreadCount != 0 {
		t.Errorf("Expected 0 unread after fetch, got %d", list[0].UnreadCount)
	}
}

func TestDirectoryUsecase_OwnMessagePrefix(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(RegistryConfig{}, NotifyConfig{})
	chatID := e.createChat(ctx)
	e.send(ctx, chatID, "U1", "U2", "hi")

	list, _ := e.directoryUC.ListChats(ctx, "U1")
	if list[0].LastMessagePreview != "You: hi" {
		t.Errorf("Expected 'You: hi', got '%s'", list[0].LastMessagePreview)
	}
	if !list[0].IsAdmin {
		t.Error("Expected manager to be admin")
	}
}

func TestDirectoryUsecase_AttachmentPlaceholder(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(RegistryConfig{}, NotifyConfig{})
	chatID := e.createChat(ctx)

	_, err := e.ledgerUC.SendAttachment(ctx, SendRequest{ChatID: chatID, From: "U1", To: "U2"}, "photo.jpg", strings.NewReader("jpeg"))
	if err != nil {
		t.Fatalf("SendAttachment failed: %v", err)
	}

	list, _ := e.directoryUC.ListChats(ctx, "U2")
	if list[0].LastMessagePreview != "[file]" {
		t.Errorf("Expected '[file]', got '%s'", list[0].LastMessagePreview)
	}
}

func TestDirectoryUsecase_DanglingReply(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(RegistryConfig{}, NotifyConfig{})
	chatID := e.createChat(ctx)

	m1 := e.send(ctx, chatID, "U1", "U2", "original")
	m2, err := e.ledgerUC.SendText(ctx, SendRequest{ChatID: chatID, From: "U2", To: "U1", Text: "reply", ReplyTo: m1.ID})
	if err != nil {
		t.Fatalf("SendText failed: %v", err)
	}

	view, _ := e.directoryUC.GetMessages(ctx, chatID, "U1")
	if view.Messages[1].ReplyPreview != "original" {
		t.Errorf("Expected reply preview 'original', got '%s'", view.Messages[1].ReplyPreview)
	}

	e.chats.corrupt(chatID, func(chat *domain.Chat) {
		chat.Messages = chat.Messages[1:]
	})

	view, err = e.directoryUC.GetMessages(ctx, chatID, "U1")
	if err != nil {
		t.Fatalf("Expected dangling reply to be tolerated, got %v", err)
	}
	if len(view.Messages) != 1 || view.Messages[0].ID != m2.ID {
		t.Fatalf("Expected only m2, got %+v", view.Messages)
	}
	if view.Messages[0].ReplyTo != m1.ID {
		t.Error("Expected replyTo kept")
	}
	if view.Messages[0].ReplyPreview != "message not found" {
		t.Errorf("Expected 'message not found', got '%s'", view.Messages[0].ReplyPreview)
	}
}

func TestDirectoryUsecase_OnlineAnyOther(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(RegistryConfig{}, NotifyConfig{})
	chatID := e.createChat(ctx)
	e.registryUC.AddParticipant(ctx, chatID, "U1", "U3", domain.RoleMaster)

	e.advance(time.Minute)
	list, _ := e.directoryUC.ListChats(ctx, "U2")
	if list[0].Online {
		t.Fatal("Expected nobody else online")
	}

	e.presenceUC.Heartbeat(ctx, "U3")
	list, _ = e.directoryUC.ListChats(ctx, "U2")
	if !list[0].Online {
		t.Error("Expected online when any other participant is online")
	}

	// The reader's own heartbeat does not count
	e.advance(time.Minute)
	list, _ = e.directoryUC.ListChats(ctx, "U2")
	if list[0].Online {
		t.Error("Expected offline when only the reader is online")
	}
}

func TestDirectoryUsecase_Errors(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(RegistryConfig{}, NotifyConfig{})

	if _, err := e.directoryUC.ListChats(ctx, ""); !domain.IsKind(err, domain.KindMissingParameter) {
		t.Errorf("Expected MissingParameter, got %v", err)
	}
	if _, err := e.directoryUC.GetMessages(ctx, "c", ""); !domain.IsKind(err, domain.KindMissingParameter) {
		t.Errorf("Expected MissingParameter, got %v", err)
	}
	if _, err := e.directoryUC.GetMessages(ctx, "missing", "U1"); !domain.IsKind(err, domain.KindNotFound) {
		t.Errorf("Expected NotFound, got %v", err)
	}
}

func TestDirectoryUsecase_DefaultTitleAndMetaTitle(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(RegistryConfig{}, NotifyConfig{})
	e.createChat(ctx)
	e.registryUC.CreateChat(ctx, CreateChatRequest{
		CreatorID:     "U1",
		CounterpartID: "U5",
		Meta:          map[string]interface{}{"title": "Kitchen repair"},
	})

	list, _ := e.directoryUC.ListChats(ctx, "U1")
	if len(list) != 2 {
		t.Fatalf("Expected 2 chats, got %d", len(list))
	}
	if list[0].Title != "Chat with U2" {
		t.Errorf("Expected default title, got '%s'", list[0].Title)
	}
	if list[1].Title != "Kitchen repair" {
		t.Errorf("Expected meta title, got '%s'", list[1].Title)
	}
}
