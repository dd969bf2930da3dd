package domain

import (
	"testing"
	"time"
)

func newTestChat() *Chat {
	return NewChat(ChatIDFor("u1", "u2"), "u1", RoleManager, "u2", nil, time.Now())
}

func TestChatIDFor_OrderIndependent(t *testing.T) {
	if ChatIDFor("a", "b") != ChatIDFor("b", "a") {
		t.Error("Expected chat id to be order independent")
	}
	if ChatIDFor("100", "20") != "100_20" {
		t.Errorf("Expected '100_20', got '%s'", ChatIDFor("100", "20"))
	}
}

func TestNewChat_FoundingParticipants(t *testing.T) {
	chat := NewChat("c1", "u1", RoleManager, "u2", map[string]interface{}{"title": "Order 7"}, time.Now())

	if len(chat.Participants) != 2 {
		t.Fatalf("Expected 2 participants, got %d", len(chat.Participants))
	}
	if chat.Participants[0].Role != RoleManager || !chat.Participants[0].Founding {
		t.Error("Expected creator to be founding manager")
	}
	if chat.Participants[1].Role != RoleClient || !chat.Participants[1].Founding {
		t.Error("Expected counterpart to be founding client")
	}
	if chat.MetaString(MetaTitle) != "Order 7" {
		t.Errorf("Expected title meta to be kept, got '%s'", chat.MetaString(MetaTitle))
	}
	if _, ok := chat.Meta[MetaCreatedAt]; !ok {
		t.Error("Expected createdAt meta to be stamped")
	}
}

func TestChat_AddParticipant_Idempotent(t *testing.T) {
	chat := newTestChat()

	if !chat.AddParticipant("u3", RoleMaster, time.Now()) {
		t.Error("Expected first add to succeed")
	}
	if chat.AddParticipant("u3", RoleConsultant, time.Now()) {
		t.Error("Expected second add to be a no-op")
	}
	if len(chat.Participants) != 3 {
		t.Fatalf("Expected 3 participants, got %d", len(chat.Participants))
	}
	if chat.FindParticipant("u3").Role != RoleMaster {
		t.Error("Expected the original role to be kept")
	}
}

func TestChat_RemoveParticipant_FounderRejected(t *testing.T) {
	chat := newTestChat()

	for _, founder := range []string{"u1", "u2"} {
		err := chat.RemoveParticipant(founder)
		if !IsKind(err, KindInvalidOperation) {
			t.Errorf("Expected InvalidOperation removing %s, got %v", founder, err)
		}
	}
	if len(chat.Participants) != 2 {
		t.Errorf("Expected participant list untouched, got %d", len(chat.Participants))
	}
}

func TestChat_RemoveParticipant_ClearsNotifyState(t *testing.T) {
	chat := newTestChat()
	chat.AddParticipant("u3", RoleMaster, time.Now())
	chat.Append(Message{ID: "m1", From: "u1", To: "u3", Text: "hi"})

	if err := chat.RemoveParticipant("u3"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if chat.HasParticipant("u3") {
		t.Error("Expected u3 to be removed")
	}
	if _, ok := chat.Notify["u3"]; ok {
		t.Error("Expected notify entry to be cleared")
	}
	if chat.IsAdmin("u3") {
		t.Error("Expected removed user to lose admin in this chat")
	}
}

func TestChat_RemoveParticipant_Unknown(t *testing.T) {
	chat := newTestChat()
	if err := chat.RemoveParticipant("ghost"); !IsKind(err, KindNotFound) {
		t.Errorf("Expected NotFound, got %v", err)
	}
}

func TestChat_IsAdmin_PerChatRole(t *testing.T) {
	chat := newTestChat()
	chat.AddParticipant("u3", RoleConsultant, time.Now())
	chat.AddParticipant("u4", Role("observer"), time.Now())

	if !chat.IsAdmin("u1") {
		t.Error("Expected manager to be admin")
	}
	if chat.IsAdmin("u2") {
		t.Error("Expected client not to be admin")
	}
	if !chat.IsAdmin("u3") {
		t.Error("Expected consultant to be admin")
	}
	if chat.IsAdmin("u4") {
		t.Error("Expected unknown role not to be admin")
	}
	if chat.IsAdmin("nobody") {
		t.Error("Expected non participant not to be admin")
	}
}

func TestChat_MarkRead_Idempotent(t *testing.T) {
	chat := newTestChat()
	chat.Append(Message{ID: "m1", From: "u1", To: "u2", Text: "one"})
	chat.Append(Message{ID: "m2", From: "u1", To: "u2", Text: "two"})
	chat.Append(Message{ID: "m3", From: "u2", To: "u1", Text: "three"})

	if chat.UnreadCount("u2") != 2 {
		t.Fatalf("Expected 2 unread, got %d", chat.UnreadCount("u2"))
	}

	if changed := chat.MarkRead("u2"); changed != 2 {
		t.Errorf("Expected 2 changed, got %d", changed)
	}
	if chat.UnreadCount("u2") != 0 {
		t.Errorf("Expected 0 unread after read, got %d", chat.UnreadCount("u2"))
	}
	if changed := chat.MarkRead("u2"); changed != 0 {
		t.Errorf("Expected second read to change nothing, got %d", changed)
	}
	if chat.UnreadCount("u1") != 1 {
		t.Errorf("Expected u1's unread untouched, got %d", chat.UnreadCount("u1"))
	}
}

func TestChat_Append_KeepsInsertionOrder(t *testing.T) {
	chat := newTestChat()
	now := time.Now()
	chat.Append(Message{ID: "late", From: "u1", To: "u2", Text: "a", Timestamp: now})
	chat.Append(Message{ID: "early", From: "u1", To: "u2", Text: "b", Timestamp: now.Add(-time.Hour)})

	if chat.Messages[0].ID != "late" || chat.Messages[1].ID != "early" {
		t.Error("Expected ledger to keep insertion order regardless of timestamp")
	}
	if chat.LastMessage().ID != "early" {
		t.Errorf("Expected last message 'early', got '%s'", chat.LastMessage().ID)
	}
}

func TestMessage_Validate(t *testing.T) {
	cases := []struct {
		name string
		msg  Message
		ok   bool
	}{
		{"text", Message{From: "a", To: "b", Text: "hi"}, true},
		{"attachment only", Message{From: "a", To: "b", AttachmentRef: "/files/x.png"}, true},
		{"blank text", Message{From: "a", To: "b", Text: "   "}, false},
		{"empty", Message{From: "a", To: "b"}, false},
		{"no sender", Message{To: "b", Text: "hi"}, false},
	}

	for _, tc := range cases {
		err := tc.msg.Validate()
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && !IsKind(err, KindInvalidPayload) {
			t.Errorf("%s: expected InvalidPayload, got %v", tc.name, err)
		}
	}
}

func TestNewMessageID_Unique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewMessageID(now)
		if seen[id] {
			t.Fatalf("Duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestMessage_Body(t *testing.T) {
	attachment := Message{AttachmentRef: "/files/a.pdf"}
	if attachment.Body("[file]") != "[file]" {
		t.Errorf("Expected placeholder, got '%s'", attachment.Body("[file]"))
	}

	captioned := Message{AttachmentRef: "/files/a.pdf", Text: "invoice"}
	if captioned.Body("[file]") != "invoice" {
		t.Errorf("Expected caption, got '%s'", captioned.Body("[file]"))
	}
}
