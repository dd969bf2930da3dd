package data

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/neztrixTON/app/internal/biz/domain"
)

type fakeSender struct {
	idType, id, title, text string
	err                     error
}

func (f *fakeSender) SendPost(ctx context.Context, receiveIDType, receiveID, title, text string) error {
	f.idType, f.id, f.title, f.text = receiveIDType, receiveID, title, text
	return f.err
}

func TestFeishuNotifier_Notify(t *testing.T) {
	sender := &fakeSender{}
	n := &feishuNotifier{client: sender, receiveIDType: "open_id"}

	err := n.Notify(context.Background(), domain.Notification{
		ChatID: "c1", UserID: "ou_123", Title: "Order 7", Body: "2 unread",
	})
	if err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if sender.idType != "open_id" || sender.id != "ou_123" {
		t.Errorf("Unexpected target %s/%s", sender.idType, sender.id)
	}
	if sender.title != "Order 7" || sender.text != "2 unread" {
		t.Errorf("Unexpected content %q %q", sender.title, sender.text)
	}

	sender.err = errors.New("rate limited")
	if err := n.Notify(context.Background(), domain.Notification{UserID: "ou_123"}); err == nil {
		t.Error("Expected transport error to propagate")
	}
}

type fakeSummarizer struct {
	transcript string
}

func (f *fakeSummarizer) SummarizeUnread(ctx context.Context, chatTitle, transcript string) (string, error) {
	f.transcript = transcript
	return "digest of " + chatTitle, nil
}

func TestMoonshotComposer_Compose(t *testing.T) {
	s := &fakeSummarizer{}
	c := &moonshotComposer{client: s, placeholder: "[file]"}

	at := time.Date(2026, 1, 1, 9, 30, 0, 0, time.UTC)
	body, err := c.Compose(context.Background(), "Order 7", []domain.Message{
		{From: "u1", Text: "hello", Timestamp: at},
		{From: "u1", AttachmentRef: "/files/a.png", Timestamp: at},
	})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if body != "digest of Order 7" {
		t.Errorf("Unexpected body '%s'", body)
	}
	if !strings.Contains(s.transcript, "[09:30] u1: hello") || !strings.Contains(s.transcript, "u1: [file]") {
		t.Errorf("Unexpected transcript %q", s.transcript)
	}
}

func TestFormatTranscript_KeepsNewest(t *testing.T) {
	var msgs []domain.Message
	for i := 0; i < maxDigestMessages+5; i++ {
		msgs = append(msgs, domain.Message{From: "u1", Text: "x"})
	}
	msgs[len(msgs)-1].Text = "newest"

	out := formatTranscript(msgs, "[file]")
	if strings.Count(out, "\n") != maxDigestMessages {
		t.Errorf("Expected %d lines, got %d", maxDigestMessages, strings.Count(out, "\n"))
	}
	if !strings.Contains(out, "newest") {
		t.Error("Expected newest message kept")
	}
}

func TestNewMoonshotComposer_NilClient(t *testing.T) {
	if NewMoonshotComposer(nil, "[file]") != nil {
		t.Error("Expected nil composer without client")
	}
}
