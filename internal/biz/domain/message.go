package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message is one ledger entry. At least one of Text/AttachmentRef is set.
type Message struct {
	ID            string    `json:"id"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	Text          string    `json:"text,omitempty"`
	AttachmentRef string    `json:"attachmentRef,omitempty"`
	Timestamp     time.Time `json:"ts"`
	Read          bool      `json:"read"`
	ReplyTo       string    `json:"replyTo,omitempty"`
}

// NewMessageID returns a unique id ordered by creation millisecond, with a
// random tiebreaker for messages created within the same millisecond
func NewMessageID(now time.Time) string {
	return fmt.Sprintf("%d_%s", now.UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

// Validate checks the payload invariants of a message about to be appended
func (m *Message) Validate() error {
	if m.From == "" {
		return InvalidPayload("from is required")
	}
	if m.To == "" {
		return InvalidPayload("to is required")
	}
	if strings.TrimSpace(m.Text) == "" && m.AttachmentRef == "" {
		return InvalidPayload("text or attachment is required")
	}
	return nil
}

// HasAttachment reports whether the message carries an attachment
func (m *Message) HasAttachment() bool {
	return m.AttachmentRef != ""
}

// IsUnreadFor reports whether the message is addressed to userID and unread
func (m *Message) IsUnreadFor(userID string) bool {
	return m.To == userID && !m.Read
}

// Body returns the text, or placeholder for attachment-only messages
func (m *Message) Body(placeholder string) string {
	if strings.TrimSpace(m.Text) != "" {
		return m.Text
	}
	if m.HasAttachment() {
		return placeholder
	}
	return ""
}
