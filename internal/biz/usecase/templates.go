package usecase

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/neztrixTON/app/internal/biz/domain"
)

// TemplateConfig contains the user-facing text the engine renders
type TemplateConfig struct {
	AttachmentPlaceholder string // Preview of attachment-only messages
	OwnMessagePrefix      string // Prefix when the reader sent the last message
	MissingReply          string // Preview of a reply whose target is gone
	DefaultTitle          string // Chat title when meta has none (supports {{other}})
	NotifyTitle           string // Push title (supports {{title}}, {{count}})
	NotifyBody            string // Push body (supports {{title}}, {{count}}, {{from}}, {{preview}})
	PreviewLength         int    // Max runes of a rendered preview
}

// DefaultTemplateConfig is used for every empty field
var DefaultTemplateConfig = TemplateConfig{
	AttachmentPlaceholder: "[file]",
	OwnMessagePrefix:      "You: ",
	MissingReply:          "message not found",
	DefaultTitle:          "Chat with {{other}}",
	NotifyTitle:           "{{title}}",
	NotifyBody:            "{{count}} unread message(s) from {{from}}: {{preview}}",
	PreviewLength:         80,
}

func (c TemplateConfig) withDefaults() TemplateConfig {
	d := DefaultTemplateConfig
	if c.AttachmentPlaceholder == "" {
		c.AttachmentPlaceholder = d.AttachmentPlaceholder
	}
	if c.OwnMessagePrefix == "" {
		c.OwnMessagePrefix = d.OwnMessagePrefix
	}
	if c.MissingReply == "" {
		c.MissingReply = d.MissingReply
	}
	if c.DefaultTitle == "" {
		c.DefaultTitle = d.DefaultTitle
	}
	if c.NotifyTitle == "" {
		c.NotifyTitle = d.NotifyTitle
	}
	if c.NotifyBody == "" {
		c.NotifyBody = d.NotifyBody
	}
	if c.PreviewLength <= 0 {
		c.PreviewLength = d.PreviewLength
	}
	return c
}

// ChatTitle returns meta.title, or the default title naming the first other participant
func (c TemplateConfig) ChatTitle(chat *domain.Chat, userID string) string {
	if title := chat.MetaString(domain.MetaTitle); title != "" {
		return title
	}
	others := chat.OtherParticipants(userID)
	other := ""
	if len(others) > 0 {
		other = others[0]
	}
	return strings.ReplaceAll(c.DefaultTitle, "{{other}}", other)
}

// Preview renders a message for a chat list or push body
func (c TemplateConfig) Preview(m *domain.Message) string {
	return truncate(m.Body(c.AttachmentPlaceholder), c.PreviewLength)
}

// LastMessagePreview renders the chat-list preview as seen by userID
func (c TemplateConfig) LastMessagePreview(chat *domain.Chat, userID string) string {
	last := chat.LastMessage()
	if last == nil {
		return ""
	}
	preview := c.Preview(last)
	if last.From == userID {
		return c.OwnMessagePrefix + preview
	}
	return preview
}

// ReplyPreview renders the message a reply points to
func (c TemplateConfig) ReplyPreview(chat *domain.Chat, replyTo string) string {
	if replyTo == "" {
		return ""
	}
	target := chat.FindMessage(replyTo)
	if target == nil {
		return c.MissingReply
	}
	return c.Preview(target)
}

// Notification renders the push for userID's unread backlog
func (c TemplateConfig) Notification(chat *domain.Chat, userID string, unread []domain.Message) domain.Notification {
	title := c.ChatTitle(chat, userID)
	count := strconv.Itoa(len(unread))
	from, preview := "", ""
	if len(unread) > 0 {
		last := unread[len(unread)-1]
		from = last.From
		preview = c.Preview(&last)
	}

	r := strings.NewReplacer(
		"{{title}}", title,
		"{{count}}", count,
		"{{from}}", from,
		"{{preview}}", preview,
	)
	return domain.Notification{
		ChatID:      chat.ID,
		UserID:      userID,
		Title:       r.Replace(c.NotifyTitle),
		Body:        r.Replace(c.NotifyBody),
		UnreadCount: len(unread),
	}
}

func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
