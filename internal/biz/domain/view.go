package domain

// ChatSummary is one row of a user's chat list
type ChatSummary struct {
	ChatID             string `json:"chatId"`
	Title              string `json:"title"`
	Online             bool   `json:"online"`
	UnreadCount        int    `json:"unreadCount"`
	LastMessagePreview string `json:"lastMessage"`
	IsAdmin            bool   `json:"isAdmin"`
}

// MessageView is a ledger entry as returned to a reader
type MessageView struct {
	Message
	ReplyPreview string `json:"replyPreview,omitempty"`
}

// ChatMeta describes the chat alongside a message fetch
type ChatMeta struct {
	ChatID       string                 `json:"chatId"`
	Participants []Participant          `json:"participants"`
	IsAdmin      bool                   `json:"isAdmin"`
	Meta         map[string]interface{} `json:"meta,omitempty"`
}

// MessagesView is the result of a message fetch
type MessagesView struct {
	Messages []MessageView `json:"messages"`
	Meta     ChatMeta      `json:"meta"`
}

// EventType names a live chat event
type EventType string

const (
	EventMessageCreated EventType = "message_created"
	EventMessagesRead   EventType = "messages_read"
	EventParticipants   EventType = "participants_changed"
)

// Event is pushed to connected participants
type Event struct {
	Type    EventType `json:"type"`
	ChatID  string    `json:"chatId"`
	UserID  string    `json:"userId,omitempty"`
	Message *Message  `json:"message,omitempty"`
}
