package mcpserver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/neztrixTON/app/internal/biz/domain"
	deskapi "github.com/neztrixTON/app/internal/mcp"
)

// ChatdeskMCPServer exposes the chat API as MCP tools
type ChatdeskMCPServer struct {
	server *mcp.Server
	client *deskapi.Client
}

// NewServer creates a new chatdesk MCP server backed by client
func NewServer(client *deskapi.Client) *ChatdeskMCPServer {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "chatdesk-tools",
		Version: "v1.0.0",
	}, nil)

	s := &ChatdeskMCPServer{
		server: server,
		client: client,
	}
	s.registerTools()
	return s
}

func (s *ChatdeskMCPServer) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "chatdesk_list_chats",
		Description: "List the chats of a user with unread counts, last message previews and whether the other side is online.",
	}, s.handleListChats)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "chatdesk_get_messages",
		Description: "Get the full history of a chat as the given user. Fetching marks the user's unread messages as read.",
	}, s.handleGetMessages)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "chatdesk_send_message",
		Description: "Send a text message into a chat. The addressee gets a push notification if they stay unread.",
	}, s.handleSendMessage)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "chatdesk_presence",
		Description: "Check whether a user is online and when they were last seen.",
	}, s.handlePresence)
}

// ListChatsInput names the user whose chats to list
type ListChatsInput struct {
	UserID string `json:"user_id" jsonschema:"The user whose chats to list"`
}

// ListChatsOutput contains the chat summaries
type ListChatsOutput struct {
	Chats []domain.ChatSummary `json:"chats,omitempty"`
	Error string               `json:"error,omitempty"`
}

func (s *ChatdeskMCPServer) handleListChats(ctx context.Context, req *mcp.CallToolRequest, input ListChatsInput) (*mcp.CallToolResult, ListChatsOutput, error) {
	if input.UserID == "" {
		return nil, ListChatsOutput{Error: "user_id is required"}, nil
	}
	chats, err := s.client.ListChats(ctx, input.UserID)
	if err != nil {
		return nil, ListChatsOutput{Error: err.Error()}, nil
	}
	return nil, ListChatsOutput{Chats: chats}, nil
}

// GetMessagesInput selects a chat and the reading user
type GetMessagesInput struct {
	ChatID string `json:"chat_id" jsonschema:"The chat to read"`
	UserID string `json:"user_id" jsonschema:"The user reading the chat"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Only return the newest messages (default all)"`
}

// MessageItem is a flattened ledger entry
type MessageItem struct {
	ID            string `json:"id"`
	From          string `json:"from"`
	To            string `json:"to"`
	Text          string `json:"text,omitempty"`
	AttachmentRef string `json:"attachment_ref,omitempty"`
	Timestamp     string `json:"ts"`
	Read          bool   `json:"read"`
	ReplyTo       string `json:"reply_to,omitempty"`
	ReplyPreview  string `json:"reply_preview,omitempty"`
}

// GetMessagesOutput contains the messages and a rendered transcript
type GetMessagesOutput struct {
	Messages     []MessageItem `json:"messages,omitempty"`
	Participants []string      `json:"participants,omitempty"`
	IsAdmin      bool          `json:"is_admin"`
	Transcript   string        `json:"transcript,omitempty"`
	Error        string        `json:"error,omitempty"`
}

func (s *ChatdeskMCPServer) handleGetMessages(ctx context.Context, req *mcp.CallToolRequest, input GetMessagesInput) (*mcp.CallToolResult, GetMessagesOutput, error) {
	if input.ChatID == "" || input.UserID == "" {
		return nil, GetMessagesOutput{Error: "chat_id and user_id are required"}, nil
	}
	view, err := s.client.GetMessages(ctx, input.ChatID, input.UserID)
	if err != nil {
		return nil, GetMessagesOutput{Error: err.Error()}, nil
	}

	messages := view.Messages
	if input.Limit > 0 && len(messages) > input.Limit {
		messages = messages[len(messages)-input.Limit:]
	}

	out := GetMessagesOutput{
		Messages:     make([]MessageItem, 0, len(messages)),
		Participants: make([]string, 0, len(view.Meta.Participants)),
		IsAdmin:      view.Meta.IsAdmin,
		Transcript:   FormatTranscript(messages),
	}
	for _, m := range messages {
		out.Messages = append(out.Messages, MessageItem{
			ID:            m.ID,
			From:          m.From,
			To:            m.To,
			Text:          m.Text,
			AttachmentRef: m.AttachmentRef,
			Timestamp:     m.Timestamp.UTC().Format(time.RFC3339),
			Read:          m.Read,
			ReplyTo:       m.ReplyTo,
			ReplyPreview:  m.ReplyPreview,
		})
	}
	for _, p := range view.Meta.Participants {
		out.Participants = append(out.Participants, fmt.Sprintf("%s (%s)", p.UserID, p.Role))
	}
	return nil, out, nil
}

// SendMessageInput is the input for chatdesk_send_message
type SendMessageInput struct {
	ChatID  string `json:"chat_id" jsonschema:"The chat to send into"`
	From    string `json:"from" jsonschema:"The sending user"`
	To      string `json:"to" jsonschema:"The addressed user"`
	Text    string `json:"text" jsonschema:"The message text"`
	ReplyTo string `json:"reply_to,omitempty" jsonschema:"Id of the message being replied to"`
}

// SendMessageOutput is the output for chatdesk_send_message
type SendMessageOutput struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

func (s *ChatdeskMCPServer) handleSendMessage(ctx context.Context, req *mcp.CallToolRequest, input SendMessageInput) (*mcp.CallToolResult, SendMessageOutput, error) {
	msg, err := s.client.SendMessage(ctx, deskapi.SendRequest{
		ChatID:  input.ChatID,
		From:    input.From,
		To:      input.To,
		Text:    input.Text,
		ReplyTo: input.ReplyTo,
	})
	if err != nil {
		return nil, SendMessageOutput{Success: false, Error: err.Error()}, nil
	}
	return nil, SendMessageOutput{Success: true, MessageID: msg.ID}, nil
}

// PresenceInput names the user to check
type PresenceInput struct {
	UserID string `json:"user_id" jsonschema:"The user to check"`
}

// PresenceOutput is the presence of a user
type PresenceOutput struct {
	Online   bool   `json:"online"`
	LastSeen string `json:"last_seen,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (s *ChatdeskMCPServer) handlePresence(ctx context.Context, req *mcp.CallToolRequest, input PresenceInput) (*mcp.CallToolResult, PresenceOutput, error) {
	if input.UserID == "" {
		return nil, PresenceOutput{Error: "user_id is required"}, nil
	}
	status, err := s.client.Status(ctx, input.UserID)
	if err != nil {
		return nil, PresenceOutput{Error: err.Error()}, nil
	}
	out := PresenceOutput{Online: status.Online}
	if status.LastSeen != nil {
		out.LastSeen = status.LastSeen.UTC().Format(time.RFC3339)
	}
	return nil, out, nil
}

// Run starts the MCP server with stdio transport
func (s *ChatdeskMCPServer) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// GetServer returns the underlying MCP server
func (s *ChatdeskMCPServer) GetServer() *mcp.Server {
	return s.server
}

// FormatTranscript renders messages one per line for a model prompt
func FormatTranscript(messages []domain.MessageView) string {
	if len(messages) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("[Chat messages]\n")
	for _, m := range messages {
		body := m.Body("[file]")
		if m.ReplyPreview != "" {
			body = fmt.Sprintf("(re: %s) %s", m.ReplyPreview, body)
		}
		fmt.Fprintf(&b, "%s -> %s: %s\n", m.From, m.To, body)
	}
	b.WriteString("[/Chat messages]\n")
	return b.String()
}
