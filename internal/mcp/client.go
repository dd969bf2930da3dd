package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/neztrixTON/app/internal/biz/domain"
)

// Client is the HTTP client for the chatdesk API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx response of the API
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

// SendRequest is the body of a text send
type SendRequest struct {
	ChatID  string `json:"chatId"`
	From    string `json:"from"`
	To      string `json:"to"`
	Text    string `json:"text"`
	ReplyTo string `json:"replyTo,omitempty"`
}

// ============ Chat Operations ============

// ListChats lists the chats of userID
func (c *Client) ListChats(ctx context.Context, userID string) ([]domain.ChatSummary, error) {
	var result struct {
		Chats []domain.ChatSummary `json:"chats"`
	}
	q := url.Values{"userId": {userID}}
	if err := c.get(ctx, "/api/chats?"+q.Encode(), &result); err != nil {
		return nil, err
	}
	return result.Chats, nil
}

// GetMessages fetches the history of chatID as userID, marking it read
func (c *Client) GetMessages(ctx context.Context, chatID, userID string) (*domain.MessagesView, error) {
	var view domain.MessagesView
	q := url.Values{"chatId": {chatID}, "userId": {userID}}
	if err := c.get(ctx, "/api/messages?"+q.Encode(), &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// SendMessage appends a text message
func (c *Client) SendMessage(ctx context.Context, req SendRequest) (*domain.Message, error) {
	var msg domain.Message
	if err := c.post(ctx, "/api/messages/send", req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ============ Presence ============

// Status returns the presence of userID
func (c *Client) Status(ctx context.Context, userID string) (*domain.PresenceStatus, error) {
	var status domain.PresenceStatus
	q := url.Values{"userId": {userID}}
	if err := c.get(ctx, "/api/status?"+q.Encode(), &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Heartbeat marks userID online
func (c *Client) Heartbeat(ctx context.Context, userID string) error {
	return c.post(ctx, "/api/heartbeat", map[string]string{"userId": userID}, nil)
}

// ============ HTTP helpers ============

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, result)
}

func (c *Client) post(ctx context.Context, path string, body interface{}, result interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP %s failed: %w", req.Method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		var apiErr struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
