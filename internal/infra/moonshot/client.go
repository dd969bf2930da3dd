package moonshot

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	moonshotBaseURL = "https://api.moonshot.cn/v1"
)

// Client is the Moonshot API client using OpenAI-compatible interface
type Client struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewClient creates a new Moonshot client
func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = "moonshot-v1-8k"
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = moonshotBaseURL

	return &Client{
		client:  openai.NewClientWithConfig(config),
		model:   model,
		timeout: 15 * time.Second,
	}
}

// NewClientWithBaseURL points the client at another OpenAI-compatible endpoint
func NewClientWithBaseURL(apiKey, model, baseURL string) *Client {
	c := NewClient(apiKey, model)
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL
	c.client = openai.NewClientWithConfig(config)
	return c
}

// Chat sends a message and returns the response
func (c *Client) Chat(ctx context.Context, systemPrompt, userMessage string, maxTokens int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
		Temperature: 0.3,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// DigestPrompt instructs the model to write a push notification body
const DigestPrompt = `You write push notification texts for a customer support chat.

Requirements:
1. Summarize the unread messages in one or two short sentences
2. Mention who wrote and what they need
3. Keep it under 140 characters
4. Output the text directly, no prefix or quotes`

// SummarizeUnread condenses an unread backlog into a notification body
func (c *Client) SummarizeUnread(ctx context.Context, chatTitle, transcript string) (string, error) {
	if transcript == "" {
		return "", nil
	}
	userMsg := fmt.Sprintf("## Chat\n%s\n\n## Unread messages\n%s", chatTitle, transcript)
	return c.Chat(ctx, DigestPrompt, userMsg, 120)
}
