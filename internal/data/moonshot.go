package data

import (
	"context"
	"fmt"
	"strings"

	"github.com/neztrixTON/app/internal/biz/domain"
	"github.com/neztrixTON/app/internal/biz/repo"
	"github.com/neztrixTON/app/internal/infra/moonshot"
)

// maxDigestMessages bounds the transcript sent to the model
const maxDigestMessages = 20

// summarizer is the part of the Moonshot client the composer needs
type summarizer interface {
	SummarizeUnread(ctx context.Context, chatTitle, transcript string) (string, error)
}

// moonshotComposer writes notification bodies with the Moonshot model
type moonshotComposer struct {
	client      summarizer
	placeholder string
}

// NewMoonshotComposer creates a digest composer; returns nil when client is nil
func NewMoonshotComposer(client *moonshot.Client, attachmentPlaceholder string) repo.DigestComposer {
	if client == nil {
		return nil
	}
	return &moonshotComposer{client: client, placeholder: attachmentPlaceholder}
}

// Compose summarizes the unread backlog
func (c *moonshotComposer) Compose(ctx context.Context, chatTitle string, unread []domain.Message) (string, error) {
	return c.client.SummarizeUnread(ctx, chatTitle, formatTranscript(unread, c.placeholder))
}

func formatTranscript(messages []domain.Message, placeholder string) string {
	if len(messages) > maxDigestMessages {
		messages = messages[len(messages)-maxDigestMessages:]
	}

	var sb strings.Builder
	for _, m := range messages {
		sb.WriteString(fmt.Sprintf("[%s] %s: %s\n", m.Timestamp.Format("15:04"), m.From, m.Body(placeholder)))
	}
	return sb.String()
}
