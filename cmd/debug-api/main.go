package main

import (
	"context"
	"fmt"
	"os"
	"time"

	deskapi "github.com/neztrixTON/app/internal/mcp"
)

// Prints a user's chat list and, optionally, one chat's history.
// Fetching the history marks it read for that user.
func main() {
	apiURL := os.Getenv("CHATDESK_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:3000"
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: debug-api <user_id> [chat_id]")
		os.Exit(1)
	}
	userID := os.Args[1]

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	client := deskapi.NewClient(apiURL)

	status, err := client.Status(ctx, userID)
	if err != nil {
		fmt.Printf("Status failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("User %s online=%v\n\n", userID, status.Online)

	chats, err := client.ListChats(ctx, userID)
	if err != nil {
		fmt.Printf("ListChats failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("=== %d chats ===\n", len(chats))
	for i, c := range chats {
		fmt.Printf("  %d. %s [%s] unread=%d online=%v admin=%v: %s\n",
			i+1, c.Title, c.ChatID, c.UnreadCount, c.Online, c.IsAdmin, c.LastMessagePreview)
	}

	if len(os.Args) < 3 {
		return
	}

	view, err := client.GetMessages(ctx, os.Args[2], userID)
	if err != nil {
		fmt.Printf("GetMessages failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\n=== %d messages in %s ===\n", len(view.Messages), view.Meta.ChatID)
	for i, m := range view.Messages {
		body := m.Body("[file]")
		if len(body) > 50 {
			body = body[:50] + "..."
		}
		if m.ReplyPreview != "" {
			body = "(re: " + m.ReplyPreview + ") " + body
		}
		fmt.Printf("  %d. [%s] %s -> %s: %s\n", i+1, m.Timestamp.Local().Format("15:04:05"), m.From, m.To, body)
	}
}
