package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/neztrixTON/app/internal/infra/feishu"
)

// Sends one notification post to a user to check Feishu credentials and ids.
func main() {
	_ = godotenv.Load()

	appID := os.Getenv("FEISHU_APP_ID")
	appSecret := os.Getenv("FEISHU_APP_SECRET")
	if appID == "" || appSecret == "" {
		fmt.Println("Error: FEISHU_APP_ID and FEISHU_APP_SECRET must be set")
		os.Exit(1)
	}

	if len(os.Args) < 3 {
		fmt.Println("Usage: send-alert <user_id> <message> [title]")
		os.Exit(1)
	}

	userID := os.Args[1]
	message := os.Args[2]

	idType := os.Getenv("FEISHU_RECEIVE_ID_TYPE")
	if idType == "" {
		idType = feishu.ReceiveIDTypeOpenID
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client := feishu.NewClient(appID, appSecret)
	var err error
	if len(os.Args) > 3 {
		err = client.SendPost(ctx, idType, userID, os.Args[3], message)
	} else {
		err = client.SendText(ctx, idType, userID, message)
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Alert sent successfully!")
}
