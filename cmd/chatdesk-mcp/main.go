package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/neztrixTON/app/internal/logx"
	deskapi "github.com/neztrixTON/app/internal/mcp"
	"github.com/neztrixTON/app/mcpserver"
)

// Stdio MCP server relaying tool calls to a running chatdesk API.
// stdout carries the protocol; logs go to stderr.
func main() {
	_ = godotenv.Load()
	logx.Setup(os.Getenv("LOG_LEVEL"), false)

	apiURL := os.Getenv("CHATDESK_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:3000"
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := mcpserver.NewServer(deskapi.NewClient(apiURL))
	log.Info().Str("api", apiURL).Msg("chatdesk MCP server starting")
	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("MCP server error")
	}
}
