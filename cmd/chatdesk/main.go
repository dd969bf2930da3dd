package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/neztrixTON/app/internal/api"
	"github.com/neztrixTON/app/internal/biz"
	"github.com/neztrixTON/app/internal/biz/repo"
	"github.com/neztrixTON/app/internal/conf"
	"github.com/neztrixTON/app/internal/data"
	"github.com/neztrixTON/app/internal/infra/feishu"
	"github.com/neztrixTON/app/internal/infra/moonshot"
	"github.com/neztrixTON/app/internal/logx"
	"github.com/neztrixTON/app/internal/service"
)

func main() {
	// Load .env file
	envErr := godotenv.Load()

	// Load configuration
	cfg, err := conf.LoadFromEnv()
	if err != nil {
		logx.Setup("info", false)
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	logx.Setup(cfg.Log.Level, cfg.Log.Pretty)
	if envErr != nil {
		log.Info().Msg("No .env file found, using environment variables")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid config")
	}
	if cfg.TemplatesPath != "" {
		log.Info().Str("path", cfg.TemplatesPath).Msg("Templates loaded")
	}

	// Initialize repository layer
	repos, err := data.NewRepositories(data.Options{
		DBPath:         cfg.Storage.DBPath,
		UploadDir:      cfg.Storage.UploadDir,
		FilesURLPrefix: cfg.Storage.FilesURLPrefix,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create repositories")
	}
	log.Info().Str("db", cfg.Storage.DBPath).Str("uploads", cfg.Storage.UploadDir).Msg("Storage ready")

	// Push transport
	var notifier repo.Notifier
	if cfg.Feishu.Enabled() {
		notifier = data.NewFeishuNotifier(feishu.NewClient(cfg.Feishu.AppID, cfg.Feishu.AppSecret), cfg.Feishu.ReceiveIDType)
		log.Info().Str("receive_id_type", cfg.Feishu.ReceiveIDType).Msg("Feishu notifications enabled")
	} else {
		notifier = data.NewLogNotifier()
		log.Warn().Msg("Feishu not configured, notifications are only logged")
	}

	var composer repo.DigestComposer
	templates := cfg.ToTemplateConfig()
	if cfg.Moonshot.APIKey != "" {
		client := moonshot.NewClient(cfg.Moonshot.APIKey, cfg.Moonshot.Model)
		if cfg.Moonshot.BaseURL != "" {
			client = moonshot.NewClientWithBaseURL(cfg.Moonshot.APIKey, cfg.Moonshot.Model, cfg.Moonshot.BaseURL)
		}
		composer = data.NewMoonshotComposer(client, templates.AttachmentPlaceholder)
		log.Info().Msg("Moonshot digests enabled")
	}

	// Initialize usecase layer
	ucs := biz.NewUsecases(biz.Repos{
		Chat:        repos.Chat,
		Presence:    repos.Presence,
		Permission:  repos.Permission,
		Attachments: repos.Attachments,
		Notifier:    notifier,
		Composer:    composer,
	}, biz.Config{
		OnlineWindow: cfg.Presence.OnlineWindow,
		Registry:     cfg.ToRegistryConfig(),
		Notify:       cfg.ToNotifyConfig(),
		Templates:    templates,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := ucs.Registry.SeedAdmins(ctx, cfg.Access.AdminUserIDs); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed admins")
	}

	// Live events
	hub := api.NewHub(ucs.Presence, cfg.HTTP.AllowedOrigins)
	ucs.SetEventPublisher(hub)

	// Background sweep
	sweeper := service.NewNotifySweeper(ucs.Notify, cfg.Notify.SweepInterval)
	sweeper.Start(ctx)

	// HTTP API
	apiServer := api.NewServer(api.Config{
		Addr:           cfg.HTTP.Addr,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		UploadDir:      cfg.Storage.UploadDir,
		FilesURLPrefix: cfg.Storage.FilesURLPrefix,
		MaxUploadBytes: cfg.Storage.MaxUploadBytes,
	}, ucs.Presence, ucs.Registry, ucs.Ledger, ucs.Directory, hub)

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start()
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down...")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("API server error")
			exitCode = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("HTTP shutdown incomplete")
	}
	sweeper.Stop()
	ucs.Notify.Wait()
	repos.Close()

	log.Info().Msg("Stopped")
	os.Exit(exitCode)
}
