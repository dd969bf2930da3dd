package biz

import (
	"time"

	"github.com/neztrixTON/app/internal/biz/repo"
	"github.com/neztrixTON/app/internal/biz/usecase"
)

// Config contains the usecase layer configuration
type Config struct {
	OnlineWindow time.Duration
	Registry     usecase.RegistryConfig
	Notify       usecase.NotifyConfig
	Templates    usecase.TemplateConfig
}

// Repos contains the collaborators the usecases are built on
type Repos struct {
	Chat        repo.ChatRepo
	Presence    repo.PresenceRepo
	Permission  repo.PermissionRepo
	Attachments repo.AttachmentStore
	Notifier    repo.Notifier
	Composer    repo.DigestComposer // Optional
}

// Usecases contains all usecases
type Usecases struct {
	Presence  *usecase.PresenceUsecase
	Registry  *usecase.RegistryUsecase
	Ledger    *usecase.LedgerUsecase
	Notify    *usecase.NotifyUsecase
	Directory *usecase.DirectoryUsecase
}

// NewUsecases builds the usecases and connects appends to the dispatcher
func NewUsecases(repos Repos, cfg Config) *Usecases {
	presenceUC := usecase.NewPresenceUsecase(repos.Presence, cfg.OnlineWindow)
	registryUC := usecase.NewRegistryUsecase(repos.Chat, repos.Permission, presenceUC, cfg.Registry)
	ledgerUC := usecase.NewLedgerUsecase(repos.Chat, repos.Attachments, presenceUC)
	notifyUC := usecase.NewNotifyUsecase(repos.Chat, repos.Notifier, cfg.Notify)
	directoryUC := usecase.NewDirectoryUsecase(repos.Chat, ledgerUC, presenceUC, cfg.Templates)

	if repos.Composer != nil {
		notifyUC.SetComposer(repos.Composer)
	}
	ledgerUC.SetAlertTrigger(notifyUC)

	return &Usecases{
		Presence:  presenceUC,
		Registry:  registryUC,
		Ledger:    ledgerUC,
		Notify:    notifyUC,
		Directory: directoryUC,
	}
}

// SetEventPublisher attaches the live event hub to every usecase that emits events
func (u *Usecases) SetEventPublisher(events repo.EventPublisher) {
	u.Ledger.SetEventPublisher(events)
	u.Registry.SetEventPublisher(events)
}
