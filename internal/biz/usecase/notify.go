package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/neztrixTON/app/internal/biz/domain"
	"github.com/neztrixTON/app/internal/biz/repo"
	"github.com/neztrixTON/app/internal/logx"
)

// NotifyConfig contains dispatcher configuration
type NotifyConfig struct {
	Immediate bool          // Dispatch right after every append, not only on sweep
	Timeout   time.Duration // Deadline of one external notify call
	Templates TemplateConfig
}

// SweepResult summarizes one sweep pass
type SweepResult struct {
	Checked int
	Sent    int
	Failed  int
}

// NotifyUsecase dispatches deduplicated alerts for unread backlogs
type NotifyUsecase struct {
	chatRepo repo.ChatRepo
	notifier repo.Notifier
	composer repo.DigestComposer
	config   NotifyConfig
	now      func() time.Time
	log      zerolog.Logger

	mu       sync.Mutex
	inflight map[string]bool
	wg       sync.WaitGroup
}

// NewNotifyUsecase creates a new notify usecase
func NewNotifyUsecase(chatRepo repo.ChatRepo, notifier repo.Notifier, config NotifyConfig) *NotifyUsecase {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	config.Templates = config.Templates.withDefaults()
	return &NotifyUsecase{
		chatRepo: chatRepo,
		notifier: notifier,
		config:   config,
		now:      time.Now,
		log:      logx.Component("notify"),
		inflight: make(map[string]bool),
	}
}

// SetComposer attaches an optional digest composer
func (uc *NotifyUsecase) SetComposer(composer repo.DigestComposer) {
	uc.composer = composer
}

// SetClock overrides the time source
func (uc *NotifyUsecase) SetClock(now func() time.Time) {
	uc.now = now
}

// OnAppend dispatches in the background when immediate mode is on.
// Otherwise the next sweep picks the backlog up.
func (uc *NotifyUsecase) OnAppend(chatID, userID string) {
	if !uc.config.Immediate {
		return
	}
	uc.wg.Add(1)
	go func() {
		defer uc.wg.Done()
		if _, err := uc.Dispatch(context.Background(), chatID, userID); err != nil {
			uc.log.Warn().Err(err).Str("chat_id", chatID).Str("user_id", userID).Msg("Immediate notify failed, sweep will retry")
		}
	}()
}

// Wait blocks until background dispatches started by OnAppend finish
func (uc *NotifyUsecase) Wait() {
	uc.wg.Wait()
}

// Dispatch alerts userID about their unread backlog in chatID if one is owed.
// Returns sent=false without error when nothing is owed or another dispatch
// for the same pair is in flight.
func (uc *NotifyUsecase) Dispatch(ctx context.Context, chatID, userID string) (bool, error) {
	key := chatID + "\x00" + userID
	if !uc.acquire(key) {
		return false, nil
	}
	defer uc.release(key)

	// A read landing after the claim still gets this push; the confirmation
	// below is then discarded.
	var gen uint64
	owed := false
	chat, err := uc.chatRepo.Update(ctx, chatID, func(chat *domain.Chat) error {
		gen, owed = chat.ClaimAlert(userID)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("claim alert: %w", err)
	}
	if !owed {
		return false, nil
	}

	n := uc.compose(ctx, chat, userID)

	notifyCtx, cancel := context.WithTimeout(ctx, uc.config.Timeout)
	notifyErr := uc.notifier.Notify(notifyCtx, n)
	cancel()

	if notifyErr != nil {
		if _, err := uc.chatRepo.Update(ctx, chatID, func(chat *domain.Chat) error {
			chat.RecordAlertFailure(userID, gen, notifyErr.Error())
			return nil
		}); err != nil {
			uc.log.Error().Err(err).Str("chat_id", chatID).Str("user_id", userID).Msg("Failed to record notify failure")
		}
		return false, domain.TransientDependencyFailure("notifier", notifyErr)
	}

	confirmed := false
	if _, err := uc.chatRepo.Update(ctx, chatID, func(chat *domain.Chat) error {
		confirmed = chat.ConfirmAlerted(userID, gen, uc.now())
		return nil
	}); err != nil {
		// The push went out but its state was not recorded; the next sweep
		// may alert this backlog once more.
		uc.log.Error().Err(err).Str("chat_id", chatID).Str("user_id", userID).Msg("Failed to persist alerted state")
		return true, fmt.Errorf("persist alerted state: %w", err)
	}

	if !confirmed {
		uc.log.Debug().Str("chat_id", chatID).Str("user_id", userID).Msg("Notify state moved during dispatch, confirmation discarded")
	}
	uc.log.Info().Str("chat_id", chatID).Str("user_id", userID).Int("unread", n.UnreadCount).Msg("Notification sent")
	return true, nil
}

// Sweep scans every chat and dispatches each owed alert once
func (uc *NotifyUsecase) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	chats, err := uc.chatRepo.ListAll(ctx)
	if err != nil {
		return result, fmt.Errorf("list chats: %w", err)
	}

	for _, chat := range chats {
		for _, userID := range chat.PendingAlerts() {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Checked++
			sent, err := uc.Dispatch(ctx, chat.ID, userID)
			if err != nil {
				result.Failed++
				uc.log.Warn().Err(err).Str("chat_id", chat.ID).Str("user_id", userID).Msg("Sweep notify failed")
				continue
			}
			if sent {
				result.Sent++
			}
		}
	}

	if result.Checked > 0 {
		uc.log.Info().Int("checked", result.Checked).Int("sent", result.Sent).Int("failed", result.Failed).Msg("Notify sweep done")
	}
	return result, nil
}

func (uc *NotifyUsecase) compose(ctx context.Context, chat *domain.Chat, userID string) domain.Notification {
	unread := chat.UnreadFor(userID)
	n := uc.config.Templates.Notification(chat, userID, unread)
	if uc.composer == nil {
		return n
	}

	body, err := uc.composer.Compose(ctx, n.Title, unread)
	if err != nil || body == "" {
		if err != nil {
			uc.log.Warn().Err(err).Str("chat_id", chat.ID).Msg("Digest composer failed, using template")
		}
		return n
	}
	n.Body = body
	return n
}

func (uc *NotifyUsecase) acquire(key string) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.inflight[key] {
		return false
	}
	uc.inflight[key] = true
	return true
}

func (uc *NotifyUsecase) release(key string) {
	uc.mu.Lock()
	delete(uc.inflight, key)
	uc.mu.Unlock()
}
