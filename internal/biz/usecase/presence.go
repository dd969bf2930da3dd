package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/neztrixTON/app/internal/biz/domain"
	"github.com/neztrixTON/app/internal/biz/repo"
	"github.com/neztrixTON/app/internal/logx"
)

// PresenceUsecase derives online/offline from heartbeats
type PresenceUsecase struct {
	presenceRepo repo.PresenceRepo
	window       time.Duration
	now          func() time.Time
	log          zerolog.Logger
}

// NewPresenceUsecase creates a new presence usecase
func NewPresenceUsecase(presenceRepo repo.PresenceRepo, window time.Duration) *PresenceUsecase {
	if window <= 0 {
		window = domain.DefaultOnlineWindow
	}
	return &PresenceUsecase{
		presenceRepo: presenceRepo,
		window:       window,
		now:          time.Now,
		log:          logx.Component("presence"),
	}
}

// SetClock replaces the time source
func (uc *PresenceUsecase) SetClock(now func() time.Time) {
	uc.now = now
}

// Heartbeat records now as the user's last-seen time
func (uc *PresenceUsecase) Heartbeat(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.MissingParameter("userId")
	}
	if err := uc.presenceRepo.Touch(ctx, userID, uc.now()); err != nil {
		return fmt.Errorf("touch presence: %w", err)
	}
	return nil
}

// Touch is the side-effect heartbeat of read paths; failures are logged only
func (uc *PresenceUsecase) Touch(ctx context.Context, userID string) {
	if userID == "" {
		return
	}
	if err := uc.presenceRepo.Touch(ctx, userID, uc.now()); err != nil {
		uc.log.Warn().Err(err).Str("user_id", userID).Msg("Failed to record heartbeat")
	}
}

// IsOnline reports whether userID sent a heartbeat within the window.
// Unknown users are offline.
func (uc *PresenceUsecase) IsOnline(ctx context.Context, userID string) (bool, error) {
	status, err := uc.Status(ctx, userID)
	if err != nil {
		return false, err
	}
	return status.Online, nil
}

// Status returns the presence query result for userID
func (uc *PresenceUsecase) Status(ctx context.Context, userID string) (*domain.PresenceStatus, error) {
	if userID == "" {
		return nil, domain.MissingParameter("userId")
	}
	seen, ok, err := uc.presenceRepo.LastSeen(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get presence: %w", err)
	}

	status := &domain.PresenceStatus{UserID: userID}
	if ok {
		status.LastSeen = &seen
		status.Online = domain.Presence{UserID: userID, LastSeen: seen}.IsOnline(uc.now(), uc.window)
	}
	return status, nil
}

// AnyOnline reports whether at least one of userIDs is online
func (uc *PresenceUsecase) AnyOnline(ctx context.Context, userIDs []string) (bool, error) {
	if len(userIDs) == 0 {
		return false, nil
	}
	seen, err := uc.presenceRepo.LastSeenMany(ctx, userIDs)
	if err != nil {
		return false, fmt.Errorf("get presence: %w", err)
	}
	now := uc.now()
	for id, at := range seen {
		if (domain.Presence{UserID: id, LastSeen: at}).IsOnline(now, uc.window) {
			return true, nil
		}
	}
	return false, nil
}
