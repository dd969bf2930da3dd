package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/neztrixTON/app/internal/biz/usecase"
	"github.com/neztrixTON/app/internal/logx"
)

// Sweeper is the periodic pass over owed alerts
type Sweeper interface {
	Sweep(ctx context.Context) (usecase.SweepResult, error)
}

// NotifySweeper runs the notify sweep on a fixed interval
type NotifySweeper struct {
	sweeper  Sweeper
	interval time.Duration
	log      zerolog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewNotifySweeper creates a new sweeper. A non-positive interval means one minute.
func NewNotifySweeper(sweeper Sweeper, interval time.Duration) *NotifySweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &NotifySweeper{
		sweeper:  sweeper,
		interval: interval,
		log:      logx.Component("sweeper"),
	}
}

// Start starts the sweep loop
func (s *NotifySweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.loop(ctx)
	s.log.Info().Dur("interval", s.interval).Msg("Notify sweeper started")
}

// Stop stops the loop and waits for an in-progress sweep to finish
func (s *NotifySweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	s.log.Info().Msg("Notify sweeper stopped")
}

// RunOnce runs a single sweep
func (s *NotifySweeper) RunOnce(ctx context.Context) usecase.SweepResult {
	result, err := s.sweeper.Sweep(ctx)
	if err != nil && ctx.Err() == nil {
		s.log.Error().Err(err).Msg("Notify sweep failed")
	}
	return result
}

func (s *NotifySweeper) loop(ctx context.Context) {
	defer s.wg.Done()

	// Initial run
	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}
