package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// StatusScheduler periodically re-derives every contract's status. It is an
// explicitly owned component: the host starts and stops it with its own
// lifecycle, nothing runs as an import side effect.
type StatusScheduler struct {
	contracts *ContractService
	interval  time.Duration
	log       zerolog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

func NewStatusScheduler(contracts *ContractService, interval time.Duration, log zerolog.Logger) *StatusScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &StatusScheduler{
		contracts: contracts,
		interval:  interval,
		log:       log,
	}
}

// Start launches the refresh loop. The first pass runs immediately. Calling
// Start on a running scheduler is a no-op.
func (s *StatusScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	s.log.Info().Dur("interval", s.interval).Msg("status scheduler started")

	go func() {
		defer close(s.done)

		s.runOnce(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()
}

// Stop halts the loop and waits for an in-flight pass to finish.
func (s *StatusScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	done := s.done
	s.running = false
	s.mu.Unlock()

	<-done
	s.log.Info().Msg("status scheduler stopped")
}

func (s *StatusScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunNow forces a refresh pass outside the schedule.
func (s *StatusScheduler) RunNow(ctx context.Context) error {
	_, err := s.contracts.RefreshAllStatuses(ctx)
	return err
}

func (s *StatusScheduler) runOnce(ctx context.Context) {
	changed, err := s.contracts.RefreshAllStatuses(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.log.Error().Err(err).Msg("contract status refresh failed")
		return
	}
	if changed > 0 {
		s.log.Info().Int("changed", changed).Msg("contract statuses refreshed")
	}
}
