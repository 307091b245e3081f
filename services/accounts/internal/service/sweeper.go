package service

import (
	"context"
	"time"

	"github.com/diagnosis/luxsuv-accounts/pkg/events"
	"github.com/diagnosis/luxsuv-accounts/pkg/logger"
	"github.com/diagnosis/luxsuv-accounts/services/accounts/internal/repository"
)

// Sweeper deletes unverified accounts whose code expired more than
// retention ago. Records inside the window still count as attempts.
type Sweeper struct {
	repo      repository.AccountRepository
	events    events.Publisher
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
}

func NewSweeper(repo repository.AccountRepository, publisher events.Publisher, interval, retention time.Duration) *Sweeper {
	return &Sweeper{
		repo:      repo,
		events:    publisher,
		interval:  interval,
		retention: retention,
		now:       time.Now,
	}
}

func (s *Sweeper) Enabled() bool {
	return s.interval > 0 && s.retention > 0
}

// Run sweeps every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	if !s.Enabled() {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				logger.ErrorContext(ctx, "Pending account sweep failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.retention)
	n, err := s.repo.DeleteStalePending(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.InfoContext(ctx, "Swept stale pending accounts", "removed", n, "older_than", cutoff)
		if err := s.events.Publish(ctx, events.AccountPendingSwept, events.AccountPendingSweptEvent{
			Removed:   n,
			OlderThan: cutoff,
		}); err != nil {
			logger.WarnContext(ctx, "Failed to publish event", "subject", events.AccountPendingSwept, "error", err)
		}
	}
	return n, nil
}
