package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"commentpulse/internal/domain"
	"commentpulse/internal/service"
)

// Syncer runs one channel sync to completion.
type Syncer interface {
	Sync(ctx context.Context, req service.SyncRequest) (*domain.SyncStats, error)
}

// ChannelLister returns channels whose last sync predates the cutoff.
type ChannelLister interface {
	ListDue(ctx context.Context, olderThan time.Time) ([]domain.Channel, error)
}

// Scheduler periodically re-syncs tracked channels that have gone stale.
type Scheduler struct {
	syncer   Syncer
	channels ChannelLister
	interval time.Duration
	logger   *slog.Logger
}

func NewScheduler(syncer Syncer, channels ChannelLister, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		syncer:   syncer,
		channels: channels,
		interval: interval,
		logger:   logger.With("component", "scheduler"),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.runPass(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runPass(ctx)
		}
	}
}

// runPass syncs every stale channel, one at a time. A channel that got
// claimed in the meantime is skipped, not treated as a failure.
func (s *Scheduler) runPass(ctx context.Context) {
	cutoff := time.Now().Add(-s.interval)

	channels, err := s.channels.ListDue(ctx, cutoff)
	if err != nil {
		s.logger.Error("list due channels failed", "error", err)
		return
	}

	for _, ch := range channels {
		if ctx.Err() != nil {
			return
		}

		_, err := s.syncer.Sync(ctx, service.SyncRequest{
			ChannelID: ch.ChannelID,
			UserID:    ch.UserID,
		})
		if errors.Is(err, domain.ErrSyncInProgress) {
			continue
		}
		if err != nil {
			s.logger.Error("scheduled sync failed",
				"channel_id", ch.ChannelID,
				"user_id", ch.UserID,
				"error", err,
			)
		}
	}
}
