package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"commentpulse/internal/config"
	"commentpulse/internal/domain"
)

// SyncService orchestrates one channel sync run: it claims the run,
// fetches the candidate video list, processes fixed-size batches with
// one concurrent worker per video, and reports progress through the
// broadcaster. Batches run strictly one after another; concurrency
// exists only inside a batch.
type SyncService struct {
	source      Source
	channels    ChannelStore
	videos      VideoStore
	comments    CommentStore
	commenters  CommenterStore
	classifier  Classifier
	broadcaster Broadcaster
	logger      *slog.Logger
	config      config.SyncConfig
}

func NewSyncService(
	source Source,
	channels ChannelStore,
	videos VideoStore,
	comments CommentStore,
	commenters CommenterStore,
	classifier Classifier,
	broadcaster Broadcaster,
	logger *slog.Logger,
	cfg config.SyncConfig,
) *SyncService {
	return &SyncService{
		source:      source,
		channels:    channels,
		videos:      videos,
		comments:    comments,
		commenters:  commenters,
		classifier:  classifier,
		broadcaster: broadcaster,
		logger:      logger.With("component", "sync"),
		config:      cfg,
	}
}

// SyncRequest identifies one sync run. Zero LookbackDays/MaxVideos fall
// back to the configured defaults.
type SyncRequest struct {
	ChannelID    string
	UserID       string
	LookbackDays int
	MaxVideos    int
}

// StartSync claims the run and returns immediately; the batch loop
// continues on a background goroutine bounded by the configured run
// timeout. Returns domain.ErrSyncInProgress when a run for this
// channel/owner is already claimed, domain.ErrChannelNotFound when the
// channel is not tracked.
func (s *SyncService) StartSync(ctx context.Context, req SyncRequest) error {
	req = s.withDefaults(req)

	if err := s.begin(ctx, req); err != nil {
		return err
	}

	go func() {
		runCtx, cancel := context.WithTimeout(context.Background(), s.config.RunTimeout)
		defer cancel()

		if _, err := s.run(runCtx, req); err != nil {
			s.logger.Error("background sync failed",
				"channel_id", req.ChannelID,
				"user_id", req.UserID,
				"error", err,
			)
		}
	}()

	return nil
}

// Sync is the synchronous form of StartSync, used by the scheduler and
// anything that wants the stats.
func (s *SyncService) Sync(ctx context.Context, req SyncRequest) (*domain.SyncStats, error) {
	req = s.withDefaults(req)

	if err := s.begin(ctx, req); err != nil {
		return nil, err
	}
	return s.run(ctx, req)
}

// Status reports the channel's sync state and cumulative counters.
func (s *SyncService) Status(ctx context.Context, channelID, userID string) (*domain.ChannelSyncStatus, error) {
	return s.channels.GetStatus(ctx, channelID, userID)
}

// begin claims the run. Nothing is written or emitted on rejection.
func (s *SyncService) begin(ctx context.Context, req SyncRequest) error {
	if err := s.channels.BeginSync(ctx, req.ChannelID, req.UserID); err != nil {
		return err
	}

	s.emit(ctx, req, domain.LevelInfo,
		fmt.Sprintf("sync started: last %d days, up to %d videos", req.LookbackDays, req.MaxVideos))
	return nil
}

// run executes the batch loop. The channel status is already 'syncing'
// when this is entered.
func (s *SyncService) run(ctx context.Context, req SyncRequest) (*domain.SyncStats, error) {
	startTime := time.Now()
	stats := &domain.SyncStats{ChannelID: req.ChannelID, UserID: req.UserID}

	cutoff := time.Now().AddDate(0, 0, -req.LookbackDays)
	videos, err := s.source.ListVideos(ctx, req.ChannelID, cutoff, req.MaxVideos)
	if err != nil {
		return nil, s.fail(ctx, req, fmt.Errorf("list videos: %w", err))
	}

	stats.VideosFetched = len(videos)
	s.logger.Info("fetched video list", "channel_id", req.ChannelID, "count", len(videos))

	if len(videos) == 0 {
		s.emit(ctx, req, domain.LevelWarning, "no videos found in lookback window")
	}

	batchSize := s.config.BatchSize
	numBatches := (len(videos) + batchSize - 1) / batchSize

	for b := 0; b < numBatches; b++ {
		batch := videos[b*batchSize : min((b+1)*batchSize, len(videos))]

		s.emit(ctx, req, domain.LevelInfo,
			fmt.Sprintf("processing batch %d/%d (%d videos)", b+1, numBatches, len(batch)))

		outcomes := s.processBatch(ctx, batch, req)

		batchComments := 0
		for _, out := range outcomes {
			if out.Err != nil {
				stats.ItemErrors++
				s.emit(ctx, req, domain.LevelError,
					fmt.Sprintf("video %s failed: %v", out.VideoID, out.Err))
				continue
			}
			batchComments += out.CommentsProcessed
			stats.VideosSynced++
		}
		stats.Comments += batchComments

		s.emit(ctx, req, domain.LevelSuccess,
			fmt.Sprintf("batch %d/%d done: %d comments", b+1, numBatches, batchComments))
	}

	if err := s.channels.Complete(ctx, req.ChannelID, req.UserID,
		int64(stats.Comments), int64(stats.VideosSynced)); err != nil {
		return nil, s.fail(ctx, req, fmt.Errorf("complete sync: %w", err))
	}

	stats.Duration = time.Since(startTime)

	s.emit(ctx, req, domain.LevelSuccess,
		fmt.Sprintf("sync completed: %d videos analyzed, %d comments", stats.VideosSynced, stats.Comments))

	s.logger.Info("sync completed",
		"channel_id", req.ChannelID,
		"videos_fetched", stats.VideosFetched,
		"videos_synced", stats.VideosSynced,
		"comments", stats.Comments,
		"item_errors", stats.ItemErrors,
		"duration", stats.Duration,
	)

	return stats, nil
}

// processBatch runs one worker per video and waits for the whole batch.
// Workers only touch their own outcome slot, so no lock is needed.
func (s *SyncService) processBatch(ctx context.Context, batch []domain.Video, req SyncRequest) []domain.ItemOutcome {
	outcomes := make([]domain.ItemOutcome, len(batch))

	var wg sync.WaitGroup
	for i := range batch {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = s.processItem(ctx, batch[i], req)
		}(i)
	}
	wg.Wait()

	return outcomes
}

// fail moves the run into the error status and emits the terminal error
// event. Work persisted by completed batches is intentionally kept.
func (s *SyncService) fail(ctx context.Context, req SyncRequest, cause error) error {
	if err := s.channels.MarkError(ctx, req.ChannelID, req.UserID); err != nil {
		s.logger.Error("mark error status failed",
			"channel_id", req.ChannelID,
			"error", err,
		)
	}

	s.emit(ctx, req, domain.LevelError, fmt.Sprintf("sync failed: %v", cause))
	return cause
}

// emit publishes a progress event; a broadcast failure is logged but
// never aborts the run.
func (s *SyncService) emit(ctx context.Context, req SyncRequest, level domain.LogLevel, message string) {
	event := &domain.LogEvent{
		ChannelID: req.ChannelID,
		UserID:    req.UserID,
		Message:   message,
		Level:     level,
	}
	if err := s.broadcaster.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event failed",
			"channel_id", req.ChannelID,
			"level", level,
			"error", err,
		)
	}
}

func (s *SyncService) withDefaults(req SyncRequest) SyncRequest {
	if req.LookbackDays <= 0 {
		req.LookbackDays = s.config.LookbackDays
	}
	if req.MaxVideos <= 0 {
		req.MaxVideos = s.config.MaxVideos
	}
	return req
}
