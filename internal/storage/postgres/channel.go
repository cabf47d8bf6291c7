package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"commentpulse/internal/domain"
)

type ChannelStore struct {
	db *sqlx.DB
}

func NewChannelStore(db *sqlx.DB) *ChannelStore {
	return &ChannelStore{db: db}
}

// Upsert registers a tracked channel or refreshes its metadata. Sync
// state and counters are never touched here.
func (s *ChannelStore) Upsert(ctx context.Context, channel *domain.Channel) (int64, error) {
	query := `
		INSERT INTO channels (
			channel_id, user_id, name, description, thumbnail_url,
			subscriber_count, video_count, sync_status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, 'pending'
		)
		ON CONFLICT (channel_id, user_id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			thumbnail_url = EXCLUDED.thumbnail_url,
			subscriber_count = EXCLUDED.subscriber_count,
			video_count = EXCLUDED.video_count
		RETURNING id`

	var id int64
	err := s.db.QueryRowContext(ctx, query,
		channel.ChannelID,
		channel.UserID,
		channel.Name,
		channel.Description,
		channel.ThumbnailURL,
		channel.SubscriberCount,
		channel.VideoCount,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	return id, nil
}

// BeginSync claims the channel for a run with a single conditional
// update, so two concurrent callers can never both win. A stale
// 'syncing' left by a crashed process keeps rejecting until the status
// is reset; there is no lease or heartbeat.
func (s *ChannelStore) BeginSync(ctx context.Context, channelID, userID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE channels
		SET sync_status = 'syncing', last_synced = now()
		WHERE channel_id = $1 AND user_id = $2 AND sync_status <> 'syncing'`,
		channelID, userID,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	var exists bool
	err = s.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM channels WHERE channel_id = $1 AND user_id = $2)",
		channelID, userID,
	)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrChannelNotFound
	}
	return domain.ErrSyncInProgress
}

// Complete records a finished run: terminal status, cumulative counters
// and the sync timestamp.
func (s *ChannelStore) Complete(ctx context.Context, channelID, userID string, totalComments, totalVideos int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE channels
		SET sync_status = 'completed',
		    total_comments = $3,
		    total_videos_analyzed = $4,
		    last_synced = now()
		WHERE channel_id = $1 AND user_id = $2`,
		channelID, userID, totalComments, totalVideos,
	)
	return err
}

// MarkError flips the run to the error status. Counters are left as
// they were; completed batches stay persisted.
func (s *ChannelStore) MarkError(ctx context.Context, channelID, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE channels SET sync_status = 'error'
		WHERE channel_id = $1 AND user_id = $2`,
		channelID, userID,
	)
	return err
}

func (s *ChannelStore) GetStatus(ctx context.Context, channelID, userID string) (*domain.ChannelSyncStatus, error) {
	var status domain.ChannelSyncStatus
	err := s.db.GetContext(ctx, &status, `
		SELECT channel_id, sync_status, last_synced, total_comments, total_videos_analyzed
		FROM channels
		WHERE channel_id = $1 AND user_id = $2`,
		channelID, userID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrChannelNotFound
	}
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// ListDue returns channels whose last sync predates the cutoff (or that
// never synced), skipping ones currently claimed by a run.
func (s *ChannelStore) ListDue(ctx context.Context, olderThan time.Time) ([]domain.Channel, error) {
	var channels []domain.Channel
	err := s.db.SelectContext(ctx, &channels, `
		SELECT id, channel_id, user_id, name, description, thumbnail_url,
		       subscriber_count, video_count, sync_status, total_comments,
		       total_videos_analyzed, last_synced, created_at
		FROM channels
		WHERE sync_status <> 'syncing'
		  AND (last_synced IS NULL OR last_synced < $1)
		ORDER BY last_synced NULLS FIRST`,
		olderThan,
	)
	return channels, err
}
