package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"commentpulse/internal/domain"
)

type VideoStore struct {
	db *sqlx.DB
}

func NewVideoStore(db *sqlx.DB) *VideoStore {
	return &VideoStore{db: db}
}

// Upsert writes a fetched video keyed by (video_id, user_id). A repeated
// sync overwrites metadata and statistics, never duplicates the row.
func (s *VideoStore) Upsert(ctx context.Context, video *domain.Video) error {
	query := `
		INSERT INTO videos (
			video_id, channel_id, user_id, title, description, thumbnail_url,
			published_at, view_count, like_count, comment_count, last_synced
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now()
		)
		ON CONFLICT (video_id, user_id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			thumbnail_url = EXCLUDED.thumbnail_url,
			view_count = EXCLUDED.view_count,
			like_count = EXCLUDED.like_count,
			comment_count = EXCLUDED.comment_count,
			last_synced = now()`

	_, err := s.db.ExecContext(ctx, query,
		video.VideoID,
		video.ChannelID,
		video.UserID,
		video.Title,
		video.Description,
		video.ThumbnailURL,
		video.PublishedAt,
		video.ViewCount,
		video.LikeCount,
		video.CommentCount,
	)
	return err
}

func (s *VideoStore) SetAnalyzedCount(ctx context.Context, videoID, userID string, count int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE videos SET analyzed_comment_count = $3
		WHERE video_id = $1 AND user_id = $2`,
		videoID, userID, count,
	)
	return err
}
