package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"commentpulse/internal/domain"
)

type CommenterStore struct {
	db *sqlx.DB
}

func NewCommenterStore(db *sqlx.DB) *CommenterStore {
	return &CommenterStore{db: db}
}

// ApplyComment merges one comment into its author's rolling statistics
// with a single increment-or-insert statement. Postgres serializes
// conflicting upserts on the (author, channel, owner) row, so concurrent
// workers hitting the same author lose no updates and create no
// duplicate rows. Each call counts: callers must apply a given comment
// exactly once per run.
//
// last_comment_at is overwritten, not maxed: a comment processed out of
// chronological order can regress it. Accepted limitation.
func (s *CommenterStore) ApplyComment(ctx context.Context, c *domain.Comment) error {
	if c.AuthorChannelID == "" {
		return nil
	}

	query := `
		INSERT INTO commenters (
			author_channel_id, channel_id, user_id, author_name,
			author_profile_image, comment_count, total_likes_received,
			first_comment_at, last_comment_at, videos_commented_on,
			streak_days, is_repeat
		) VALUES (
			$1, $2, $3, $4, $5, 1, $6, $7, $7, ARRAY[$8::text], 0, false
		)
		ON CONFLICT (author_channel_id, channel_id, user_id) DO UPDATE SET
			comment_count = commenters.comment_count + 1,
			total_likes_received = commenters.total_likes_received + EXCLUDED.total_likes_received,
			last_comment_at = EXCLUDED.last_comment_at,
			videos_commented_on = CASE
				WHEN $8::text = ANY(commenters.videos_commented_on)
					THEN commenters.videos_commented_on
				ELSE array_append(commenters.videos_commented_on, $8::text)
			END,
			is_repeat = true,
			updated_at = now()`

	_, err := s.db.ExecContext(ctx, query,
		c.AuthorChannelID,
		c.ChannelID,
		c.UserID,
		c.AuthorName,
		c.AuthorProfileImage,
		c.LikeCount,
		c.PublishedAt,
		c.VideoID,
	)
	return err
}

// Get fetches one commenter row, mostly for tests and inspection.
func (s *CommenterStore) Get(ctx context.Context, authorChannelID, channelID, userID string) (*domain.Commenter, error) {
	query := `
		SELECT id, author_channel_id, channel_id, user_id, author_name,
		       author_profile_image, comment_count, total_likes_received,
		       first_comment_at, last_comment_at, videos_commented_on,
		       streak_days, is_repeat, created_at, updated_at
		FROM commenters
		WHERE author_channel_id = $1 AND channel_id = $2 AND user_id = $3`

	row := s.db.QueryRowxContext(ctx, query, authorChannelID, channelID, userID)

	var c domain.Commenter
	err := row.Scan(
		&c.ID, &c.AuthorChannelID, &c.ChannelID, &c.UserID, &c.AuthorName,
		&c.AuthorProfileImage, &c.CommentCount, &c.TotalLikesReceived,
		&c.FirstCommentAt, &c.LastCommentAt, pq.Array(&c.VideosCommentedOn),
		&c.StreakDays, &c.IsRepeat, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
