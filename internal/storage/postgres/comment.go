package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"commentpulse/internal/domain"
)

type CommentStore struct {
	db *sqlx.DB
}

func NewCommentStore(db *sqlx.DB) *CommentStore {
	return &CommentStore{db: db}
}

const commentCols = 17

// UpsertBatch writes classified comments in one statement, keyed by
// (comment_id, user_id). Re-syncing a comment overwrites its text,
// counters and classification; is_bookmarked survives because users own
// that flag, not the pipeline.
func (s *CommentStore) UpsertBatch(ctx context.Context, comments []domain.Comment) error {
	if len(comments) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO comments (
		comment_id, video_id, channel_id, user_id, author_name,
		author_channel_id, author_profile_image, text, like_count,
		reply_count, published_at, updated_at, parent_id, is_reply,
		sentiment, sentiment_score, tags
	) VALUES `)

	args := make([]interface{}, 0, len(comments)*commentCols)
	for i, c := range comments {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j := 0; j < commentCols; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("$")
			sb.WriteString(strconv.Itoa(i*commentCols + j + 1))
		}
		sb.WriteString(")")

		tags := c.Tags
		if tags == nil {
			tags = []string{}
		}

		args = append(args,
			c.CommentID, c.VideoID, c.ChannelID, c.UserID, c.AuthorName,
			c.AuthorChannelID, c.AuthorProfileImage, c.Text, c.LikeCount,
			c.ReplyCount, c.PublishedAt, c.UpdatedAt, c.ParentID, c.IsReply,
			c.Sentiment, c.SentimentScore, pq.Array(tags),
		)
	}

	sb.WriteString(`
		ON CONFLICT (comment_id, user_id) DO UPDATE SET
			text = EXCLUDED.text,
			like_count = EXCLUDED.like_count,
			reply_count = EXCLUDED.reply_count,
			updated_at = EXCLUDED.updated_at,
			sentiment = EXCLUDED.sentiment,
			sentiment_score = EXCLUDED.sentiment_score,
			tags = EXCLUDED.tags`)

	_, err := s.db.ExecContext(ctx, sb.String(), args...)
	return err
}

// CountByChannel reports stored comments for one channel and owner.
func (s *CommentStore) CountByChannel(ctx context.Context, channelID, userID string) (int64, error) {
	var count int64
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM comments WHERE channel_id = $1 AND user_id = $2",
		channelID, userID,
	)
	return count, err
}
