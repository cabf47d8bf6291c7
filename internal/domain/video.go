package domain

import "time"

// Video is one fetched video belonging to a tracked channel.
type Video struct {
	ID                   int64      `db:"id"`
	VideoID              string     `db:"video_id"`
	ChannelID            string     `db:"channel_id"`
	UserID               string     `db:"user_id"`
	Title                string     `db:"title"`
	Description          *string    `db:"description"`
	ThumbnailURL         *string    `db:"thumbnail_url"`
	PublishedAt          time.Time  `db:"published_at"`
	ViewCount            int64      `db:"view_count"`
	LikeCount            int64      `db:"like_count"`
	CommentCount         int64      `db:"comment_count"`
	AnalyzedCommentCount int64      `db:"analyzed_comment_count"`
	LastSynced           *time.Time `db:"last_synced"`
	CreatedAt            time.Time  `db:"created_at"`
}
