package domain

import "time"

// Commenter holds rolling per-author statistics for one tracked channel.
// One row per (author_channel_id, channel_id, user_id); counters only grow.
// StreakDays is stored but not maintained by the sync pipeline.
type Commenter struct {
	ID                 int64     `db:"id"`
	AuthorChannelID    string    `db:"author_channel_id"`
	ChannelID          string    `db:"channel_id"`
	UserID             string    `db:"user_id"`
	AuthorName         string    `db:"author_name"`
	AuthorProfileImage *string   `db:"author_profile_image"`
	CommentCount       int64     `db:"comment_count"`
	TotalLikesReceived int64     `db:"total_likes_received"`
	FirstCommentAt     time.Time `db:"first_comment_at"`
	LastCommentAt      time.Time `db:"last_comment_at"`
	VideosCommentedOn  []string  `db:"-"`
	StreakDays         int       `db:"streak_days"`
	IsRepeat           bool      `db:"is_repeat"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}
