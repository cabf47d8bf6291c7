package domain

import (
	"errors"
	"time"
)

// SyncStatus is the lifecycle state of a channel's sync run.
type SyncStatus string

const (
	SyncPending   SyncStatus = "pending"
	SyncInFlight  SyncStatus = "syncing"
	SyncCompleted SyncStatus = "completed"
	SyncError     SyncStatus = "error"
)

var (
	ErrChannelNotFound = errors.New("channel not found")
	ErrSyncInProgress  = errors.New("sync already in progress")
)

// Channel is a tracked YouTube channel owned by a user. Sync state and
// cumulative counters are mutated only by the sync service.
type Channel struct {
	ID                  int64      `db:"id"`
	ChannelID           string     `db:"channel_id"`
	UserID              string     `db:"user_id"`
	Name                string     `db:"name"`
	Description         *string    `db:"description"`
	ThumbnailURL        *string    `db:"thumbnail_url"`
	SubscriberCount     int64      `db:"subscriber_count"`
	VideoCount          int64      `db:"video_count"`
	SyncStatus          SyncStatus `db:"sync_status"`
	TotalComments       int64      `db:"total_comments"`
	TotalVideosAnalyzed int64      `db:"total_videos_analyzed"`
	LastSynced          *time.Time `db:"last_synced"`
	CreatedAt           time.Time  `db:"created_at"`
}

// ChannelSyncStatus is the outward-facing status snapshot for one channel.
type ChannelSyncStatus struct {
	ChannelID           string     `db:"channel_id"`
	SyncStatus          SyncStatus `db:"sync_status"`
	LastSynced          *time.Time `db:"last_synced"`
	TotalComments       int64      `db:"total_comments"`
	TotalVideosAnalyzed int64      `db:"total_videos_analyzed"`
}
