package domain

import "time"

// SyncStats holds statistics about one sync run.
type SyncStats struct {
	ChannelID     string
	UserID        string
	VideosFetched int
	VideosSynced  int
	Comments      int
	ItemErrors    int
	Duration      time.Duration
}

// ItemOutcome is the result of processing a single video and its thread.
type ItemOutcome struct {
	VideoID           string
	CommentsProcessed int
	Err               error
}
