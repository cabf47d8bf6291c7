package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"commentpulse/internal/analysis"
	"commentpulse/internal/domain"
)

type Source interface {
	ListVideos(ctx context.Context, channelID string, publishedAfter time.Time, maxVideos int) ([]domain.Video, error)
	FetchComments(ctx context.Context, videoID, channelID string) ([]domain.Comment, error)
}

type ChannelStore interface {
	BeginSync(ctx context.Context, channelID, userID string) error
	Complete(ctx context.Context, channelID, userID string, totalComments, totalVideos int64) error
	MarkError(ctx context.Context, channelID, userID string) error
	GetStatus(ctx context.Context, channelID, userID string) (*domain.ChannelSyncStatus, error)
	ListDue(ctx context.Context, olderThan time.Time) ([]domain.Channel, error)
}

type VideoStore interface {
	Upsert(ctx context.Context, video *domain.Video) error
	SetAnalyzedCount(ctx context.Context, videoID, userID string, count int) error
}

type CommentStore interface {
	UpsertBatch(ctx context.Context, comments []domain.Comment) error
}

type CommenterStore interface {
	ApplyComment(ctx context.Context, comment *domain.Comment) error
}

type Classifier interface {
	Classify(text string) analysis.Result
}

type Broadcaster interface {
	Publish(ctx context.Context, event *domain.LogEvent) error
}
