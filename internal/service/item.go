package service

import (
	"context"
	"fmt"

	"commentpulse/internal/domain"
)

// processItem handles one video end to end: persist the video, fetch
// its thread, classify and bulk-persist the comments, then fold each
// comment into its author's statistics. Any failure aborts this item
// only and comes back in the outcome; sibling workers keep going.
//
// Comment storage is idempotent (keyed upserts), commenter application
// is not: re-processing the same video increments the author counters
// again. The orchestrator calls this exactly once per video per run.
func (s *SyncService) processItem(ctx context.Context, video domain.Video, req SyncRequest) domain.ItemOutcome {
	out := domain.ItemOutcome{VideoID: video.VideoID}

	video.UserID = req.UserID
	if err := s.videos.Upsert(ctx, &video); err != nil {
		out.Err = fmt.Errorf("upsert video: %w", err)
		return out
	}

	comments, err := s.source.FetchComments(ctx, video.VideoID, req.ChannelID)
	if err != nil {
		out.Err = fmt.Errorf("fetch comments: %w", err)
		return out
	}

	// An empty thread is a legitimate result, not a failure.
	if len(comments) == 0 {
		return out
	}

	for i := range comments {
		comments[i].UserID = req.UserID

		result := s.classifier.Classify(comments[i].Text)
		comments[i].Sentiment = result.Sentiment
		comments[i].SentimentScore = result.Score
		comments[i].Tags = result.Tags
	}

	if err := s.comments.UpsertBatch(ctx, comments); err != nil {
		out.Err = fmt.Errorf("upsert comments: %w", err)
		return out
	}

	for i := range comments {
		if err := s.commenters.ApplyComment(ctx, &comments[i]); err != nil {
			out.Err = fmt.Errorf("apply commenter stats: %w", err)
			return out
		}
	}

	if err := s.videos.SetAnalyzedCount(ctx, video.VideoID, req.UserID, len(comments)); err != nil {
		out.Err = fmt.Errorf("set analyzed count: %w", err)
		return out
	}

	out.CommentsProcessed = len(comments)
	return out
}
