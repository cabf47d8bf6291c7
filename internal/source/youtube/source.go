package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"commentpulse/internal/domain"
)

const (
	SourceID = "youtube"

	searchPageSize  = 50
	commentPageSize = 100
	maxComments     = 1000
)

// Config holds YouTube Data API source configuration.
type Config struct {
	BaseURL        string
	APIKey         string
	PageSize       int
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Source fetches videos and comment threads from the YouTube Data API v3.
type Source struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	pageSize       int
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
}

// New creates a new YouTube source.
func New(cfg Config, logger *slog.Logger) *Source {
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > searchPageSize {
		pageSize = searchPageSize
	}

	return &Source{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		pageSize:       pageSize,
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		logger:         logger.With("source", SourceID),
	}
}

// ID returns the source identifier.
func (s *Source) ID() string {
	return SourceID
}

// ListVideos returns the channel's videos published after the cutoff,
// newest first, up to maxVideos.
func (s *Source) ListVideos(ctx context.Context, channelID string, publishedAfter time.Time, maxVideos int) ([]domain.Video, error) {
	var ids []string
	pageToken := ""

	for len(ids) < maxVideos {
		params := url.Values{}
		params.Set("part", "snippet")
		params.Set("channelId", channelID)
		params.Set("type", "video")
		params.Set("order", "date")
		params.Set("maxResults", strconv.Itoa(min(maxVideos-len(ids), s.pageSize)))
		params.Set("publishedAfter", publishedAfter.UTC().Format(time.RFC3339))
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var resp searchResponse
		if err := s.get(ctx, "search", params, &resp); err != nil {
			return nil, fmt.Errorf("search videos: %w", err)
		}

		for _, item := range resp.Items {
			if item.ID.VideoID != "" {
				ids = append(ids, item.ID.VideoID)
			}
		}

		s.logger.Debug("fetched video page", "page_items", len(resp.Items), "total", len(ids))

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	if len(ids) > maxVideos {
		ids = ids[:maxVideos]
	}
	if len(ids) == 0 {
		return nil, nil
	}

	return s.videoDetails(ctx, channelID, ids)
}

// videoDetails resolves statistics and snippets for a batch of video ids.
func (s *Source) videoDetails(ctx context.Context, channelID string, ids []string) ([]domain.Video, error) {
	videos := make([]domain.Video, 0, len(ids))

	for start := 0; start < len(ids); start += searchPageSize {
		end := min(start+searchPageSize, len(ids))

		params := url.Values{}
		params.Set("part", "snippet,statistics")
		params.Set("id", strings.Join(ids[start:end], ","))

		var resp videosResponse
		if err := s.get(ctx, "videos", params, &resp); err != nil {
			return nil, fmt.Errorf("video details: %w", err)
		}

		for _, item := range resp.Items {
			videos = append(videos, s.transformVideo(channelID, item))
		}
	}

	return videos, nil
}

// FetchComments returns the full comment thread for a video, replies
// flattened after their parent. A video with comments disabled yields an
// empty thread, not an error.
func (s *Source) FetchComments(ctx context.Context, videoID, channelID string) ([]domain.Comment, error) {
	var comments []domain.Comment
	pageToken := ""

	for len(comments) < maxComments {
		params := url.Values{}
		params.Set("part", "snippet,replies")
		params.Set("videoId", videoID)
		params.Set("order", "time")
		params.Set("textFormat", "plainText")
		params.Set("maxResults", strconv.Itoa(min(commentPageSize, maxComments-len(comments))))
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var resp commentThreadsResponse
		if err := s.get(ctx, "commentThreads", params, &resp); err != nil {
			if isCommentsDisabled(err) {
				s.logger.Debug("comments disabled", "video_id", videoID)
				return nil, nil
			}
			return nil, fmt.Errorf("fetch comment threads: %w", err)
		}

		for _, thread := range resp.Items {
			top := thread.Snippet.TopLevelComment
			parent := s.transformComment(videoID, channelID, top, nil)
			parent.ReplyCount = thread.Snippet.TotalReplyCount
			comments = append(comments, parent)

			if thread.Replies != nil {
				parentID := top.ID
				for _, reply := range thread.Replies.Comments {
					comments = append(comments, s.transformComment(videoID, channelID, reply, &parentID))
				}
			}
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return comments, nil
}

func (s *Source) transformVideo(channelID string, item videoItem) domain.Video {
	video := domain.Video{
		VideoID:      item.ID,
		ChannelID:    channelID,
		Title:        item.Snippet.Title,
		PublishedAt:  item.Snippet.PublishedAt,
		ViewCount:    parseCount(item.Statistics.ViewCount),
		LikeCount:    parseCount(item.Statistics.LikeCount),
		CommentCount: parseCount(item.Statistics.CommentCount),
	}
	if item.Snippet.Description != "" {
		video.Description = &item.Snippet.Description
	}
	if item.Snippet.Thumbnails.High.URL != "" {
		video.ThumbnailURL = &item.Snippet.Thumbnails.High.URL
	}
	return video
}

func (s *Source) transformComment(videoID, channelID string, res commentResource, parentID *string) domain.Comment {
	c := domain.Comment{
		CommentID:       res.ID,
		VideoID:         videoID,
		ChannelID:       channelID,
		AuthorName:      res.Snippet.AuthorDisplayName,
		AuthorChannelID: res.Snippet.AuthorChannelID.Value,
		Text:            res.Snippet.TextDisplay,
		LikeCount:       res.Snippet.LikeCount,
		PublishedAt:     res.Snippet.PublishedAt,
		UpdatedAt:       res.Snippet.UpdatedAt,
		ParentID:        parentID,
		IsReply:         parentID != nil,
	}
	if res.Snippet.AuthorProfileImageURL != "" {
		c.AuthorProfileImage = &res.Snippet.AuthorProfileImageURL
	}
	return c
}

func (s *Source) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	params.Set("key", s.apiKey)
	reqURL := fmt.Sprintf("%s/%s?%s", s.baseURL, endpoint, params.Encode())

	var err error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		err = s.doRequest(ctx, reqURL, out)
		if err == nil {
			return nil
		}

		// Client-side API errors (bad key, disabled comments) never
		// succeed on retry.
		var apiErr *requestError
		if errors.As(err, &apiErr) && apiErr.statusCode < http.StatusInternalServerError {
			return err
		}

		if attempt == s.maxAttempts {
			break
		}

		backoff := s.calculateBackoff(attempt)
		s.logger.Warn("request failed, retrying",
			"endpoint", endpoint,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	return fmt.Errorf("after %d attempts: %w", s.maxAttempts, err)
}

func (s *Source) doRequest(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "CommentPulse/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return newRequestError(resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func (s *Source) calculateBackoff(attempt int) time.Duration {
	backoff := s.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > s.maxBackoff {
		backoff = s.maxBackoff
	}
	return backoff
}

func parseCount(raw string) int64 {
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
