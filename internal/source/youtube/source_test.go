package youtube

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestSource(baseURL string) *Source {
	return New(Config{
		BaseURL:        baseURL,
		APIKey:         "test-key",
		Timeout:        5 * time.Second,
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}, testLogger())
}

func TestListVideos(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			assert.Equal(t, "UC123", r.URL.Query().Get("channelId"))
			assert.Equal(t, "test-key", r.URL.Query().Get("key"))
			fmt.Fprint(w, `{
				"items": [
					{"id": {"videoId": "v1"}},
					{"id": {"videoId": "v2"}}
				]
			}`)
		case "/videos":
			assert.Equal(t, "v1,v2", r.URL.Query().Get("id"))
			fmt.Fprint(w, `{
				"items": [
					{
						"id": "v1",
						"snippet": {
							"title": "First",
							"description": "about stuff",
							"publishedAt": "2026-08-01T10:00:00Z",
							"thumbnails": {"high": {"url": "https://img/v1.jpg"}}
						},
						"statistics": {"viewCount": "1200", "likeCount": "40", "commentCount": "7"}
					},
					{
						"id": "v2",
						"snippet": {"title": "Second", "publishedAt": "2026-08-02T10:00:00Z"},
						"statistics": {}
					}
				]
			}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	source := newTestSource(srv.URL)
	videos, err := source.ListVideos(context.Background(), "UC123", time.Now().AddDate(0, 0, -30), 50)

	require.NoError(t, err)
	require.Len(t, videos, 2)

	assert.Equal(t, "v1", videos[0].VideoID)
	assert.Equal(t, "UC123", videos[0].ChannelID)
	assert.Equal(t, "First", videos[0].Title)
	assert.Equal(t, int64(1200), videos[0].ViewCount)
	assert.Equal(t, int64(7), videos[0].CommentCount)
	require.NotNil(t, videos[0].ThumbnailURL)
	assert.Equal(t, "https://img/v1.jpg", *videos[0].ThumbnailURL)

	assert.Equal(t, "v2", videos[1].VideoID)
	assert.Zero(t, videos[1].ViewCount)
	assert.Nil(t, videos[1].Description)
}

func TestListVideos_Pagination(t *testing.T) {
	var searchCalls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			call := atomic.AddInt32(&searchCalls, 1)
			if call == 1 {
				assert.Empty(t, r.URL.Query().Get("pageToken"))
				fmt.Fprint(w, `{"nextPageToken": "page2", "items": [{"id": {"videoId": "v1"}}]}`)
			} else {
				assert.Equal(t, "page2", r.URL.Query().Get("pageToken"))
				fmt.Fprint(w, `{"items": [{"id": {"videoId": "v2"}}]}`)
			}
		case "/videos":
			fmt.Fprint(w, `{"items": [
				{"id": "v1", "snippet": {"title": "a", "publishedAt": "2026-08-01T10:00:00Z"}, "statistics": {}},
				{"id": "v2", "snippet": {"title": "b", "publishedAt": "2026-08-02T10:00:00Z"}, "statistics": {}}
			]}`)
		}
	}))
	defer srv.Close()

	source := newTestSource(srv.URL)
	videos, err := source.ListVideos(context.Background(), "UC123", time.Time{}, 50)

	require.NoError(t, err)
	assert.Len(t, videos, 2)
	assert.Equal(t, int32(2), searchCalls)
}

func TestListVideos_MaxVideosCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			// more results and a next page we must not follow past the cap
			assert.Equal(t, "2", r.URL.Query().Get("maxResults"))
			fmt.Fprint(w, `{"nextPageToken": "more", "items": [
				{"id": {"videoId": "v1"}},
				{"id": {"videoId": "v2"}}
			]}`)
		case "/videos":
			assert.Equal(t, "v1,v2", r.URL.Query().Get("id"))
			fmt.Fprint(w, `{"items": [
				{"id": "v1", "snippet": {"title": "a", "publishedAt": "2026-08-01T10:00:00Z"}, "statistics": {}},
				{"id": "v2", "snippet": {"title": "b", "publishedAt": "2026-08-02T10:00:00Z"}, "statistics": {}}
			]}`)
		}
	}))
	defer srv.Close()

	source := newTestSource(srv.URL)
	videos, err := source.ListVideos(context.Background(), "UC123", time.Time{}, 2)

	require.NoError(t, err)
	assert.Len(t, videos, 2)
}

func TestListVideos_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items": []}`)
	}))
	defer srv.Close()

	source := newTestSource(srv.URL)
	videos, err := source.ListVideos(context.Background(), "UC123", time.Time{}, 50)

	require.NoError(t, err)
	assert.Empty(t, videos)
}

func TestFetchComments_FlattensReplies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/commentThreads", r.URL.Path)
		assert.Equal(t, "v1", r.URL.Query().Get("videoId"))
		fmt.Fprint(w, `{
			"items": [
				{
					"snippet": {
						"topLevelComment": {
							"id": "c1",
							"snippet": {
								"authorDisplayName": "alice",
								"authorChannelId": {"value": "a1"},
								"textDisplay": "great video",
								"likeCount": 3,
								"publishedAt": "2026-08-10T12:00:00Z"
							}
						},
						"totalReplyCount": 1
					},
					"replies": {
						"comments": [
							{
								"id": "c2",
								"snippet": {
									"authorDisplayName": "bob",
									"authorChannelId": {"value": "a2"},
									"textDisplay": "agreed",
									"publishedAt": "2026-08-10T13:00:00Z"
								}
							}
						]
					}
				}
			]
		}`)
	}))
	defer srv.Close()

	source := newTestSource(srv.URL)
	comments, err := source.FetchComments(context.Background(), "v1", "UC123")

	require.NoError(t, err)
	require.Len(t, comments, 2)

	parent := comments[0]
	assert.Equal(t, "c1", parent.CommentID)
	assert.Equal(t, "alice", parent.AuthorName)
	assert.Equal(t, "a1", parent.AuthorChannelID)
	assert.Equal(t, int64(3), parent.LikeCount)
	assert.Equal(t, int64(1), parent.ReplyCount)
	assert.False(t, parent.IsReply)
	assert.Nil(t, parent.ParentID)

	reply := comments[1]
	assert.Equal(t, "c2", reply.CommentID)
	assert.True(t, reply.IsReply)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, "c1", *reply.ParentID)
}

func TestFetchComments_Disabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{
			"error": {
				"code": 403,
				"message": "The video identified by the videoId parameter has disabled comments.",
				"errors": [{"reason": "commentsDisabled"}]
			}
		}`)
	}))
	defer srv.Close()

	source := newTestSource(srv.URL)
	comments, err := source.FetchComments(context.Background(), "v1", "UC123")

	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestGet_RetriesServerErrors(t *testing.T) {
	var calls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"items": []}`)
	}))
	defer srv.Close()

	source := newTestSource(srv.URL)
	_, err := source.FetchComments(context.Background(), "v1", "UC123")

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls)
}

func TestGet_NoRetryOnClientError(t *testing.T) {
	var calls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error": {"code": 400, "message": "key invalid", "errors": [{"reason": "badRequest"}]}}`)
	}))
	defer srv.Close()

	source := newTestSource(srv.URL)
	_, err := source.FetchComments(context.Background(), "v1", "UC123")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "key invalid")
	assert.Equal(t, int32(1), calls)
}

func TestGet_ExhaustsAttempts(t *testing.T) {
	var calls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	source := newTestSource(srv.URL)
	_, err := source.FetchComments(context.Background(), "v1", "UC123")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, int32(3), calls)
}

func TestCalculateBackoff(t *testing.T) {
	source := New(Config{
		InitialBackoff: time.Second,
		MaxBackoff:     5 * time.Second,
	}, testLogger())

	assert.Equal(t, time.Second, source.calculateBackoff(1))
	assert.Equal(t, 2*time.Second, source.calculateBackoff(2))
	assert.Equal(t, 4*time.Second, source.calculateBackoff(3))
	assert.Equal(t, 5*time.Second, source.calculateBackoff(4))
}

func TestParseCount(t *testing.T) {
	assert.Equal(t, int64(42), parseCount("42"))
	assert.Equal(t, int64(0), parseCount(""))
	assert.Equal(t, int64(0), parseCount("not-a-number"))
}
