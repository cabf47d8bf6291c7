package youtube

import "time"

// Response shapes for the YouTube Data API v3 endpoints this source uses.

type searchResponse struct {
	NextPageToken string       `json:"nextPageToken"`
	Items         []searchItem `json:"items"`
}

type searchItem struct {
	ID searchItemID `json:"id"`
}

type searchItemID struct {
	VideoID string `json:"videoId"`
}

type videosResponse struct {
	Items []videoItem `json:"items"`
}

type videoItem struct {
	ID         string          `json:"id"`
	Snippet    videoSnippet    `json:"snippet"`
	Statistics videoStatistics `json:"statistics"`
}

type videoSnippet struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	PublishedAt time.Time  `json:"publishedAt"`
	Thumbnails  thumbnails `json:"thumbnails"`
}

type thumbnails struct {
	High thumbnail `json:"high"`
}

type thumbnail struct {
	URL string `json:"url"`
}

// The API returns statistics counters as decimal strings.
type videoStatistics struct {
	ViewCount    string `json:"viewCount"`
	LikeCount    string `json:"likeCount"`
	CommentCount string `json:"commentCount"`
}

type commentThreadsResponse struct {
	NextPageToken string          `json:"nextPageToken"`
	Items         []commentThread `json:"items"`
}

type commentThread struct {
	Snippet threadSnippet  `json:"snippet"`
	Replies *threadReplies `json:"replies"`
}

type threadSnippet struct {
	TopLevelComment commentResource `json:"topLevelComment"`
	TotalReplyCount int64           `json:"totalReplyCount"`
}

type threadReplies struct {
	Comments []commentResource `json:"comments"`
}

type commentResource struct {
	ID      string         `json:"id"`
	Snippet commentSnippet `json:"snippet"`
}

type commentSnippet struct {
	AuthorDisplayName     string          `json:"authorDisplayName"`
	AuthorProfileImageURL string          `json:"authorProfileImageUrl"`
	AuthorChannelID       authorChannelID `json:"authorChannelId"`
	TextDisplay           string          `json:"textDisplay"`
	LikeCount             int64           `json:"likeCount"`
	PublishedAt           time.Time       `json:"publishedAt"`
	UpdatedAt             *time.Time      `json:"updatedAt"`
}

type authorChannelID struct {
	Value string `json:"value"`
}

type apiErrorResponse struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    int              `json:"code"`
	Message string           `json:"message"`
	Errors  []apiErrorDetail `json:"errors"`
}

type apiErrorDetail struct {
	Reason string `json:"reason"`
}
