package domain

import "time"

// Sentiment labels produced by the classifier.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Comment is one comment from a video's thread. ParentID is set for replies.
// Classification fields (Sentiment, SentimentScore, Tags) are filled in by
// the analyzer before persistence; everything else comes from the source.
type Comment struct {
	CommentID          string
	VideoID            string
	ChannelID          string
	UserID             string
	AuthorName         string
	AuthorChannelID    string
	AuthorProfileImage *string
	Text               string
	LikeCount          int64
	ReplyCount         int64
	PublishedAt        time.Time
	UpdatedAt          *time.Time
	ParentID           *string
	IsReply            bool

	Sentiment      Sentiment
	SentimentScore float64
	Tags           []string
	IsBookmarked   bool
}
