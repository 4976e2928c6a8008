package model

import "time"

// Comment represents one top-level comment on a video.
//
// Author, content and timestamps are immutable once captured; only the like
// count and the classification-derived fields are refreshed when the same
// comment is seen again. PrefixedContent holds the exact string that was fed
// to the classifiers, or nil when the comment was excluded from
// classification.
type Comment struct {
	CommentID       string    `json:"commentId"`
	VideoID         int64     `json:"videoId"`
	Author          *string   `json:"author,omitempty"`
	Content         *string   `json:"content,omitempty"`
	LikeCount       int64     `json:"likeCount"`
	PublishedAt     time.Time `json:"publishedAt"`
	CrawledAt       time.Time `json:"crawledAt"`
	CategoryID      *string   `json:"categoryId,omitempty"`
	Preprocessed    bool      `json:"preprocessed"`
	PrefixedContent *string   `json:"prefixedContent,omitempty"`
	Sentiment       string    `json:"sentiment"`
	SpeechAct       string    `json:"speechAct"`
}
