package youtube

import (
	"errors"
	"time"
)

// ErrVideoNotFound is returned when a detail lookup matches no video.
var ErrVideoNotFound = errors.New("youtube: video not found")

// ErrCommentsDisabled is returned when the API refuses comment access for a
// video (comments turned off, or similar permission errors). Callers treat
// it as "zero comments", never as a hard failure.
var ErrCommentsDisabled = errors.New("youtube: comments disabled for video")

// VideoDetail is the validated, defaulted projection of one videos.list item.
// Optional fields the API omitted are nil; missing durations already
// defaulted to PT0S upstream of parsing.
type VideoDetail struct {
	VideoKey     string
	ChannelID    string
	ChannelTitle string
	Title        string
	Description  string
	ThumbnailURL *string
	CategoryID   string
	Language     *string
	DurationSec  int64
	PublishedAt  time.Time
	Tags         []string

	ViewCount    *int64
	LikeCount    *int64
	CommentCount *int64
}

// Comment is one top-level comment as returned by commentThreads.list.
type Comment struct {
	CommentID   string
	Author      string
	Text        string
	LikeCount   int64
	PublishedAt time.Time
}

// CommentPage is one page of a comment-thread listing plus the continuation
// token for the next page ("" when the listing is exhausted).
type CommentPage struct {
	Comments      []Comment
	NextPageToken string
}
