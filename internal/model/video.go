package model

import (
	"strings"
	"time"
)

// Video represents a crawled video. VideoKey is the natural key from the
// source API; VideoID is the store-assigned surrogate key that dependent
// rows (stats, comments) reference.
type Video struct {
	VideoID      int64     `json:"videoId"`
	VideoKey     string    `json:"videoKey"`
	ChannelID    string    `json:"channelId"`
	Title        *string   `json:"title,omitempty"`
	Description  *string   `json:"description,omitempty"`
	ThumbnailURL *string   `json:"thumbnailUrl,omitempty"`
	CategoryID   *string   `json:"categoryId,omitempty"`
	Language     *string   `json:"language,omitempty"`
	Public       bool      `json:"public"`
	DurationSec  int64     `json:"durationSeconds"`
	PublishedAt  time.Time `json:"publishedAt"`
	Tags         *string   `json:"tags,omitempty"`
}

// VideoStats is one append-only statistics snapshot for a video. Counts are
// nil when the source API returned no statistics at all, and the comment
// count is nil when the video's comment section is disabled. A hidden like
// count cannot be told apart from a true zero in the detail payload and is
// stored as reported.
type VideoStats struct {
	VideoID      int64     `json:"videoId"`
	CapturedAt   time.Time `json:"capturedAt"`
	ViewCount    *int64    `json:"viewCount,omitempty"`
	LikeCount    *int64    `json:"likeCount,omitempty"`
	CommentCount *int64    `json:"commentCount,omitempty"`
}

// JoinTags flattens a tag list into the single comma-joined column value.
// An empty list maps to NULL rather than an empty string.
func JoinTags(tags []string) *string {
	if len(tags) == 0 {
		return nil
	}
	joined := strings.Join(tags, ",")
	return &joined
}
