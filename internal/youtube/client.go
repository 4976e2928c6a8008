package youtube

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

// commentPageSize is the API maximum for commentThreads.list.
const commentPageSize = 100

// Client is a thin adapter over the YouTube Data API v3. It validates and
// defaults the loosely-typed API payloads at this single boundary so the
// rest of the pipeline works with explicit optional fields.
type Client struct {
	svc *yt.Service
}

// NewClient builds a Data API client authenticated with an API key.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("youtube: API key is required")
	}
	svc, err := yt.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("build youtube service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// VideoDetail fetches snippet, contentDetails and statistics for one video.
// Returns ErrVideoNotFound when the response contains no item.
func (c *Client) VideoDetail(ctx context.Context, videoKey string) (*VideoDetail, error) {
	resp, err := c.svc.Videos.
		List([]string{"snippet", "contentDetails", "statistics"}).
		Id(videoKey).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("videos.list %s: %w", videoKey, err)
	}
	if len(resp.Items) == 0 {
		return nil, ErrVideoNotFound
	}

	item := resp.Items[0]
	sn := item.Snippet
	if sn == nil {
		return nil, fmt.Errorf("videos.list %s: item without snippet", videoKey)
	}

	detail := &VideoDetail{
		VideoKey:     videoKey,
		ChannelID:    sn.ChannelId,
		ChannelTitle: sn.ChannelTitle,
		Title:        sn.Title,
		Description:  sn.Description,
		CategoryID:   sn.CategoryId,
		Tags:         sn.Tags,
	}

	if sn.DefaultAudioLanguage != "" {
		lang := sn.DefaultAudioLanguage
		detail.Language = &lang
	}
	if sn.Thumbnails != nil && sn.Thumbnails.High != nil && sn.Thumbnails.High.Url != "" {
		url := sn.Thumbnails.High.Url
		detail.ThumbnailURL = &url
	}

	publishedAt, err := time.Parse(time.RFC3339, sn.PublishedAt)
	if err != nil {
		return nil, fmt.Errorf("videos.list %s: parse publishedAt %q: %w", videoKey, sn.PublishedAt, err)
	}
	detail.PublishedAt = publishedAt

	iso := "PT0S"
	if item.ContentDetails != nil && item.ContentDetails.Duration != "" {
		iso = item.ContentDetails.Duration
	}
	detail.DurationSec, err = ParseISODuration(iso)
	if err != nil {
		return nil, fmt.Errorf("videos.list %s: %w", videoKey, err)
	}

	// Absent count fields decode to zero in the generated statistics struct;
	// only a fully missing statistics part is detectable here. A disabled
	// comment section is caught later, during comment collection.
	if st := item.Statistics; st != nil {
		view := int64(st.ViewCount)
		like := int64(st.LikeCount)
		cmt := int64(st.CommentCount)
		detail.ViewCount = &view
		detail.LikeCount = &like
		detail.CommentCount = &cmt
	}

	return detail, nil
}

// CommentPage fetches one relevance-ordered page of top-level comments.
// A 403 from the API (comments disabled on the video) maps to
// ErrCommentsDisabled.
func (c *Client) CommentPage(ctx context.Context, videoKey, pageToken string) (*CommentPage, error) {
	call := c.svc.CommentThreads.
		List([]string{"snippet"}).
		VideoId(videoKey).
		MaxResults(commentPageSize).
		Order("relevance").
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == 403 {
			return nil, ErrCommentsDisabled
		}
		return nil, fmt.Errorf("commentThreads.list %s: %w", videoKey, err)
	}

	page := &CommentPage{NextPageToken: resp.NextPageToken}
	for _, item := range resp.Items {
		if item.Snippet == nil || item.Snippet.TopLevelComment == nil {
			continue
		}
		top := item.Snippet.TopLevelComment
		if top.Snippet == nil {
			continue
		}

		cm := Comment{
			CommentID: top.Id,
			Author:    top.Snippet.AuthorDisplayName,
			Text:      top.Snippet.TextOriginal,
			LikeCount: top.Snippet.LikeCount,
		}
		if ts, err := time.Parse(time.RFC3339, top.Snippet.PublishedAt); err == nil {
			cm.PublishedAt = ts
		}
		page.Comments = append(page.Comments, cm)
	}
	return page, nil
}

// RecentVideoKeys lists a channel's most recent video keys, newest first.
func (c *Client) RecentVideoKeys(ctx context.Context, channelID string, max int64) ([]string, error) {
	resp, err := c.svc.Search.
		List([]string{"snippet"}).
		ChannelId(channelID).
		Order("date").
		Type("video").
		MaxResults(max).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("search.list channel %s: %w", channelID, err)
	}

	var keys []string
	for _, item := range resp.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			keys = append(keys, item.Id.VideoId)
		}
	}
	return keys, nil
}

// PopularVideoKeys lists the most-popular video keys for one category in the
// given region, popularity order.
func (c *Client) PopularVideoKeys(ctx context.Context, categoryID, region string, max int64) ([]string, error) {
	resp, err := c.svc.Videos.
		List([]string{"snippet"}).
		Chart("mostPopular").
		RegionCode(region).
		VideoCategoryId(categoryID).
		MaxResults(max).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("videos.list mostPopular category %s: %w", categoryID, err)
	}

	var keys []string
	for _, item := range resp.Items {
		if item.Id != "" {
			keys = append(keys, item.Id)
		}
	}
	return keys, nil
}
