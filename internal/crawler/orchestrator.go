package crawler

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/2024-SMHRD-KDT-BigData-32/-AscenTube/internal/metrics"
	"github.com/2024-SMHRD-KDT-BigData-32/-AscenTube/internal/model"
	"github.com/2024-SMHRD-KDT-BigData-32/-AscenTube/internal/nlp"
	"github.com/2024-SMHRD-KDT-BigData-32/-AscenTube/internal/service"
	"github.com/2024-SMHRD-KDT-BigData-32/-AscenTube/internal/youtube"
)

// commentTarget is how many comments are collected per video before
// pagination stops.
const commentTarget = 200

// Source lists candidate videos and fetches their details and comments.
// *youtube.Client is the production implementation.
type Source interface {
	VideoDetail(ctx context.Context, videoKey string) (*youtube.VideoDetail, error)
	CommentPage(ctx context.Context, videoKey, pageToken string) (*youtube.CommentPage, error)
	RecentVideoKeys(ctx context.Context, channelID string, max int64) ([]string, error)
	PopularVideoKeys(ctx context.Context, categoryID, region string, max int64) ([]string, error)
}

// Store is the persistence surface one video's ingestion needs. The driver
// binds it to the current transaction or savepoint;
// *repository.Store is the production implementation.
type Store interface {
	UpsertChannel(ctx context.Context, ch model.Channel) error
	UpsertVideo(ctx context.Context, v model.Video) error
	VideoIDByKey(ctx context.Context, videoKey string) (int64, error)
	InsertStats(ctx context.Context, st model.VideoStats) error
	UpsertComments(ctx context.Context, comments []model.Comment) error
	FavoriteChannelIDs(ctx context.Context) ([]string, error)
}

// Predictor classifies one prefixed comment. *nlp.Classifier is the
// production implementation; Predict never fails, it degrades to sentinels.
type Predictor interface {
	Predict(ctx context.Context, text string) nlp.Prediction
}

// Orchestrator runs the per-video ingestion workflow. One Orchestrator is
// built per crawl run and carries the run-scoped seen-set, so a video listed
// by several targets is ingested once.
type Orchestrator struct {
	source    Source
	predictor Predictor
	cache     *service.Cache
	seen      map[string]struct{}
	log       zerolog.Logger
}

func NewOrchestrator(source Source, predictor Predictor, cache *service.Cache) *Orchestrator {
	return &Orchestrator{
		source:    source,
		predictor: predictor,
		cache:     cache,
		seen:      make(map[string]struct{}),
		log:       log.With().Str("component", "orchestrator").Logger(),
	}
}

// ProcessVideo ingests one video: detail fetch, channel/video upsert,
// surrogate-id resolution, stats snapshot, comment collection, annotation
// and batch upsert. Already-seen keys and detail misses are silent no-ops.
// Any returned error means the video was abandoned; the caller rolls back
// the video's savepoint and continues.
func (o *Orchestrator) ProcessVideo(ctx context.Context, store Store, videoKey, categoryHint string) error {
	if _, ok := o.seen[videoKey]; ok {
		o.log.Debug().Str("video", videoKey).Msg("already processed in this run, skipping")
		return nil
	}

	detail, err := o.source.VideoDetail(ctx, videoKey)
	if errors.Is(err, youtube.ErrVideoNotFound) {
		o.log.Warn().Str("video", videoKey).Msg("no detail returned for video, skipping")
		return nil
	}
	if err != nil {
		return err
	}

	category := detail.CategoryID
	if category == "" {
		category = categoryHint
	}

	err = store.UpsertChannel(ctx, model.Channel{
		ChannelID: detail.ChannelID,
		Name:      detail.ChannelTitle,
		URL:       "https://www.youtube.com/channel/" + detail.ChannelID,
	})
	if err != nil {
		return err
	}

	err = store.UpsertVideo(ctx, model.Video{
		VideoKey:     videoKey,
		ChannelID:    detail.ChannelID,
		Title:        optStr(detail.Title),
		Description:  optStr(detail.Description),
		ThumbnailURL: detail.ThumbnailURL,
		CategoryID:   optStr(category),
		Language:     detail.Language,
		Public:       true,
		DurationSec:  detail.DurationSec,
		PublishedAt:  detail.PublishedAt,
		Tags:         model.JoinTags(detail.Tags),
	})
	if err != nil {
		return err
	}

	// Dependent rows need the surrogate id; it only exists after the upsert.
	videoID, err := store.VideoIDByKey(ctx, videoKey)
	if err != nil {
		return err
	}

	comments, commentsDisabled := o.collectComments(ctx, videoKey)

	now := time.Now().UTC()
	stats := model.VideoStats{
		VideoID:      videoID,
		CapturedAt:   now,
		ViewCount:    detail.ViewCount,
		LikeCount:    detail.LikeCount,
		CommentCount: detail.CommentCount,
	}
	if commentsDisabled {
		// The detail payload reports a disabled comment section as a zero
		// count; store NULL instead.
		stats.CommentCount = nil
	}
	if err := store.InsertStats(ctx, stats); err != nil {
		return err
	}

	if err := store.UpsertComments(ctx, o.annotate(ctx, videoID, category, comments, now)); err != nil {
		return err
	}

	o.seen[videoKey] = struct{}{}
	metrics.Metrics.VideosProcessed.Inc()
	o.log.Info().Str("video", videoKey).Int("comments", len(comments)).Msg("video ingested")
	return nil
}

// collectComments paginates relevance-ordered comment threads until the
// target count is reached or the listing is exhausted. Comments are deduped
// by natural key within the pass: relevance ordering may shift between pages
// and hand back comments already seen. Comments-disabled videos yield an
// empty set and report disabled=true; any other page error stops pagination
// and keeps what was already collected.
func (o *Orchestrator) collectComments(ctx context.Context, videoKey string) ([]youtube.Comment, bool) {
	var collected []youtube.Comment
	seen := make(map[string]struct{})
	pageToken := ""

	for len(collected) < commentTarget {
		page, err := o.source.CommentPage(ctx, videoKey, pageToken)
		if err != nil {
			if errors.Is(err, youtube.ErrCommentsDisabled) {
				o.log.Warn().Str("video", videoKey).Msg("comments disabled, storing none")
				return nil, true
			}
			o.log.Error().Err(err).Str("video", videoKey).Msg("comment page fetch failed, keeping partial set")
			break
		}

		for _, cm := range page.Comments {
			if _, dup := seen[cm.CommentID]; dup {
				continue
			}
			seen[cm.CommentID] = struct{}{}
			collected = append(collected, cm)
			if len(collected) >= commentTarget {
				break
			}
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	metrics.Metrics.CommentsCollected.Add(float64(len(collected)))
	return collected, false
}

// annotate builds the comment rows: Korean comments get the prefixed
// classifier input and a prediction, everything else is stored with the
// exclusion sentinel and no normalized text.
func (o *Orchestrator) annotate(ctx context.Context, videoID int64, category string, comments []youtube.Comment, crawledAt time.Time) []model.Comment {
	rows := make([]model.Comment, 0, len(comments))
	for _, cm := range comments {
		row := model.Comment{
			CommentID:   cm.CommentID,
			VideoID:     videoID,
			Author:      optStr(cm.Author),
			Content:     optStr(cm.Text),
			LikeCount:   cm.LikeCount,
			PublishedAt: cm.PublishedAt,
			CrawledAt:   crawledAt,
			CategoryID:  optStr(category),
			Sentiment:   nlp.LabelExcept,
			SpeechAct:   nlp.LabelExcept,
		}

		if cm.Text != "" && nlp.ContainsKorean(cm.Text) {
			prefixed := nlp.PrefixedContent(category, cm.Text)
			row.Preprocessed = true
			row.PrefixedContent = &prefixed
			pred := o.predict(ctx, prefixed)
			row.Sentiment = pred.Sentiment
			row.SpeechAct = pred.SpeechAct
		}

		rows = append(rows, row)
	}
	return rows
}

// predict runs cache-aside around the classifier.
func (o *Orchestrator) predict(ctx context.Context, prefixed string) nlp.Prediction {
	if o.cache != nil {
		if cached, err := o.cache.GetPrediction(ctx, prefixed); err == nil && cached != nil {
			metrics.Metrics.PredictionCacheHit.Inc()
			return *cached
		}
	}

	pred := o.predictor.Predict(ctx, prefixed)
	metrics.Metrics.CommentsClassified.Inc()

	if o.cache != nil {
		if err := o.cache.SetPrediction(ctx, prefixed, pred); err != nil {
			o.log.Warn().Err(err).Msg("prediction cache write failed")
		}
	}
	return pred
}

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
