package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/2024-SMHRD-KDT-BigData-32/-AscenTube/internal/model"
)

// ErrVideoMissing is returned when a surrogate-id lookup finds no row for a
// video key that was just upserted.
var ErrVideoMissing = errors.New("repository: video not found by key")

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, so the
// same Store works against the pool or inside a transaction/savepoint.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Store exposes the named-field upsert operations of the crawl pipeline.
// Transaction scope is owned by the caller: the crawl driver hands in a
// transaction-bound Querier and decides when to commit or roll back.
type Store struct {
	q Querier
}

func NewStore(q Querier) *Store {
	return &Store{q: q}
}

// UpsertChannel inserts a channel or refreshes its mutable fields
// (name, URL) when the channel already exists.
func (s *Store) UpsertChannel(ctx context.Context, ch model.Channel) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO yt_channels (channel_id, channel_name, channel_url)
		VALUES ($1, $2, $3)
		ON CONFLICT (channel_id) DO UPDATE
		SET channel_name = EXCLUDED.channel_name,
		    channel_url  = EXCLUDED.channel_url`,
		ch.ChannelID, ch.Name, ch.URL)
	if err != nil {
		return fmt.Errorf("upsert channel %s: %w", ch.ChannelID, err)
	}
	return nil
}

// UpsertVideo inserts a video or refreshes its mutable fields (title,
// description, tags). Immutable fields such as the publish timestamp are set
// only on first insert.
func (s *Store) UpsertVideo(ctx context.Context, v model.Video) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO videos (video_key, channel_id, title, description, thumbnail_url,
		                    category_id, language, is_public, duration_seconds,
		                    published_at, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (video_key) DO UPDATE
		SET title       = EXCLUDED.title,
		    description = EXCLUDED.description,
		    tags        = EXCLUDED.tags`,
		v.VideoKey, v.ChannelID, v.Title, v.Description, v.ThumbnailURL,
		v.CategoryID, v.Language, v.Public, v.DurationSec,
		v.PublishedAt, v.Tags)
	if err != nil {
		return fmt.Errorf("upsert video %s: %w", v.VideoKey, err)
	}
	return nil
}

// VideoIDByKey resolves the store-assigned surrogate id for a video's
// natural key. Stats and comment rows depend on it.
func (s *Store) VideoIDByKey(ctx context.Context, videoKey string) (int64, error) {
	var id int64
	err := s.q.QueryRow(ctx,
		`SELECT video_id FROM videos WHERE video_key = $1`, videoKey).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrVideoMissing
	}
	if err != nil {
		return 0, fmt.Errorf("lookup video id for %s: %w", videoKey, err)
	}
	return id, nil
}

// InsertStats appends one statistics snapshot. Snapshots form a time series
// and are never updated.
func (s *Store) InsertStats(ctx context.Context, st model.VideoStats) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO video_stats (video_id, captured_at, view_count, like_count, comment_count)
		VALUES ($1, $2, $3, $4, $5)`,
		st.VideoID, st.CapturedAt, st.ViewCount, st.LikeCount, st.CommentCount)
	if err != nil {
		return fmt.Errorf("insert stats for video %d: %w", st.VideoID, err)
	}
	return nil
}

// UpsertComments writes one video's annotated comment batch in a single
// round trip. On conflict only the like count and the classification-derived
// fields are refreshed; authorship, content and timestamps stay as first
// captured.
func (s *Store) UpsertComments(ctx context.Context, comments []model.Comment) error {
	if len(comments) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, cm := range comments {
		batch.Queue(`
			INSERT INTO comments (comment_id, video_id, author, content, like_count,
			                      published_at, crawled_at, category_id, preprocessed,
			                      prefixed_content, sentiment, speech_act)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (comment_id) DO UPDATE
			SET like_count       = EXCLUDED.like_count,
			    preprocessed     = EXCLUDED.preprocessed,
			    prefixed_content = EXCLUDED.prefixed_content,
			    sentiment        = EXCLUDED.sentiment,
			    speech_act       = EXCLUDED.speech_act`,
			cm.CommentID, cm.VideoID, cm.Author, cm.Content, cm.LikeCount,
			cm.PublishedAt, cm.CrawledAt, cm.CategoryID, cm.Preprocessed,
			cm.PrefixedContent, cm.Sentiment, cm.SpeechAct)
	}

	results := s.q.SendBatch(ctx, batch)
	defer results.Close()

	for i := range comments {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert comment %s: %w", comments[i].CommentID, err)
		}
	}
	return results.Close()
}

// FavoriteChannelIDs reads the distinct channel ids configured for phase 1
// of the crawl. The table is maintained by the main application and consumed
// read-only here.
func (s *Store) FavoriteChannelIDs(ctx context.Context) ([]string, error) {
	rows, err := s.q.Query(ctx, `SELECT DISTINCT channel_id FROM favorite_channels`)
	if err != nil {
		return nil, fmt.Errorf("list favorite channels: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
