package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/2024-SMHRD-KDT-BigData-32/-AscenTube/internal/nlp"
	"github.com/2024-SMHRD-KDT-BigData-32/-AscenTube/pkg/hash"
)

// PredictionCacheTTL bounds how long a classification result is reused
// before the comment is sent through the models again.
const PredictionCacheTTL = 7 * 24 * time.Hour

// Cache is a Redis cache-aside layer for classifier predictions, keyed by a
// hash of the exact classifier input. Popular videos are re-crawled daily
// with largely unchanged relevance-ordered comments, so cache hits skip the
// most expensive step of the pipeline.
type Cache struct {
	rdb *redis.Client
}

// NewCache creates a Cache. If redisURL is empty or the connection fails,
// the returned Cache has a nil client and every operation is a no-op.
func NewCache(redisURL string) *Cache {
	if redisURL == "" {
		log.Println("redis: no URL configured, prediction caching disabled")
		return &Cache{}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("redis: invalid URL %q, prediction caching disabled: %v", redisURL, err)
		return &Cache{}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("redis: connection failed, prediction caching disabled: %v", err)
		return &Cache{}
	}

	log.Println("redis: connected, prediction caching enabled")
	return &Cache{rdb: rdb}
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (c *Cache) Client() *redis.Client {
	return c.rdb
}

// GetPrediction returns the cached prediction for a classifier input, or nil
// on a miss (or when caching is disabled).
func (c *Cache) GetPrediction(ctx context.Context, prefixedContent string) (*nlp.Prediction, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, predictionKey(prefixedContent)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var pred nlp.Prediction
	if err := json.Unmarshal(data, &pred); err != nil {
		return nil, err
	}
	return &pred, nil
}

// SetPrediction stores a prediction for reuse across crawl runs. Sentinel
// results are not cached so a recovered model server gets a fresh chance.
func (c *Cache) SetPrediction(ctx context.Context, prefixedContent string, pred nlp.Prediction) error {
	if c.rdb == nil {
		return nil
	}
	if pred.Sentiment == nlp.LabelExcept || pred.SpeechAct == nlp.LabelExcept {
		return nil
	}
	b, err := json.Marshal(pred)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, predictionKey(prefixedContent), b, PredictionCacheTTL).Err()
}

func predictionKey(prefixedContent string) string {
	return "pred:" + hash.SHA256Hex(prefixedContent)
}
