package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"formbox/internal/model"
)

// StatsCache is a short-lived read-side cache for submission statistics.
// Rate-limit and draft state never live here; only the statistics response,
// which may be a few seconds stale, is cached.
type StatsCache interface {
	Get(ctx context.Context, formID string) (*model.SubmissionStats, error)
	Set(ctx context.Context, formID string, stats *model.SubmissionStats) error
	Invalidate(ctx context.Context, formID string) error
}

const statsTTL = 30 * time.Second

type statsCache struct {
	client *redis.Client
}

func NewStatsCache(client *redis.Client) StatsCache {
	return &statsCache{
		client: client,
	}
}

func statsKey(formID string) string {
	if formID == "" {
		return "stats:submissions:all"
	}
	return "stats:submissions:" + formID
}

// Get returns nil without error on a cache miss.
func (c *statsCache) Get(ctx context.Context, formID string) (*model.SubmissionStats, error) {
	data, err := c.client.Get(ctx, statsKey(formID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var stats model.SubmissionStats
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *statsCache) Set(ctx context.Context, formID string, stats *model.SubmissionStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, statsKey(formID), data, statsTTL).Err()
}

// Invalidate drops both the form-scoped entry and the unfiltered one, since
// a new submission changes both.
func (c *statsCache) Invalidate(ctx context.Context, formID string) error {
	keys := []string{statsKey("")}
	if formID != "" {
		keys = append(keys, statsKey(formID))
	}
	return c.client.Del(ctx, keys...).Err()
}
