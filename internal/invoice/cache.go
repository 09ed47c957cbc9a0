package invoice

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const summaryCacheKey = "invoices:summary"

// RedisSummaryCache caches the invoice summary in Redis with a TTL.
// Cache failures are silent: the summary is always recomputable.
type RedisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSummaryCache constructs a summary cache.
func NewRedisSummaryCache(client *redis.Client, ttl time.Duration) *RedisSummaryCache {
	return &RedisSummaryCache{client: client, ttl: ttl}
}

// GetSummary implements SummaryCache.
func (c *RedisSummaryCache) GetSummary(ctx context.Context) (*Summary, bool) {
	raw, err := c.client.Get(ctx, summaryCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var summary Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, false
	}
	return &summary, true
}

// SetSummary implements SummaryCache.
func (c *RedisSummaryCache) SetSummary(ctx context.Context, summary Summary) {
	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, summaryCacheKey, raw, c.ttl).Err()
}

// Invalidate implements SummaryCache.
func (c *RedisSummaryCache) Invalidate(ctx context.Context) {
	_ = c.client.Del(ctx, summaryCacheKey).Err()
}
