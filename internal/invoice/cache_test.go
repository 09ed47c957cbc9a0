package invoice

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisSummaryCacheRoundTrip(t *testing.T) {
	_, client := newTestRedis(t)
	cache := NewRedisSummaryCache(client, time.Minute)
	ctx := context.Background()

	_, ok := cache.GetSummary(ctx)
	assert.False(t, ok)

	want := Summary{
		Statuses:    []StatusSummary{{Status: StatusDraft, Count: 2, TotalAmount: 1130, BalanceDue: 1130}},
		Count:       2,
		TotalAmount: 1130,
		BalanceDue:  1130,
	}
	cache.SetSummary(ctx, want)

	got, ok := cache.GetSummary(ctx)
	require.True(t, ok)
	assert.Equal(t, want, *got)
}

func TestRedisSummaryCacheExpiry(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewRedisSummaryCache(client, time.Minute)
	ctx := context.Background()

	cache.SetSummary(ctx, Summary{Count: 1})
	mr.FastForward(2 * time.Minute)

	_, ok := cache.GetSummary(ctx)
	assert.False(t, ok)
}

func TestRedisSummaryCacheInvalidate(t *testing.T) {
	_, client := newTestRedis(t)
	cache := NewRedisSummaryCache(client, time.Minute)
	ctx := context.Background()

	cache.SetSummary(ctx, Summary{Count: 1})
	cache.Invalidate(ctx)

	_, ok := cache.GetSummary(ctx)
	assert.False(t, ok)
}

func TestRedisSummaryCacheConnectionLoss(t *testing.T) {
	mr, client := newTestRedis(t)
	cache := NewRedisSummaryCache(client, time.Minute)
	ctx := context.Background()

	mr.Close()

	// Failures are silent: callers recompute instead of erroring.
	cache.SetSummary(ctx, Summary{Count: 1})
	_, ok := cache.GetSummary(ctx)
	assert.False(t, ok)
	cache.Invalidate(ctx)
}
