package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"sales_dashboard/internal/domain"
	"sales_dashboard/internal/logger"

	redis "github.com/redis/go-redis/v9"
)

const summaryKey = "dashboard:summary"

// SummaryCache keeps the dashboard cards in Redis for a short TTL. All methods
// are no-ops on a cache built with a nil client.
type SummaryCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{client: client, key: summaryKey, ttl: ttl}
}

func (c *SummaryCache) Get(ctx context.Context) (*domain.DashboardSummary, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("summary cache read failed", "error", err)
		}
		return nil, false
	}
	var s domain.DashboardSummary
	if err := json.Unmarshal(raw, &s); err != nil {
		logger.Warn("summary cache entry corrupt", "error", err)
		return nil, false
	}
	return &s, true
}

func (c *SummaryCache) Set(ctx context.Context, s *domain.DashboardSummary) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		logger.Warn("summary cache write failed", "error", err)
	}
}

func (c *SummaryCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		logger.Warn("summary cache invalidate failed", "error", err)
	}
}
