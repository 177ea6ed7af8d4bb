package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
)

const (
	adminStatsKey   = "stats:admin"
	userStatsKeyFmt = "stats:user:%d"
)

// StatsCache keeps dashboard aggregates in Redis for a short TTL. Every
// failure degrades to a cache miss; the dashboard never depends on Redis
// being reachable.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewStatsCache builds the cache. A nil client disables caching.
func NewStatsCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *StatsCache {
	return &StatsCache{client: client, ttl: ttl, logger: logger}
}

// GetAdmin returns the cached admin dashboard, or nil on miss.
func (c *StatsCache) GetAdmin(ctx context.Context) *domain.AdminDashboardStats {
	var stats domain.AdminDashboardStats
	if !c.get(ctx, adminStatsKey, &stats) {
		return nil
	}
	return &stats
}

// SetAdmin stores the admin dashboard.
func (c *StatsCache) SetAdmin(ctx context.Context, stats *domain.AdminDashboardStats) {
	c.set(ctx, adminStatsKey, stats)
}

// GetUser returns the cached per-user dashboard, or nil on miss.
func (c *StatsCache) GetUser(ctx context.Context, userID int64) *domain.UserDashboardStats {
	var stats domain.UserDashboardStats
	if !c.get(ctx, fmt.Sprintf(userStatsKeyFmt, userID), &stats) {
		return nil
	}
	return &stats
}

// SetUser stores the per-user dashboard.
func (c *StatsCache) SetUser(ctx context.Context, userID int64, stats *domain.UserDashboardStats) {
	c.set(ctx, fmt.Sprintf(userStatsKeyFmt, userID), stats)
}

func (c *StatsCache) get(ctx context.Context, key string, dest any) bool {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("stats cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.Debug("stats cache decode failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *StatsCache) set(ctx context.Context, key string, value any) {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Debug("stats cache write failed", zap.String("key", key), zap.Error(err))
	}
}
