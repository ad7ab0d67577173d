package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gtemgoua/property-manager-app/internal/domain"
	"github.com/gtemgoua/property-manager-app/pkg/logger"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultDashboardTTL bounds how stale a cached dashboard may be
const DefaultDashboardTTL = 5 * time.Minute

const dashboardPrefix = "dashboard:"

// DashboardCache stores computed dashboard metrics per date range.
// Cache failures are never surfaced to callers.
type DashboardCache interface {
	Get(ctx context.Context, from, to time.Time) (*domain.DashboardMetrics, bool)
	Set(ctx context.Context, from, to time.Time, m *domain.DashboardMetrics)
	Invalidate(ctx context.Context)
}

// DashboardKey returns the cache key for a range; ranges share a key per UTC day
// and per the current month, since MRR depends on it
func DashboardKey(from, to, now time.Time) string {
	return fmt.Sprintf("%s%s:%s:%s", dashboardPrefix,
		from.UTC().Format("20060102"), to.UTC().Format("20060102"), now.UTC().Format("200601"))
}

// RedisDashboardCache keeps dashboards in Redis as JSON
type RedisDashboardCache struct {
	client goredis.UniversalClient
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisDashboardCache creates a Redis backed cache
func NewRedisDashboardCache(client goredis.UniversalClient, ttl time.Duration) *RedisDashboardCache {
	if ttl <= 0 {
		ttl = DefaultDashboardTTL
	}
	return &RedisDashboardCache{client: client, ttl: ttl, now: time.Now}
}

func (c *RedisDashboardCache) Get(ctx context.Context, from, to time.Time) (*domain.DashboardMetrics, bool) {
	raw, err := c.client.Get(ctx, DashboardKey(from, to, c.now())).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			logger.WarnCtx(ctx, "Dashboard cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var m domain.DashboardMetrics
	if err := json.Unmarshal(raw, &m); err != nil {
		logger.WarnCtx(ctx, "Dashboard cache entry is corrupt", zap.Error(err))
		return nil, false
	}
	return &m, true
}

func (c *RedisDashboardCache) Set(ctx context.Context, from, to time.Time, m *domain.DashboardMetrics) {
	raw, err := json.Marshal(m)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, DashboardKey(from, to, c.now()), raw, c.ttl).Err(); err != nil {
		logger.WarnCtx(ctx, "Dashboard cache write failed", zap.Error(err))
	}
}

// Invalidate drops every cached dashboard
func (c *RedisDashboardCache) Invalidate(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, dashboardPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.WarnCtx(ctx, "Dashboard cache scan failed", zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.WarnCtx(ctx, "Dashboard cache invalidation failed", zap.Error(err))
	}
}

// NoopDashboardCache never hits
type NoopDashboardCache struct{}

func (NoopDashboardCache) Get(context.Context, time.Time, time.Time) (*domain.DashboardMetrics, bool) {
	return nil, false
}

func (NoopDashboardCache) Set(context.Context, time.Time, time.Time, *domain.DashboardMetrics) {}

func (NoopDashboardCache) Invalidate(context.Context) {}
