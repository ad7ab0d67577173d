package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gtemgoua/property-manager-app/pkg/logger"
	"github.com/gtemgoua/property-manager-app/pkg/response"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// RequestsPerSecond is the refill rate per client IP (0 = unlimited)
	RequestsPerSecond int
	// BurstSize is the token bucket capacity
	BurstSize int
	// RedisClient, when set, shares buckets across instances
	RedisClient *redis.Client
	// KeyPrefix for Redis keys
	KeyPrefix string
	// CleanupInterval for local buckets
	CleanupInterval time.Duration
	// EntryTTL for idle local buckets
	EntryTTL time.Duration
}

// DefaultRateLimitConfig returns defaults sized for report exports
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 2,
		BurstSize:         5,
		KeyPrefix:         "property-manager:ratelimit:",
		CleanupInterval:   time.Minute,
		EntryTTL:          time.Minute,
	}
}

type rateLimitEntry struct {
	tokens     float64
	lastUpdate time.Time
	mu         sync.Mutex
}

// LocalRateLimiter implements in-memory token bucket rate limiting
type LocalRateLimiter struct {
	config   RateLimitConfig
	entries  sync.Map
	stop     chan struct{}
	stopOnce sync.Once
	now      func() time.Time

	totalAllowed  uint64
	totalRejected uint64
}

// NewLocalRateLimiter creates a local rate limiter and starts its cleanup loop
func NewLocalRateLimiter(config RateLimitConfig) *LocalRateLimiter {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = time.Minute
	}
	if config.EntryTTL <= 0 {
		config.EntryTTL = time.Minute
	}
	rl := &LocalRateLimiter{
		config: config,
		stop:   make(chan struct{}),
		now:    time.Now,
	}
	go rl.cleanup()
	return rl
}

// Allow consumes one token for key and reports whether the request may proceed
func (rl *LocalRateLimiter) Allow(key string) bool {
	if rl.config.RequestsPerSecond <= 0 {
		atomic.AddUint64(&rl.totalAllowed, 1)
		return true
	}

	now := rl.now()
	entry, _ := rl.entries.LoadOrStore(key, &rateLimitEntry{
		tokens:     float64(rl.config.BurstSize),
		lastUpdate: now,
	})
	e := entry.(*rateLimitEntry)

	e.mu.Lock()
	defer e.mu.Unlock()

	elapsed := now.Sub(e.lastUpdate).Seconds()
	e.tokens = min(float64(rl.config.BurstSize), e.tokens+elapsed*float64(rl.config.RequestsPerSecond))
	e.lastUpdate = now

	if e.tokens >= 1 {
		e.tokens--
		atomic.AddUint64(&rl.totalAllowed, 1)
		return true
	}

	atomic.AddUint64(&rl.totalRejected, 1)
	return false
}

// GetStats returns rate limiter statistics
func (rl *LocalRateLimiter) GetStats() (allowed, rejected uint64) {
	return atomic.LoadUint64(&rl.totalAllowed), atomic.LoadUint64(&rl.totalRejected)
}

func (rl *LocalRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := rl.now().Add(-rl.config.EntryTTL)
			rl.entries.Range(func(key, value interface{}) bool {
				e := value.(*rateLimitEntry)
				e.mu.Lock()
				if e.lastUpdate.Before(cutoff) {
					rl.entries.Delete(key)
				}
				e.mu.Unlock()
				return true
			})
		case <-rl.stop:
			return
		}
	}
}

// Stop stops the cleanup goroutine
func (rl *LocalRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// tokenBucketScript refills and consumes one token atomically
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local data = redis.call("HMGET", key, "tokens", "last_update")
local tokens = tonumber(data[1]) or burst
local last_update = tonumber(data[2]) or now

tokens = math.min(burst, tokens + (now - last_update) * rate)

local allowed = 0
if tokens >= 1 then
    tokens = tokens - 1
    allowed = 1
end
redis.call("HSET", key, "tokens", tokens, "last_update", now)
redis.call("EXPIRE", key, 60)
return allowed
`)

// RedisRateLimiter implements Redis-based distributed rate limiting
type RedisRateLimiter struct {
	config RateLimitConfig
}

// NewRedisRateLimiter creates a new Redis rate limiter
func NewRedisRateLimiter(config RateLimitConfig) *RedisRateLimiter {
	return &RedisRateLimiter{config: config}
}

// Allow checks if a request should be allowed using Redis
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := float64(time.Now().UnixNano()) / 1e9
	allowed, err := tokenBucketScript.Run(ctx, rl.config.RedisClient,
		[]string{rl.config.KeyPrefix + key},
		rl.config.RequestsPerSecond, rl.config.BurstSize, now,
	).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit script: %w", err)
	}
	return allowed == 1, nil
}

// RateLimiter throttles requests per client IP
type RateLimiter struct {
	config RateLimitConfig
	local  *LocalRateLimiter
	remote *RedisRateLimiter
}

// NewRateLimiter uses Redis when a client is configured and an in-memory bucket otherwise
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{config: config, local: NewLocalRateLimiter(config)}
	if config.RedisClient != nil {
		rl.remote = NewRedisRateLimiter(config)
	}
	return rl
}

// Stop releases the local limiter
func (rl *RateLimiter) Stop() {
	rl.local.Stop()
}

// Middleware returns the gin handler enforcing the limit
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()

		var allowed bool
		if rl.remote != nil {
			var err error
			allowed, err = rl.remote.Allow(c.Request.Context(), clientIP)
			if err != nil {
				// Redis trouble falls back to the local bucket
				logger.Get().Warn("redis rate limiter failed, using local bucket", zap.Error(err))
				allowed = rl.local.Allow(clientIP)
			}
		} else {
			allowed = rl.local.Allow(clientIP)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.RequestsPerSecond))
		if !allowed {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				response.TooManyRequests("Rate limit exceeded. Please retry after 1 second(s)."))
			return
		}

		c.Next()
	}
}
