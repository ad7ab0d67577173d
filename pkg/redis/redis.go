package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/gtemgoua/property-manager-app/pkg/config"
	goredis "github.com/redis/go-redis/v9"
)

// Client wraps the go-redis client
type Client struct {
	*goredis.Client
}

// NewClient connects to Redis and verifies the connection with PING
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*Client, error) {
	opts := &goredis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return &Client{Client: client}, nil
}

// HealthCheck pings the server
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
