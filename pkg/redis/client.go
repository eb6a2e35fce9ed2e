// Package redis backs the shared rule/profile cache and the API rate limiter.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gsindri/kaupa-skil-sub004/pkg/cache"
	"github.com/gsindri/kaupa-skil-sub004/pkg/config"
	"github.com/gsindri/kaupa-skil-sub004/pkg/logger"
)

var errNotInitialized = errors.New("redis client not initialized")

// Client adapts go-redis to cache.Store and the rate limiter's counter store.
type Client struct {
	rdb redis.UniversalClient
}

var _ cache.Store = (*Client)(nil)

// Pinger is what the readiness probe needs.
type Pinger interface {
	Ping(context.Context) error
}

// New connects using KAUPA_REDIS_URL when set, else the discrete address
// fields, and fails unless the server answers PING.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := options(cfg)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}
	logg.Info(logg.WithField(ctx, "redis_addr", opts.Addr), "redis connected")
	return &Client{rdb: rdb}, nil
}

func options(cfg config.RedisConfig) (*redis.Options, error) {
	if !cfg.Enabled() {
		return nil, errors.New("redis url or address is required")
	}
	opts := &redis.Options{Addr: cfg.Address, Password: cfg.Password, DB: cfg.DB}
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	}
	// URL settings win; config fills whatever the URL left at zero.
	fill(&opts.DB, cfg.DB)
	fill(&opts.PoolSize, cfg.PoolSize)
	fill(&opts.MinIdleConns, cfg.MinIdleConns)
	fill(&opts.DialTimeout, cfg.DialTimeout)
	fill(&opts.ReadTimeout, cfg.ReadTimeout)
	fill(&opts.WriteTimeout, cfg.WriteTimeout)
	return opts, nil
}

func fill[T int | time.Duration](dst *T, v T) {
	if *dst == 0 {
		*dst = v
	}
}

func (c *Client) conn() (redis.UniversalClient, error) {
	if c == nil || c.rdb == nil {
		return nil, errNotInitialized
	}
	return c.rdb, nil
}

// Get reports a missing key as ok=false rather than an error.
func (c *Client) Get(ctx context.Context, key string) ([]byte, bool, error) {
	rdb, err := c.conn()
	if err != nil {
		return nil, false, err
	}
	data, err := rdb.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	return data, true, nil
}

// Set stores value; a non-positive ttl stores it without expiry.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	rdb, err := c.conn()
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, value, max(ttl, 0)).Err()
}

func (c *Client) Delete(ctx context.Context, keys ...string) error {
	rdb, err := c.conn()
	if err != nil || len(keys) == 0 {
		return err
	}
	return rdb.Del(ctx, keys...).Err()
}

// IncrWithTTL bumps a fixed-window counter. The counter gets ttl whenever it
// has no expiry, so a key orphaned by a failed EXPIRE heals on the next hit.
func (c *Client) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	rdb, err := c.conn()
	if err != nil {
		return 0, err
	}
	var (
		incr *redis.IntCmd
		left *redis.DurationCmd
	)
	if _, err := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		left = pipe.PTTL(ctx, key)
		return nil
	}); err != nil {
		return 0, err
	}
	if ttl > 0 && left.Val() < 0 {
		if err := rdb.PExpire(ctx, key, ttl).Err(); err != nil {
			return incr.Val(), err
		}
	}
	return incr.Val(), nil
}

func (c *Client) Ping(ctx context.Context) error {
	rdb, err := c.conn()
	if err != nil {
		return err
	}
	return rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
