package redis

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"

	"taskchatgo/internal/config"
)

// ErrCacheMiss is returned by Get when the key does not exist.
var ErrCacheMiss = redis.Nil

var errNotConnected = errors.New("redis client not initialized")

const dialTimeout = 3 * time.Second

// Client is a thin cache handle over go-redis. A nil *Client is safe to
// call; operations then report errNotConnected, so callers treating the
// cache as optional can skip nil checks on the hot path.
type Client struct {
	rdb *redis.Client
}

// NewClient connects using the redis block of the app config and verifies
// the connection with a ping before returning.
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	host, port := cfg.Redis.Host, cfg.Redis.Port
	if host == "" {
		host = "127.0.0.1"
	}
	if port == 0 {
		port = 6379
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return &Client{rdb: rdb}, nil
}

func (c *Client) ready() bool {
	return c != nil && c.rdb != nil
}

// Set writes a value under key with the given lifetime.
func (c *Client) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !c.ready() {
		return errNotConnected
	}
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// Get reads key as a string; a missing key yields ErrCacheMiss.
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	if !c.ready() {
		return "", errNotConnected
	}
	return c.rdb.Get(ctx, key).Result()
}

// Del drops the given keys.
func (c *Client) Del(ctx context.Context, keys ...string) error {
	if !c.ready() || len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// Close releases the underlying connection pool.
func (c *Client) Close() error {
	if !c.ready() {
		return nil
	}
	return c.rdb.Close()
}
