package xredis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/droplink-labs/backend/pkg/xcontext"
	"github.com/redis/go-redis/v9"
)

type Client interface {
	Exist(ctx context.Context, key string) (bool, error)
	Del(ctx context.Context, key ...string) error

	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, error)
	SetObj(ctx context.Context, key string, obj any, ttl time.Duration) error
	GetObj(ctx context.Context, key string, v any) error
}

// ErrNil reports a missing key from Get or GetObj.
var ErrNil = redis.Nil

type client struct {
	redisClient *redis.Client
}

func NewClient(ctx context.Context) (*client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:            xcontext.Configs(ctx).Redis.Addr,
		MaxRetries:      5,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		PoolFIFO:        false,
		PoolSize:        5,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &client{redisClient: redisClient}, nil
}

func (c *client) Exist(ctx context.Context, key string) (bool, error) {
	n, err := c.redisClient.Exists(ctx, key).Uint64()
	if err != nil {
		return false, err
	}

	return n == 1, nil
}

func (c *client) Del(ctx context.Context, key ...string) error {
	err := c.redisClient.Del(ctx, key...).Err()
	if err == nil || err == redis.Nil {
		return nil
	}

	return err
}

func (c *client) Set(ctx context.Context, key, value string) error {
	return c.redisClient.Set(ctx, key, value, 0).Err()
}

func (c *client) Get(ctx context.Context, key string) (string, error) {
	return c.redisClient.Get(ctx, key).Result()
}

func (c *client) SetObj(ctx context.Context, key string, obj any, ttl time.Duration) error {
	b, err := json.Marshal(obj)
	if err != nil {
		return err
	}

	return c.redisClient.Set(ctx, key, string(b), ttl).Err()
}

func (c *client) GetObj(ctx context.Context, key string, v any) error {
	s, err := c.redisClient.Get(ctx, key).Result()
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(s), v)
}
