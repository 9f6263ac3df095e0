package redis

import (
	"context"
	"errors"
	"fmt"
	cacherepo "jsonstore/internal/repositories/cache"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const pkg = "redis/"

type Config struct {
	Addr     string
	Password string
	DB       int
}

type Client struct {
	redisClient *redis.Client
	scripts     sync.Map
}

type redisResponse[T any] struct {
	cmd redis.Cmder
	get func() (T, error)
}

func (r redisResponse[T]) Err() error {
	err := r.cmd.Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func (r redisResponse[T]) Result() (T, error) {
	res, err := r.get()
	if errors.Is(err, redis.Nil) {
		var zero T
		return zero, nil
	}

	return res, err
}

func (c *Client) Get(ctx context.Context, key string) cacherepo.CacheResponse[string] {
	cmd := c.redisClient.Get(ctx, key)
	return redisResponse[string]{
		cmd: cmd,
		get: cmd.Result,
	}
}

func (c *Client) HGetAll(ctx context.Context, key string) cacherepo.CacheResponse[map[string]string] {
	cmd := c.redisClient.HGetAll(ctx, key)
	return redisResponse[map[string]string]{
		cmd: cmd,
		get: cmd.Result,
	}
}

func (c *Client) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) cacherepo.CacheResponse[bool] {
	cmd := c.redisClient.SetNX(ctx, key, value, expiration)
	return redisResponse[bool]{
		cmd: cmd,
		get: cmd.Result,
	}
}

func (c *Client) Del(ctx context.Context, keys ...string) cacherepo.CacheResponse[int64] {
	cmd := c.redisClient.Del(ctx, keys...)
	return redisResponse[int64]{
		cmd: cmd,
		get: cmd.Result,
	}
}

// Eval runs a Lua script through EVALSHA, loading it on first use.
func (c *Client) Eval(ctx context.Context, script string, keys []string, args ...interface{}) cacherepo.CacheResponse[interface{}] {
	s, _ := c.scripts.LoadOrStore(script, redis.NewScript(script))
	cmd := s.(*redis.Script).Run(ctx, c.redisClient, keys, args...)
	return redisResponse[interface{}]{
		cmd: cmd,
		get: cmd.Result,
	}
}

func (c *Client) Close() error {
	return c.redisClient.Close()
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	op := pkg + "New"

	client := &Client{
		redisClient: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}

	if err := client.redisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: redis: ping failed: %w", op, err)
	}

	return client, nil
}
