package cacherepo

import (
	"context"
	"time"
)

type Cache interface {
	Get(ctx context.Context, key string) CacheResponse[string]
	HGetAll(ctx context.Context, key string) CacheResponse[map[string]string]
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) CacheResponse[bool]
	Del(ctx context.Context, keys ...string) CacheResponse[int64]
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) CacheResponse[interface{}]
}

type CacheResponse[T any] interface {
	Err() error
	Result() (T, error)
}
