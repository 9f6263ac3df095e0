package cachetokensrepo

import (
	"context"
	"fmt"
	cacherepo "jsonstore/internal/repositories/cache"
	"time"
)

const (
	pkg       = "cacheTokensRepo/"
	keyPrefix = "jsonstore:token:"
)

type repository struct {
	cache    cacherepo.Cache
	tokenTTL time.Duration
}

func New(cache cacherepo.Cache, tokenTTL time.Duration) *repository {
	return &repository{
		cache:    cache,
		tokenTTL: tokenTTL,
	}
}

// Reserve marks the token id as used. It reports false when the id was
// already taken.
func (r *repository) Reserve(ctx context.Context, id string) (bool, error) {
	op := pkg + "Reserve"

	ok, err := r.cache.SetNX(ctx, keyPrefix+id, time.Now().Unix(), r.tokenTTL).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return ok, nil
}

// Release frees a reservation whose side effect did not happen.
func (r *repository) Release(ctx context.Context, id string) error {
	op := pkg + "Release"

	if err := r.cache.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *repository) IsUsed(ctx context.Context, id string) (bool, error) {
	op := pkg + "IsUsed"

	val, err := r.cache.Get(ctx, keyPrefix+id).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return val != "", nil
}
