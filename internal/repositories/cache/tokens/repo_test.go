package cachetokensrepo

import (
	"context"
	"errors"
	cacherepo "jsonstore/internal/repositories/cache"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockCache struct {
	mock.Mock
}

type mockResponse[T any] struct {
	val T
	err error
}

func (m *mockCache) Get(ctx context.Context, key string) cacherepo.CacheResponse[string] {
	args := m.Called(ctx, key)
	return args.Get(0).(cacherepo.CacheResponse[string])
}

func (m *mockCache) HGetAll(ctx context.Context, key string) cacherepo.CacheResponse[map[string]string] {
	args := m.Called(ctx, key)
	return args.Get(0).(cacherepo.CacheResponse[map[string]string])
}

func (m *mockCache) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) cacherepo.CacheResponse[bool] {
	args := m.Called(ctx, key, value, expiration)
	return args.Get(0).(cacherepo.CacheResponse[bool])
}

func (m *mockCache) Del(ctx context.Context, keys ...string) cacherepo.CacheResponse[int64] {
	args := m.Called(ctx, keys)
	return args.Get(0).(cacherepo.CacheResponse[int64])
}

func (m *mockCache) Eval(ctx context.Context, script string, keys []string, args ...interface{}) cacherepo.CacheResponse[interface{}] {
	called := m.Called(ctx, script, keys, args)
	return called.Get(0).(cacherepo.CacheResponse[interface{}])
}

func (r *mockResponse[T]) Err() error {
	return r.err
}

func (r *mockResponse[T]) Result() (T, error) {
	return r.val, r.err
}

func TestReserve_FirstUse(t *testing.T) {
	t.Parallel()

	mockCache := new(mockCache)
	mockCache.On("SetNX", mock.Anything, "jsonstore:token:jti-1", mock.AnythingOfType("int64"), time.Hour).
		Return(&mockResponse[bool]{val: true})

	repo := New(mockCache, time.Hour)

	ok, err := repo.Reserve(context.Background(), "jti-1")
	assert.NoError(t, err)
	assert.True(t, ok)
	mockCache.AssertExpectations(t)
}

func TestReserve_AlreadyUsed(t *testing.T) {
	t.Parallel()

	mockCache := new(mockCache)
	mockCache.On("SetNX", mock.Anything, "jsonstore:token:jti-1", mock.Anything, time.Hour).
		Return(&mockResponse[bool]{val: false})

	ok, err := New(mockCache, time.Hour).Reserve(context.Background(), "jti-1")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestReserve_Error(t *testing.T) {
	t.Parallel()

	mockCache := new(mockCache)
	mockCache.On("SetNX", mock.Anything, "jsonstore:token:jti-1", mock.Anything, time.Hour).
		Return(&mockResponse[bool]{err: errors.New("connection error")})

	ok, err := New(mockCache, time.Hour).Reserve(context.Background(), "jti-1")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRelease_Success(t *testing.T) {
	t.Parallel()

	mockCache := new(mockCache)
	mockCache.On("Del", mock.Anything, []string{"jsonstore:token:jti-1"}).
		Return(&mockResponse[int64]{val: 1})

	err := New(mockCache, time.Hour).Release(context.Background(), "jti-1")
	assert.NoError(t, err)
	mockCache.AssertExpectations(t)
}

func TestIsUsed(t *testing.T) {
	t.Parallel()

	mockCache := new(mockCache)
	mockCache.On("Get", mock.Anything, "jsonstore:token:used").Return(&mockResponse[string]{val: "1700000000"})
	mockCache.On("Get", mock.Anything, "jsonstore:token:fresh").Return(&mockResponse[string]{val: ""})

	repo := New(mockCache, time.Hour)

	used, err := repo.IsUsed(context.Background(), "used")
	assert.NoError(t, err)
	assert.True(t, used)

	used, err = repo.IsUsed(context.Background(), "fresh")
	assert.NoError(t, err)
	assert.False(t, used)
}
