package cachejsonstorerepo

import (
	"context"
	"errors"
	"jsonstore/internal/jsondoc"
	"jsonstore/internal/models"
	cacherepo "jsonstore/internal/repositories/cache"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCache struct {
	mock.Mock
}

type mockResponse[T any] struct {
	val T
	err error
}

func (r *mockResponse[T]) Err() error {
	return r.err
}

func (r *mockResponse[T]) Result() (T, error) {
	return r.val, r.err
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

func TestGet_Hit(t *testing.T) {
	t.Parallel()

	cache := new(mockCache)
	cache.On("HGetAll", mock.Anything, "jsonstore:item:x1").Return(&mockResponse[map[string]string]{
		val: map[string]string{
			"v": "7",
			"d": `{"id":1,"xid":"x1","name":"Item","readPermission":["user"],"editPermission":[],"hasData":true,"data":"{\"b\":1,\"a\":2}"}`,
		},
	})

	repo := New(cache, time.Minute)

	item, err := repo.Get(context.Background(), "x1")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, int64(7), item.Version)
	assert.Equal(t, "Item", item.Name)
	assert.Equal(t, []string{"user"}, item.ReadPermission)
	assert.Equal(t, `{"b":1,"a":2}`, item.JSONData.String())
}

func TestGet_NullPayloadIsNotAbsent(t *testing.T) {
	t.Parallel()

	cache := new(mockCache)
	cache.On("HGetAll", mock.Anything, "jsonstore:item:x1").Return(&mockResponse[map[string]string]{
		val: map[string]string{"v": "1", "d": `{"id":1,"xid":"x1","name":"Item","hasData":true,"data":"null"}`},
	})

	item, err := New(cache, time.Minute).Get(context.Background(), "x1")
	require.NoError(t, err)
	require.NotNil(t, item.JSONData)
	assert.True(t, item.JSONData.IsNull())
}

func TestGet_MissAndTombstone(t *testing.T) {
	t.Parallel()

	cache := new(mockCache)
	cache.On("HGetAll", mock.Anything, "jsonstore:item:missing").Return(&mockResponse[map[string]string]{val: map[string]string{}})
	cache.On("HGetAll", mock.Anything, "jsonstore:item:deleted").Return(&mockResponse[map[string]string]{val: map[string]string{"v": "9", "d": ""}})

	repo := New(cache, time.Minute)

	item, err := repo.Get(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, item)

	item, err = repo.Get(context.Background(), "deleted")
	assert.NoError(t, err)
	assert.Nil(t, item)
}

func TestGet_Error(t *testing.T) {
	t.Parallel()

	cache := new(mockCache)
	cache.On("HGetAll", mock.Anything, "jsonstore:item:x1").Return(&mockResponse[map[string]string]{err: errors.New("connection error")})

	_, err := New(cache, time.Minute).Get(context.Background(), "x1")
	assert.Error(t, err)
}

func TestPut_SendsVersionAndTTL(t *testing.T) {
	t.Parallel()

	cache := new(mockCache)
	cache.On("Eval", mock.Anything, storeIfNewer, []string{"jsonstore:item:x1"}, mock.MatchedBy(func(args []interface{}) bool {
		return len(args) == 4 &&
			args[0] == int64(3) &&
			args[1] == `{"id":1,"xid":"x1","name":"Item","readPermission":null,"editPermission":null,"hasData":true,"data":"[1,2]"}` &&
			args[2] == int64(60000) &&
			args[3] == "0"
	})).Return(&mockResponse[interface{}]{val: int64(1)})

	repo := New(cache, time.Minute)

	stored, err := repo.Put(context.Background(), &models.JSONStoreItem{
		ID:       1,
		XID:      "x1",
		Name:     "Item",
		JSONData: jsondoc.MustParse(`[1,2]`),
		Version:  3,
	})
	require.NoError(t, err)
	assert.True(t, stored)
	cache.AssertExpectations(t)
}

func TestPut_StaleVersionIsSkipped(t *testing.T) {
	t.Parallel()

	cache := new(mockCache)
	cache.On("Eval", mock.Anything, storeIfNewer, []string{"jsonstore:item:x1"}, mock.Anything).
		Return(&mockResponse[interface{}]{val: int64(0)})

	stored, err := New(cache, time.Minute).Put(context.Background(), &models.JSONStoreItem{XID: "x1", Version: 1})
	require.NoError(t, err)
	assert.False(t, stored)
}

func TestTombstone(t *testing.T) {
	t.Parallel()

	cache := new(mockCache)
	cache.On("Eval", mock.Anything, storeIfNewer, []string{"jsonstore:item:x1"}, []interface{}{int64(5), "", int64(60000), "1"}).
		Return(&mockResponse[interface{}]{val: int64(1)})

	err := New(cache, time.Minute).Tombstone(context.Background(), "x1", 5)
	assert.NoError(t, err)
	cache.AssertExpectations(t)
}

func TestDel(t *testing.T) {
	t.Parallel()

	cache := new(mockCache)
	cache.On("Del", mock.Anything, []string{"jsonstore:item:x1"}).Return(&mockResponse[int64]{val: 1})

	err := New(cache, time.Minute).Del(context.Background(), "x1")
	assert.NoError(t, err)
	cache.AssertExpectations(t)
}
