package ports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCache struct {
	entries map[string][]byte
	setErr  error
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := c.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return v, nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func TestCurrentCacheKey(t *testing.T) {
	ctx := context.Background()
	cache := &memCache{entries: map[string][]byte{}}

	key, err := CurrentCacheKey(ctx, cache, TreeCacheKey(7))
	require.NoError(t, err)
	assert.Equal(t, "tree:7@0", key)

	require.NoError(t, RetireCacheKeys(ctx, cache, TreeCacheKey(7), TreeListCacheKey))

	treeKey, err := CurrentCacheKey(ctx, cache, TreeCacheKey(7))
	require.NoError(t, err)
	listKey, err := CurrentCacheKey(ctx, cache, TreeListCacheKey)
	require.NoError(t, err)
	assert.NotEqual(t, "tree:7@0", treeKey)
	assert.Equal(t, "tree:7@"+string(cache.entries["tree:7:gen"]), treeKey)
	assert.Equal(t, "trees:all@"+string(cache.entries["trees:all:gen"]), listKey)
}

func TestCurrentCacheKey_StaleFillIsNotServed(t *testing.T) {
	ctx := context.Background()
	cache := &memCache{entries: map[string][]byte{}}

	readerKey, err := CurrentCacheKey(ctx, cache, TreeCacheKey(1))
	require.NoError(t, err)

	// a write commits between the reader's load and its fill
	require.NoError(t, RetireCacheKeys(ctx, cache, TreeCacheKey(1)))
	require.NoError(t, cache.Set(ctx, readerKey, []byte("stale"), time.Minute))

	next, err := CurrentCacheKey(ctx, cache, TreeCacheKey(1))
	require.NoError(t, err)
	_, err = cache.Get(ctx, next)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCurrentCacheKey_LookupError(t *testing.T) {
	cache := &memCache{entries: map[string][]byte{}}
	down := errors.New("connection refused")

	key, err := CurrentCacheKey(context.Background(), failingGet{cache, down}, TreeListCacheKey)
	assert.ErrorIs(t, err, down)
	assert.Empty(t, key)
}

func TestRetireCacheKeys_JoinsErrors(t *testing.T) {
	down := errors.New("connection refused")
	cache := &memCache{entries: map[string][]byte{}, setErr: down}

	err := RetireCacheKeys(context.Background(), cache, TreeCacheKey(1), TreeListCacheKey)
	assert.ErrorIs(t, err, down)
}

type failingGet struct {
	*memCache
	err error
}

func (f failingGet) Get(context.Context, string) ([]byte, error) { return nil, f.err }
