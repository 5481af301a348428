package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Versioned, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewVersioned(client, time.Minute), mr
}

func TestFetchJSONCachesLoaderResult(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return []string{"1101", "1102"}, nil
	}

	key, err := c.BuildKey(ctx, "reports", "coa")
	require.NoError(t, err)
	assert.Equal(t, "reports:coa:v1", key)

	var first, second []string
	require.NoError(t, c.FetchJSON(ctx, key, &first, loader))
	require.NoError(t, c.FetchJSON(ctx, key, &second, loader))
	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestBumpInvalidatesKeys(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	before, err := c.BuildKey(ctx, "reports", "accounts")
	require.NoError(t, err)
	require.NoError(t, c.Bump(ctx))
	after, err := c.BuildKey(ctx, "reports", "accounts")
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
	assert.Equal(t, "reports:accounts:v2", after)
}

func TestFetchJSONPropagatesLoaderError(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	boom := errors.New("boom")

	var out []int
	err := c.FetchJSON(ctx, "k", &out, func(context.Context) (any, error) { return nil, boom })
	require.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k"))
}

func TestNilClientFallsThroughToLoader(t *testing.T) {
	c := NewVersioned(nil, time.Minute)
	ctx := context.Background()

	key, err := c.BuildKey(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "a:b", key)

	var out map[string]int
	require.NoError(t, c.FetchJSON(ctx, key, &out, func(context.Context) (any, error) {
		return map[string]int{"x": 1}, nil
	}))
	assert.Equal(t, 1, out["x"])
	require.NoError(t, c.Bump(ctx))
}

func TestFillSurvivesFirstCallerCancel(t *testing.T) {
	c, mr := newTestCache(t)
	started := make(chan struct{})
	release := make(chan struct{})
	loaderErr := make(chan error, 1)
	loader := func(ctx context.Context) (any, error) {
		close(started)
		<-release
		loaderErr <- ctx.Err()
		return []string{"1101"}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		var out []string
		done <- c.FetchJSON(ctx, "reports:coa:v1", &out, loader)
	}()

	<-started
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	close(release)

	require.NoError(t, <-loaderErr)
	require.Eventually(t, func() bool { return mr.Exists("reports:coa:v1") }, time.Second, 10*time.Millisecond)

	var out []string
	require.NoError(t, c.FetchJSON(context.Background(), "reports:coa:v1", &out, func(context.Context) (any, error) {
		return nil, errors.New("loader must not run on a warm key")
	}))
	assert.Equal(t, []string{"1101"}, out)
}
