package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/course-schedule-api/pkg/errors"
)

func newCacheRepo(t *testing.T) (*CacheRepository, *miniredis.Miniredis) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheRepository(client, nil), srv
}

func TestCacheRepositoryRoundTripAndExpiry(t *testing.T) {
	repo, srv := newCacheRepo(t)
	ctx := context.Background()

	type payload struct {
		Week string `json:"week"`
	}
	require.NoError(t, repo.Set(ctx, "schedule:week:2024-03-04", payload{Week: "2024-03-04"}, time.Minute))

	var got payload
	require.NoError(t, repo.Get(ctx, "schedule:week:2024-03-04", &got))
	assert.Equal(t, "2024-03-04", got.Week)

	srv.FastForward(2 * time.Minute)
	err := repo.Get(ctx, "schedule:week:2024-03-04", &got)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
}

func TestCacheRepositoryDropsCorruptEntries(t *testing.T) {
	repo, srv := newCacheRepo(t)
	require.NoError(t, srv.Set("schedule:week:bad", "{not-json"))

	var dest map[string]interface{}
	err := repo.Get(context.Background(), "schedule:week:bad", &dest)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
	assert.False(t, srv.Exists("schedule:week:bad"))
}

func TestCacheRepositoryDeleteByPattern(t *testing.T) {
	repo, srv := newCacheRepo(t)
	ctx := context.Background()
	for _, key := range []string{"schedule:week:a", "schedule:week:b", "other:c"} {
		require.NoError(t, repo.Set(ctx, key, 1, 0))
	}

	removed, err := repo.DeleteByPattern(ctx, "schedule:week:*")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.True(t, srv.Exists("other:c"))
}

func TestCacheRepositoryCounter(t *testing.T) {
	repo, srv := newCacheRepo(t)
	ctx := context.Background()

	n, err := repo.Counter(ctx, "schedule:generation")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.Incr(ctx, "schedule:generation")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.Counter(ctx, "schedule:generation")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, srv.Set("schedule:generation", "not-a-number"))
	_, err = repo.Counter(ctx, "schedule:generation")
	assert.Error(t, err)
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()
	assert.NoError(t, repo.Set(ctx, "k", 1, time.Minute))
	assert.ErrorIs(t, repo.Get(ctx, "k", new(int)), appErrors.ErrCacheMiss)
	removed, err := repo.DeleteByPattern(ctx, "*")
	assert.NoError(t, err)
	assert.Zero(t, removed)
	n, err := repo.Incr(ctx, "gen")
	assert.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, repo.Ping(ctx))
}
