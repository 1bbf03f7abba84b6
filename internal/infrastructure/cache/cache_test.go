package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"careermate/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// kvRedis implements the string commands the caches use.
type kvRedis struct {
	redis.Cmdable
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
	down bool
}

func newKVRedis() *kvRedis {
	return &kvRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

var errDown = errors.New("connection refused")

func (r *kvRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	cmd := redis.NewStringCmd(ctx, "get", key)
	if r.down {
		cmd.SetErr(errDown)
		return cmd
	}
	v, ok := r.data[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(v)
	return cmd
}

func (r *kvRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	cmd := redis.NewStatusCmd(ctx, "set", key)
	if r.down {
		cmd.SetErr(errDown)
		return cmd
	}
	switch v := value.(type) {
	case []byte:
		r.data[key] = string(v)
	case string:
		r.data[key] = v
	}
	r.ttls[key] = expiration
	cmd.SetVal("OK")
	return cmd
}

func (r *kvRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	cmd := redis.NewIntCmd(ctx, "del")
	var n int64
	for _, k := range keys {
		if _, ok := r.data[k]; ok {
			delete(r.data, k)
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

func (r *kvRedis) Incr(ctx context.Context, key string) *redis.IntCmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	cmd := redis.NewIntCmd(ctx, "incr", key)
	if r.down {
		cmd.SetErr(errDown)
		return cmd
	}
	n, _ := strconv.ParseInt(r.data[key], 10, 64)
	n++
	r.data[key] = strconv.FormatInt(n, 10)
	cmd.SetVal(n)
	return cmd
}

func TestReviewSummaryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	rdb := newKVRedis()
	c := NewReviewSummaryCache(rdb, time.Minute)

	gen, ok := c.Generation(ctx, "go-101")
	require.True(t, ok)
	assert.Equal(t, int64(0), gen)

	_, hit := c.Get(ctx, "go-101", gen)
	assert.False(t, hit)

	c.Set(ctx, "go-101", gen, domain.ReviewSummary{Average: 4.5, Count: 2})
	got, hit := c.Get(ctx, "go-101", gen)
	require.True(t, hit)
	assert.Equal(t, domain.ReviewSummary{Average: 4.5, Count: 2}, got)
	assert.Equal(t, time.Minute, rdb.ttls["reviews:summary:go-101:0"])
}

func TestReviewSummaryCacheInvalidateAdvancesGeneration(t *testing.T) {
	ctx := context.Background()
	rdb := newKVRedis()
	c := NewReviewSummaryCache(rdb, 0)

	c.Set(ctx, "go-101", 0, domain.ReviewSummary{Average: 1, Count: 1})
	c.Invalidate(ctx, "go-101")

	gen, ok := c.Generation(ctx, "go-101")
	require.True(t, ok)
	assert.Equal(t, int64(1), gen)
	_, hit := c.Get(ctx, "go-101", gen)
	assert.False(t, hit)

	// a writer still holding generation 0 cannot reach readers of generation 1
	c.Set(ctx, "go-101", 0, domain.ReviewSummary{Average: 1, Count: 1})
	_, hit = c.Get(ctx, "go-101", gen)
	assert.False(t, hit)
	assert.Equal(t, 5*time.Minute, rdb.ttls["reviews:summary:go-101:0"])

	_, ok = c.Generation(ctx, "other")
	assert.True(t, ok)
}

func TestReviewSummaryCacheUnavailable(t *testing.T) {
	ctx := context.Background()
	rdb := newKVRedis()
	rdb.down = true
	c := NewReviewSummaryCache(rdb, time.Minute)

	_, ok := c.Generation(ctx, "go-101")
	assert.False(t, ok)
	_, hit := c.Get(ctx, "go-101", 0)
	assert.False(t, hit)
	c.Set(ctx, "go-101", 0, domain.ReviewSummary{})
	c.Invalidate(ctx, "go-101")
}

func TestReviewSummaryCacheIgnoresCorruptEntry(t *testing.T) {
	ctx := context.Background()
	rdb := newKVRedis()
	rdb.data["reviews:summary:go-101:0"] = "{not json"
	c := NewReviewSummaryCache(rdb, time.Minute)

	_, hit := c.Get(ctx, "go-101", 0)
	assert.False(t, hit)
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	rdb := newKVRedis()
	s := NewSessionStore(rdb)

	require.NoError(t, s.SaveRefresh(ctx, "user-1", "tok", time.Hour))
	assert.Equal(t, "user-1", rdb.data["refresh_token:tok"])
	assert.Equal(t, time.Hour, rdb.ttls["refresh_token:tok"])

	id, err := s.CheckRefresh(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)

	require.NoError(t, s.DeleteRefresh(ctx, "tok"))
	_, err = s.CheckRefresh(ctx, "tok")
	assert.ErrorIs(t, err, redis.Nil)
}
