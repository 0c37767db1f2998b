package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T, config RedisConfig) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisWithClient(client, config, nil), mr
}

func TestRedis_AcquireContendRelease(t *testing.T) {
	l, mr := newTestRedis(t, RedisConfig{TTL: time.Minute, MaxWait: 100 * time.Millisecond})
	ctx := context.Background()

	release, err := l.Lock(ctx, 7)
	require.NoError(t, err)
	assert.True(t, mr.Exists("labtrack:lock:equipment:7"))

	_, err = l.Lock(ctx, 7)
	assert.True(t, errors.Is(err, ErrLockTimeout), "got %v", err)

	other, err := l.Lock(ctx, 8)
	require.NoError(t, err, "other equipment is independent")
	other()

	release()
	assert.False(t, mr.Exists("labtrack:lock:equipment:7"))

	again, err := l.Lock(ctx, 7)
	require.NoError(t, err)
	again()
}

func TestRedis_WaitsForRelease(t *testing.T) {
	l, _ := newTestRedis(t, RedisConfig{TTL: time.Minute, MaxWait: 2 * time.Second})
	ctx := context.Background()

	release, err := l.Lock(ctx, 1)
	require.NoError(t, err)
	time.AfterFunc(50*time.Millisecond, release)

	start := time.Now()
	second, err := l.Lock(ctx, 1)
	require.NoError(t, err)
	defer second()
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestRedis_ExpiredLockIsNotReleasedByOldHolder(t *testing.T) {
	l, mr := newTestRedis(t, RedisConfig{TTL: time.Second, MaxWait: 100 * time.Millisecond})
	ctx := context.Background()
	key := "labtrack:lock:equipment:3"

	stale, err := l.Lock(ctx, 3)
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)
	require.False(t, mr.Exists(key))

	current, err := l.Lock(ctx, 3)
	require.NoError(t, err)
	token, err := mr.Get(key)
	require.NoError(t, err)

	stale()
	got, err := mr.Get(key)
	require.NoError(t, err, "the new holder keeps its lock")
	assert.Equal(t, token, got)

	current()
	assert.False(t, mr.Exists(key))
}

func TestRedis_ContextCancelled(t *testing.T) {
	l, _ := newTestRedis(t, RedisConfig{TTL: time.Minute, MaxWait: 5 * time.Second})

	release, err := l.Lock(context.Background(), 1)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err = l.Lock(ctx, 1)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestRedis_ServerErrorIsNotRetried(t *testing.T) {
	l, mr := newTestRedis(t, RedisConfig{TTL: time.Minute, MaxWait: 5 * time.Second})
	mr.SetError("ERR lock store unavailable")

	start := time.Now()
	_, err := l.Lock(context.Background(), 1)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrLockTimeout))
	assert.Contains(t, err.Error(), "failed to acquire equipment lock")
	assert.Less(t, time.Since(start), time.Second)
}

func TestNewRedis_InvalidURL(t *testing.T) {
	_, err := NewRedis(RedisConfig{URL: "not-a-url"}, nil)
	assert.Error(t, err)
}
