package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisLimiterFixedWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l := NewRedisLimiter(client, "rl:assistant:", 2, time.Hour)
	ctx := context.Background()

	d, err := l.Allow(ctx, "203.0.113.1")
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Equal(t, 1, d.Remaining())

	d, err = l.Allow(ctx, "203.0.113.1")
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Equal(t, 0, d.Remaining())

	d, err = l.Allow(ctx, "203.0.113.1")
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Greater(t, d.RetryAfter, 59*time.Minute)

	other, err := l.Allow(ctx, "198.51.100.7")
	require.NoError(t, err)
	require.True(t, other.Allowed)

	require.True(t, mr.Exists("rl:assistant:203.0.113.1"))
	require.Greater(t, mr.TTL("rl:assistant:203.0.113.1"), time.Duration(0))

	mr.FastForward(time.Hour + time.Second)
	d, err = l.Allow(ctx, "203.0.113.1")
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Equal(t, int64(1), d.Count)
}

func TestRedisLimiterAIKeyLayout(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l := NewRedisLimiter(client, AIKeyPrefix, 2, time.Hour)
	_, err := l.Allow(context.Background(), "assistant:203.0.113.1")
	require.NoError(t, err)

	require.True(t, mr.Exists("rainbowrise:ai:assistant:203.0.113.1"))
	require.Equal(t, []string{"rainbowrise:ai:assistant:203.0.113.1"}, mr.Keys())
}

func TestRedisLimiterSharedAcrossInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	a := NewRedisLimiter(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "rl:", 2, time.Minute)
	b := NewRedisLimiter(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "rl:", 2, time.Minute)
	ctx := context.Background()

	_, err := a.Allow(ctx, "k")
	require.NoError(t, err)
	_, err = b.Allow(ctx, "k")
	require.NoError(t, err)
	d, err := a.Allow(ctx, "k")
	require.NoError(t, err)
	require.False(t, d.Allowed)
}

func TestRedisLimiterBackendError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	mr.Close()

	_, err := NewRedisLimiter(client, "rl:", 2, time.Minute).Allow(context.Background(), "k")
	require.Error(t, err)
}

func TestMemoryLimiterWindowAndSweep(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(2, time.Hour)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		d, err := l.Allow(ctx, "ip")
		require.NoError(t, err)
		require.True(t, d.Allowed)
	}
	d, err := l.Allow(ctx, "ip")
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Equal(t, time.Hour, d.RetryAfter)

	now = now.Add(30 * time.Minute)
	require.Zero(t, l.Sweep())
	d, _ = l.Allow(ctx, "ip")
	require.False(t, d.Allowed)
	require.Equal(t, 30*time.Minute, d.RetryAfter)

	now = now.Add(30 * time.Minute)
	require.Equal(t, 1, l.Sweep())
	d, _ = l.Allow(ctx, "ip")
	require.True(t, d.Allowed)
	require.Equal(t, int64(1), d.Count)
}

func TestMemoryLimiterRunSweeperStops(t *testing.T) {
	l := NewMemoryLimiter(1, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.RunSweeper(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
