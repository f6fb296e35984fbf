//go:build integration

package broker

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err, "failed to start redis container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)

	client, err := NewRedisClient(opts.Addr, opts.Password, opts.DB)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisBrokerRoundTrip(t *testing.T) {
	client := newRedisClient(t)
	ctx := context.Background()
	b := NewRedisBroker(client, StatsChannel)

	ch, cancel, err := b.Subscribe(ctx)
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, b.Publish(ctx, []byte(`{"B":{"total":1}}`)))

	select {
	case msg := <-ch:
		assert.JSONEq(t, `{"B":{"total":1}}`, string(msg))
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for published stats")
	}
}

func TestRedisLocker(t *testing.T) {
	client := newRedisClient(t)
	ctx := context.Background()
	l := NewRedisLocker(client)

	release, err := l.Acquire(ctx, "lock:bulk", time.Minute)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "lock:bulk", time.Minute)
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, release(ctx))
	release, err = l.Acquire(ctx, "lock:bulk", time.Minute)
	require.NoError(t, err)
	require.NoError(t, release(ctx))
}
