package broker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalBrokerFanOut(t *testing.T) {
	ctx := context.Background()
	b := NewLocalBroker()

	first, cancelFirst, err := b.Subscribe(ctx)
	require.NoError(t, err)
	second, cancelSecond, err := b.Subscribe(ctx)
	require.NoError(t, err)
	defer cancelSecond()

	require.NoError(t, b.Publish(ctx, []byte("hello")))
	assert.Equal(t, []byte("hello"), <-first)
	assert.Equal(t, []byte("hello"), <-second)

	cancelFirst()
	cancelFirst()
	_, open := <-first
	assert.False(t, open, "cancel closes the subscription")

	require.NoError(t, b.Publish(ctx, []byte("again")))
	assert.Equal(t, []byte("again"), <-second)
}

func TestLocalBrokerDropsForSlowSubscriber(t *testing.T) {
	ctx := context.Background()
	b := NewLocalBroker()
	ch, cancel, err := b.Subscribe(ctx)
	require.NoError(t, err)
	defer cancel()

	for i := 0; i < subscriberBuffer+5; i++ {
		require.NoError(t, b.Publish(ctx, []byte{byte(i)}))
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestLocalLocker(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewLocalLocker()
	l.now = func() time.Time { return now }

	release, err := l.Acquire(ctx, "bulk", time.Minute)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "bulk", time.Minute)
	assert.ErrorIs(t, err, ErrLocked)

	_, err = l.Acquire(ctx, "other", time.Minute)
	assert.NoError(t, err, "keys are independent")

	require.NoError(t, release(ctx))
	release2, err := l.Acquire(ctx, "bulk", time.Minute)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	release3, err := l.Acquire(ctx, "bulk", time.Minute)
	require.NoError(t, err, "expired lease can be taken over")

	require.NoError(t, release2(ctx))
	_, err = l.Acquire(ctx, "bulk", time.Minute)
	assert.ErrorIs(t, err, ErrLocked, "stale release must not free the new lease")
	require.NoError(t, release3(ctx))
}
