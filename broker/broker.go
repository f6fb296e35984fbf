package broker

import (
	"context"
	"errors"
	"time"
)

// StatsChannel carries live zone statistics after every ticket mutation.
const StatsChannel = "tickets:stats"

var ErrLocked = errors.New("lock already held")

// Broker fans out payloads to every current subscriber. Delivery is best
// effort: slow subscribers drop messages instead of blocking publishers.
type Broker interface {
	Publish(ctx context.Context, payload []byte) error
	Subscribe(ctx context.Context) (<-chan []byte, func(), error)
}

// ReleaseFunc releases a lock obtained from a Locker.
type ReleaseFunc func(ctx context.Context) error

// Locker grants a named, expiring, exclusive lease. Acquire returns ErrLocked
// while another holder owns the key.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error)
}
