package broker

import (
	"context"
	"sync"
	"time"
)

const subscriberBuffer = 16

// LocalBroker is the in-process Broker used when Redis is not configured.
type LocalBroker struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan []byte
}

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{subs: make(map[int]chan []byte)}
}

func (b *LocalBroker) Publish(_ context.Context, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- payload:
		default:
		}
	}
	return nil
}

func (b *LocalBroker) Subscribe(_ context.Context) (<-chan []byte, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	ch := make(chan []byte, subscriberBuffer)
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			close(ch)
			b.mu.Unlock()
		})
	}
	return ch, cancel, nil
}

// LocalLocker is the in-process Locker used when Redis is not configured.
type LocalLocker struct {
	mu     sync.Mutex
	now    func() time.Time
	leases map[string]time.Time
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{now: time.Now, leases: make(map[string]time.Time)}
}

func (l *LocalLocker) Acquire(_ context.Context, key string, ttl time.Duration) (ReleaseFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if expires, held := l.leases[key]; held && now.Before(expires) {
		return nil, ErrLocked
	}
	expires := now.Add(ttl)
	l.leases[key] = expires
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		// a lease that expired and was re-acquired belongs to someone else
		if l.leases[key].Equal(expires) {
			delete(l.leases, key)
		}
		return nil
	}, nil
}
