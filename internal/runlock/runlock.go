// Package runlock serializes orchestrator runs. The Redis implementation
// holds a distributed lease so scheduled and manual triggers across replicas
// cannot interleave; the local implementation covers single-instance
// deployments without Redis.
package runlock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// Lease is a held lock; release it when the run finishes.
type Lease interface {
	Release(ctx context.Context) error
}

// Locker grants at most one lease per key at a time.
type Locker interface {
	// Acquire returns (lease, true, nil) on success and (nil, false, nil)
	// when the lease is already held elsewhere.
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, bool, error)
}

// Redis is a Locker backed by a redislock client.
type Redis struct {
	client *redislock.Client
}

// NewRedis creates a Redis locker on the given client.
func NewRedis(rdb redis.UniversalClient) *Redis {
	return &Redis{client: redislock.New(rdb)}
}

func (r *Redis) Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, bool, error) {
	lock, err := r.client.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return redisLease{lock}, true, nil
}

type redisLease struct {
	lock *redislock.Lock
}

func (l redisLease) Release(ctx context.Context) error {
	return l.lock.Release(ctx)
}

// Local is an in-process Locker for single-instance deployments and tests.
type Local struct {
	mu   sync.Mutex
	held map[string]bool
}

// NewLocal initializes a Local locker.
func NewLocal() *Local {
	return &Local{held: make(map[string]bool)}
}

func (l *Local) Acquire(_ context.Context, key string, _ time.Duration) (Lease, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, false, nil
	}
	l.held[key] = true
	return &localLease{locker: l, key: key}, true, nil
}

type localLease struct {
	locker *Local
	key    string
	once   sync.Once
}

func (l *localLease) Release(_ context.Context) error {
	l.once.Do(func() {
		l.locker.mu.Lock()
		delete(l.locker.held, l.key)
		l.locker.mu.Unlock()
	})
	return nil
}
