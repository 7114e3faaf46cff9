package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/catalog-backoffice/product-api/internal/core/ports"
)

const (
	lockTTL           = 10 * time.Second
	lockMaxWait       = 5 * time.Second
	lockRetryInterval = 50 * time.Millisecond
	lockPrefix        = "lock:"
)

// releaseScript deletes the key only if it still holds our token, so an
// expired lock taken over by another holder is left alone.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// ErrLockTimeout is returned when the lock could not be acquired within the
// maximum wait.
var ErrLockTimeout = errors.New("lock: timed out waiting for lock")

// Locker is a ports.Locker backed by SET NX PX.
// Key format: lock:<key>
type Locker struct {
	client   *redis.Client
	ttl      time.Duration
	maxWait  time.Duration
	retry    time.Duration
	newToken func() string
}

var _ ports.Locker = (*Locker)(nil)

// NewLocker creates a Locker wrapping the given Redis client.
func NewLocker(client *redis.Client) *Locker {
	return &Locker{
		client:   client,
		ttl:      lockTTL,
		maxWait:  lockMaxWait,
		retry:    lockRetryInterval,
		newToken: uuid.NewString,
	}
}

// Lock blocks until the key is acquired, ctx is done, or the maximum wait
// elapses. The returned release func is safe to call more than once.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	redisKey := lockPrefix + key
	token := l.newToken()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("lock %s: %w", key, err)
		}
		if ok {
			return l.releaser(redisKey, token), nil
		}

		timer := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, ErrLockTimeout
			}
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *Locker) releaser(redisKey, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
			defer cancel()
			_ = l.client.Eval(ctx, releaseScript, []string{redisKey}, token).Err()
		})
	}
}
