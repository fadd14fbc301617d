package lockout

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	failuresKeyPrefix = "lockout:failures:"
	lockKeyPrefix     = "lockout:lock:"
)

// Redis shares counters and locks across instances.
type Redis struct {
	client redis.Cmdable
}

func NewRedis(client redis.Cmdable) *Redis {
	return &Redis{client: client}
}

// IncrementFailures bumps the counter and starts its window on the first
// failure only.
func (s *Redis) IncrementFailures(ctx context.Context, key string, window time.Duration) (int, error) {
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, failuresKeyPrefix+key)
		pipe.ExpireNX(ctx, failuresKeyPrefix+key, window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("increment sign-in failures: %w", err)
	}
	return int(incr.Val()), nil
}

func (s *Redis) Lock(ctx context.Context, key string, d time.Duration) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, lockKeyPrefix+key, "1", d)
		pipe.Del(ctx, failuresKeyPrefix+key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("lock sign-in: %w", err)
	}
	return nil
}

// LockedFor returns the lock's remaining TTL. Missing keys report zero.
func (s *Redis) LockedFor(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.client.PTTL(ctx, lockKeyPrefix+key).Result()
	if err != nil {
		return 0, fmt.Errorf("read sign-in lock: %w", err)
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

func (s *Redis) Clear(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, failuresKeyPrefix+key, lockKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("clear sign-in failures: %w", err)
	}
	return nil
}
