package gate

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	counterKeyPrefix = "lexai:guest_questions:"
	counterTTL       = 30 * 24 * time.Hour
)

// RedisCounterStore persists counters process-externally so they survive
// restarts and are shared across instances.
type RedisCounterStore struct {
	rdb *redis.Client
}

func NewRedisCounterStore(rdb *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{rdb: rdb}
}

func (s *RedisCounterStore) Increment(ctx context.Context, guestId string) (int, error) {
	key := counterKeyPrefix + guestId
	n, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	// Best-effort TTL refresh; a missing expiry only means the counter
	// lingers longer than needed.
	s.rdb.Expire(ctx, key, counterTTL)
	return int(n), nil
}

func (s *RedisCounterStore) Get(ctx context.Context, guestId string) (int, error) {
	n, err := s.rdb.Get(ctx, counterKeyPrefix+guestId).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

func (s *RedisCounterStore) Reset(ctx context.Context, guestId string) error {
	return s.rdb.Del(ctx, counterKeyPrefix+guestId).Err()
}
