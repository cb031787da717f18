package gate

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryCounterStore keeps counters in-process. Suitable for development
// and tests; counters do not survive a restart.
type MemoryCounterStore struct {
	cache *cache.Cache
}

func NewMemoryCounterStore() *MemoryCounterStore {
	// Counters idle for a day are forgotten; expired items purged every hour.
	c := cache.New(24*time.Hour, 1*time.Hour)
	return &MemoryCounterStore{cache: c}
}

func (s *MemoryCounterStore) Increment(ctx context.Context, guestId string) (int, error) {
	if err := s.cache.Add(guestId, 0, cache.DefaultExpiration); err == nil {
		// first question from this guest
	}
	n, err := s.cache.IncrementInt(guestId, 1)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *MemoryCounterStore) Get(ctx context.Context, guestId string) (int, error) {
	if x, found := s.cache.Get(guestId); found {
		return x.(int), nil
	}
	return 0, nil
}

func (s *MemoryCounterStore) Reset(ctx context.Context, guestId string) error {
	s.cache.Set(guestId, 0, cache.DefaultExpiration)
	return nil
}
