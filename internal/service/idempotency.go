package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/school-directory/internal/config"
)

// ErrRequestInFlight is returned when a create with the same idempotency key
// has been reserved but not yet completed.
var ErrRequestInFlight = errors.New("idempotent request in flight")

// IdempotencyStore remembers which school a client-supplied idempotency key produced.
type IdempotencyStore interface {
	// Reserve claims key. It returns 0 when the caller now owns the key, the
	// school id when the key already completed, or ErrRequestInFlight.
	Reserve(ctx context.Context, key string) (int64, error)
	// Complete records the id produced for key.
	Complete(ctx context.Context, key string, id int64) error
	// Release drops a reservation whose create failed so the client can retry.
	Release(ctx context.Context, key string) error
}

const idempotencyPending = "pending"

// RedisIdempotencyStore keeps idempotency keys in Redis with a TTL.
type RedisIdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisIdempotencyStore creates a new RedisIdempotencyStore.
func NewRedisIdempotencyStore(rdb *redis.Client, ttl time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{rdb: rdb, ttl: ttl}
}

func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key string) (int64, error) {
	k := config.CacheKey.CreateSchoolIdempotencyKey(key)

	// Second attempt covers a key expiring between SETNX and GET.
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.rdb.SetNX(ctx, k, idempotencyPending, s.ttl).Result()
		if err != nil {
			return 0, fmt.Errorf("reserve idempotency key: %w", err)
		}
		if ok {
			return 0, nil
		}

		val, err := s.rdb.Get(ctx, k).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("read idempotency key: %w", err)
		}
		if val == idempotencyPending {
			return 0, ErrRequestInFlight
		}
		id, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("corrupt idempotency record %q: %w", val, err)
		}
		return id, nil
	}
	return 0, ErrRequestInFlight
}

func (s *RedisIdempotencyStore) Complete(ctx context.Context, key string, id int64) error {
	k := config.CacheKey.CreateSchoolIdempotencyKey(key)
	return s.rdb.Set(ctx, k, strconv.FormatInt(id, 10), s.ttl).Err()
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, config.CacheKey.CreateSchoolIdempotencyKey(key)).Err()
}

// MemoryIdempotencyStore keeps idempotency keys in process memory. It is used
// when REDIS_URL is unset and only protects a single server instance.
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type memoryEntry struct {
	id        int64 // 0 while pending
	expiresAt time.Time
}

// NewMemoryIdempotencyStore creates a new MemoryIdempotencyStore.
func NewMemoryIdempotencyStore(ttl time.Duration) *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryIdempotencyStore) Reserve(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictExpired(now)

	if e, ok := s.entries[key]; ok {
		if e.id == 0 {
			return 0, ErrRequestInFlight
		}
		return e.id, nil
	}
	s.entries[key] = memoryEntry{expiresAt: now.Add(s.ttl)}
	return 0, nil
}

func (s *MemoryIdempotencyStore) Complete(_ context.Context, key string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{id: id, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemoryIdempotencyStore) evictExpired(now time.Time) {
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
		}
	}
}
