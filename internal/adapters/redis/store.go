package redisad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"campus_map/internal/adapters/observability"
)

const storeName = "redis"

// Store keeps JSON-encoded view session state with a TTL.
type Store struct{ c *redis.Client }

func New(addr, pass string, db int) *Store {
	return NewFromClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}))
}

func NewFromClient(c *redis.Client) *Store { return &Store{c: c} }

func (s *Store) Ping(ctx context.Context) error { return s.c.Ping(ctx).Err() }

func (s *Store) Close() error { return s.c.Close() }

func (s *Store) Load(ctx context.Context, key string, dst any) (bool, error) {
	v, err := s.c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.ObserveStore(storeName, "miss")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	observability.ObserveStore(storeName, "hit")
	if err := json.Unmarshal(v, dst); err != nil {
		return false, fmt.Errorf("redis decode %s: %w", key, err)
	}
	return true, nil
}

// Save overwrites key. A non-positive ttl stores without expiry.
func (s *Store) Save(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("redis encode %s: %w", key, err)
	}
	if ttl < 0 {
		ttl = 0
	}
	observability.ObserveStore(storeName, "save")
	return s.c.Set(ctx, key, b, ttl).Err()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	observability.ObserveStore(storeName, "del")
	return s.c.Del(ctx, key).Err()
}
