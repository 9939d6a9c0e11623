package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/invoicesxpert/backend/internal/domain/invoicing"
	"github.com/redis/go-redis/v9"
)

// MemoryNumberSequence counts per owner and year in process memory
type MemoryNumberSequence struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewMemoryNumberSequence creates an empty sequence
func NewMemoryNumberSequence() *MemoryNumberSequence {
	return &MemoryNumberSequence{counters: make(map[string]int64)}
}

// Next returns the next value for ownerID and year, starting at 1
func (s *MemoryNumberSequence) Next(ctx context.Context, ownerID string, year int) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := sequenceKey(ownerID, year)
	s.counters[key]++
	return s.counters[key], nil
}

// RedisNumberSequence uses INCR on one key per owner and year
type RedisNumberSequence struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisNumberSequence creates a Redis-backed sequence
func NewRedisNumberSequence(client *redis.Client, keyPrefix string) *RedisNumberSequence {
	return &RedisNumberSequence{client: client, keyPrefix: keyPrefix}
}

// Next atomically increments the counter
func (s *RedisNumberSequence) Next(ctx context.Context, ownerID string, year int) (int64, error) {
	n, err := s.client.Incr(ctx, s.keyPrefix+sequenceKey(ownerID, year)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment invoice sequence: %w", err)
	}
	return n, nil
}

func sequenceKey(ownerID string, year int) string {
	return fmt.Sprintf("seq:%s:%d", ownerID, year)
}

var (
	_ invoicing.NumberSequence = (*MemoryNumberSequence)(nil)
	_ invoicing.NumberSequence = (*RedisNumberSequence)(nil)
)
