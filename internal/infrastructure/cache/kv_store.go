package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/invoicesxpert/backend/internal/infrastructure/persistence"
	"github.com/redis/go-redis/v9"
)

// maxMutateRetries bounds optimistic retries when a watched key changes
const maxMutateRetries = 16

// RedisKVStore implements persistence.KVStore on Redis strings. Mutate uses
// WATCH/MULTI so concurrent writers from several instances never lose an
// update.
type RedisKVStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisKVStore creates a store. keyPrefix namespaces every key.
func NewRedisKVStore(client *redis.Client, keyPrefix string) *RedisKVStore {
	return &RedisKVStore{client: client, keyPrefix: keyPrefix}
}

// Get returns nil for absent keys
func (s *RedisKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key: %w", err)
	}
	return v, nil
}

// Mutate applies fn inside an optimistic transaction on key
func (s *RedisKVStore) Mutate(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error {
	fullKey := s.keyPrefix + key

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, fullKey).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if errors.Is(err, redis.Nil) {
			current = nil
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if len(next) == 0 {
				pipe.Del(ctx, fullKey)
				return nil
			}
			pipe.Set(ctx, fullKey, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxMutateRetries; i++ {
		err := s.client.Watch(ctx, txf, fullKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("failed to update %s: too much contention", key)
}

var _ persistence.KVStore = (*RedisKVStore)(nil)
