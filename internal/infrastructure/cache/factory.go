package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/invoicesxpert/backend/internal/domain/invoicing"
	"github.com/invoicesxpert/backend/internal/infrastructure/config"
	"github.com/invoicesxpert/backend/internal/infrastructure/persistence"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Redis key namespaces
const (
	KVKeyPrefix       = "invoicesxpert:kv:"
	LockKeyPrefix     = "invoicesxpert:lock:"
	SequenceKeyPrefix = "invoicesxpert:"
)

// Locker serializes work per key
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// Factory builds the stores selected by configuration. The Redis client is
// created on first use and shared by everything the factory builds.
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger

	mu     sync.Mutex
	client *redis.Client
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithRedisClient supplies an existing client instead of dialing one
func WithRedisClient(client *redis.Client) FactoryOption {
	return func(f *Factory) {
		f.client = client
	}
}

// NewFactory creates a new factory
func NewFactory(cfg *config.Config, opts ...FactoryOption) *Factory {
	f := &Factory{
		cfg:    cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Redis returns the shared client, connecting on first call
func (f *Factory) Redis(ctx context.Context) (*redis.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.client != nil {
		return f.client, nil
	}
	client, err := NewRedisClient(ctx, f.cfg.Redis)
	if err != nil {
		return nil, err
	}
	f.logger.Info("Connected to Redis", zap.String("addr", f.cfg.Redis.Addr()))
	f.client = client
	return client, nil
}

// KVStore returns the key/value store named by persistence.kv_store
func (f *Factory) KVStore(ctx context.Context) (persistence.KVStore, error) {
	switch f.cfg.Persistence.KVStore {
	case config.KVStoreRedis:
		client, err := f.Redis(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis key/value store: %w", err)
		}
		return NewRedisKVStore(client, KVKeyPrefix), nil
	default:
		f.logger.Info("Using in-memory key/value store; data is lost on restart")
		return persistence.NewMemoryKVStore(), nil
	}
}

// ExportLocker returns the lock named by export.lock
func (f *Factory) ExportLocker(ctx context.Context) (Locker, error) {
	switch f.cfg.Export.Lock {
	case config.LockRedis:
		client, err := f.Redis(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis export lock: %w", err)
		}
		return NewRedisLocker(client, LockKeyPrefix, f.cfg.Export.LockTTL), nil
	default:
		return NewMemoryLocker(), nil
	}
}

// NumberSequence picks the counter matching the persistence driver: the SQL
// table when db is set, Redis when the key/value store is Redis, memory
// otherwise.
func (f *Factory) NumberSequence(ctx context.Context, db *gorm.DB) (invoicing.NumberSequence, error) {
	if db != nil {
		return persistence.NewGormNumberSequence(db), nil
	}
	if f.cfg.Persistence.KVStore == config.KVStoreRedis {
		client, err := f.Redis(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis invoice sequence: %w", err)
		}
		return NewRedisNumberSequence(client, SequenceKeyPrefix), nil
	}
	return NewMemoryNumberSequence(), nil
}

// Close closes the Redis client if one was opened
func (f *Factory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.client == nil {
		return nil
	}
	err := f.client.Close()
	f.client = nil
	return err
}
