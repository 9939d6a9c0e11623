package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/invoicesxpert/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const redisDialTimeout = 5 * time.Second

// NewRedisClient returns a client that has already answered PING. The
// connection shows up as "invoicesxpert" in CLIENT LIST.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		ClientName:  "invoicesxpert",
		DialTimeout: redisDialTimeout,
	})

	ctx, cancel := context.WithTimeout(ctx, redisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis at %s unreachable: %w", cfg.Addr(), err)
	}
	return client, nil
}
