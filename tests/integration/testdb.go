// Package integration runs the stores and the HTTP API against real
// PostgreSQL and Redis containers started with testcontainers.
package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/invoicesxpert/backend/internal/infrastructure/cache"
	"github.com/invoicesxpert/backend/internal/infrastructure/config"
	"github.com/invoicesxpert/backend/internal/infrastructure/logger"
	"github.com/invoicesxpert/backend/internal/infrastructure/migration"
	"github.com/invoicesxpert/backend/internal/infrastructure/persistence"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	gormlogger "gorm.io/gorm/logger"
)

// TestDB is a migrated PostgreSQL database opened the way the server opens
// it, in a container of its own. DB is the gorm handle repositories take.
type TestDB struct {
	*persistence.Database
}

// NewTestDB starts PostgreSQL, connects through persistence.NewDatabase and
// applies the embedded migrations. Set TEST_DB_DEBUG to log every statement.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("invoices_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute)),
	)
	require.NoError(t, err, "start PostgreSQL container")
	terminateOnCleanup(t, container)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	level := gormlogger.Warn
	if os.Getenv("TEST_DB_DEBUG") != "" {
		level = gormlogger.Info
	}
	db, err := persistence.NewDatabase(
		&config.PersistenceConfig{Driver: config.DriverPostgres},
		&config.DatabaseConfig{
			Host:         host,
			Port:         port.Int(),
			User:         "postgres",
			Password:     "postgres",
			DBName:       "invoices_test",
			SSLMode:      "disable",
			MaxOpenConns: 5,
			MaxIdleConns: 2,
		},
		persistence.WithGormLogger(logger.NewGormLogger(zaptest.NewLogger(t), level)),
	)
	require.NoError(t, err, "connect to PostgreSQL")
	t.Cleanup(func() { _ = db.Close() })

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	m, err := migration.New(sqlDB, zap.NewNop())
	require.NoError(t, err, "create migrator")
	require.NoError(t, m.Up(), "apply migrations")

	return &TestDB{Database: db}
}

// TestRedis is a Redis server in a container of its own.
type TestRedis struct {
	Client *redis.Client
}

// NewTestRedis starts Redis and connects through cache.NewRedisClient.
func NewTestRedis(t *testing.T) *TestRedis {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "start Redis container")
	terminateOnCleanup(t, container)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	client, err := cache.NewRedisClient(ctx, config.RedisConfig{Host: host, Port: port.Int()})
	require.NoError(t, err, "connect to Redis")
	t.Cleanup(func() { _ = client.Close() })

	return &TestRedis{Client: client}
}

func terminateOnCleanup(t *testing.T, c testcontainers.Container) {
	t.Cleanup(func() {
		if err := c.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})
}
