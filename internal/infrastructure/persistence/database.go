package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/invoicesxpert/backend/internal/infrastructure/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database is the SQL store behind the gorm repositories.
type Database struct {
	DB     *gorm.DB
	driver string
}

// DatabaseOption configures NewDatabase
type DatabaseOption func(*gorm.Config)

// WithGormLogger replaces the silent default logger.
func WithGormLogger(l logger.Interface) DatabaseOption {
	return func(c *gorm.Config) { c.Logger = l }
}

// NewDatabase opens the database persistence.driver selects and verifies
// it answers. The kv driver has no SQL database and is rejected.
func NewDatabase(pcfg *config.PersistenceConfig, cfg *config.DatabaseConfig, opts ...DatabaseOption) (*Database, error) {
	var dialector gorm.Dialector
	switch pcfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN())
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.SQLitePath + "?_foreign_keys=on")
	default:
		return nil, fmt.Errorf("persistence driver %q has no SQL database", pcfg.Driver)
	}

	gormCfg := &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		// sqlite statements are cheap to prepare and the cache pins the one connection
		PrepareStmt: pcfg.Driver == config.DriverPostgres,
	}
	for _, opt := range opts {
		opt(gormCfg)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	configurePool(sqlDB, pcfg.Driver, cfg)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Database{DB: db, driver: pcfg.Driver}, nil
}

func configurePool(sqlDB *sql.DB, driver string, cfg *config.DatabaseConfig) {
	if driver == config.DriverSQLite {
		// one writer; concurrent exports would otherwise hit SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
		return
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)
}

// System is the db.system attribute value for spans.
func (d *Database) System() string {
	if d.driver == config.DriverSQLite {
		return "sqlite"
	}
	return "postgresql"
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping backs the /ready database check.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Stats reports the connection pool.
func (d *Database) Stats() (sql.DBStats, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return sql.DBStats{}, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Stats(), nil
}

// OwnerScope restricts a query to one owner's rows. Every repository query
// goes through it; an empty owner is a programming error and panics rather
// than returning every owner's data.
func OwnerScope(ownerID string) func(db *gorm.DB) *gorm.DB {
	if ownerID == "" {
		panic("persistence: OwnerScope called with empty owner ID")
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("owner_id = ?", ownerID)
	}
}
