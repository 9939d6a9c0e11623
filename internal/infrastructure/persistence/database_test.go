package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/invoicesxpert/backend/internal/infrastructure/config"
	"github.com/invoicesxpert/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwnerScope(t *testing.T) {
	type invoiceRow struct {
		ID      uint
		OwnerID string
		Number  string
	}

	t.Run("filters by owner", func(t *testing.T) {
		mdb := testutil.NewMockDB(t)
		mdb.Mock.ExpectQuery(`SELECT \* FROM "invoice_rows" WHERE owner_id = \$1`).
			WithArgs("studio-7").
			WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "number"}).
				AddRow(1, "studio-7", "INV-2025-0001"))

		var rows []invoiceRow
		require.NoError(t, mdb.DB.Scopes(OwnerScope("studio-7")).Find(&rows).Error)
		assert.Len(t, rows, 1)
		mdb.ExpectationsWereMet(t)
	})

	t.Run("owner is bound, never interpolated", func(t *testing.T) {
		mdb := testutil.NewMockDB(t)
		hostile := "x'; DROP TABLE invoices; --"
		mdb.Mock.ExpectQuery(`SELECT \* FROM "invoice_rows" WHERE owner_id = \$1 ORDER BY created_at`).
			WithArgs(hostile).
			WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id"}))

		var rows []invoiceRow
		require.NoError(t, mdb.DB.Scopes(OwnerScope(hostile)).Order("created_at").Find(&rows).Error)
		mdb.ExpectationsWereMet(t)
	})

	t.Run("empty owner panics", func(t *testing.T) {
		assert.Panics(t, func() { OwnerScope("") })
	})
}

func TestDatabase_PingAndClose(t *testing.T) {
	mdb := testutil.NewMockDB(t, sqlmock.MonitorPingsOption(true))
	db := &Database{DB: mdb.DB, driver: config.DriverPostgres}

	mdb.Mock.ExpectPing()
	assert.NoError(t, db.Ping(context.Background()))

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, stats.OpenConnections, stats.InUse+stats.Idle)

	mdb.Mock.ExpectClose()
	assert.NoError(t, db.Close())
	mdb.ExpectationsWereMet(t)
	assert.Equal(t, "postgresql", db.System())
}

func TestNewDatabase_SQLite(t *testing.T) {
	db, err := NewDatabase(
		&config.PersistenceConfig{Driver: config.DriverSQLite},
		&config.DatabaseConfig{SQLitePath: ":memory:"},
	)
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Ping(context.Background()))
	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections)
	assert.Equal(t, "sqlite", db.System())
}

func TestNewDatabase_KVDriverHasNoDatabase(t *testing.T) {
	_, err := NewDatabase(
		&config.PersistenceConfig{Driver: config.DriverKV},
		&config.DatabaseConfig{},
	)
	assert.ErrorContains(t, err, "has no SQL database")
}

func TestGormNumberSequence_WrapsStoreErrors(t *testing.T) {
	mdb := testutil.NewMockDB(t)
	seq := NewGormNumberSequence(mdb.DB)

	mdb.Mock.ExpectBegin().WillReturnError(assert.AnError)

	_, err := seq.Next(context.Background(), "studio-7", 2025)
	assert.ErrorContains(t, err, "failed to advance invoice sequence")
	mdb.ExpectationsWereMet(t)
}
