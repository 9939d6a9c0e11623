package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/invoicesxpert/backend/internal/domain/printing"
	"github.com/invoicesxpert/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormExportJobRepository(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewGormExportJobRepository(db)
	ctx := context.Background()
	invoiceID := uuid.New()

	older, err := printing.NewExportJob("owner-a", invoiceID, "INV-2025-0001", "classic")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, older))

	newer, err := printing.NewExportJob("owner-a", invoiceID, "INV-2025-0001", "modern")
	require.NoError(t, err)
	newer.CreatedAt = older.CreatedAt.Add(time.Second)
	require.NoError(t, repo.Save(ctx, newer))

	t.Run("Save updates an existing job", func(t *testing.T) {
		require.NoError(t, older.StartRendering())
		require.NoError(t, older.MarkMounted())
		require.NoError(t, older.MarkCaptured())
		require.NoError(t, older.MarkAssembled(2, 4096))
		require.NoError(t, repo.Save(ctx, older))

		found, err := repo.FindByID(ctx, "owner-a", older.ID)
		require.NoError(t, err)
		assert.Equal(t, printing.ExportStatusAssembled, found.Status)
		assert.Equal(t, 2, found.PageCount)
		assert.Equal(t, int64(4096), found.SizeBytes)
	})

	t.Run("FindByInvoice lists newest first", func(t *testing.T) {
		jobs, err := repo.FindByInvoice(ctx, "owner-a", invoiceID)
		require.NoError(t, err)
		require.Len(t, jobs, 2)
		assert.Equal(t, newer.ID, jobs[0].ID)
		assert.Equal(t, older.ID, jobs[1].ID)
	})

	t.Run("FindByID is owner scoped", func(t *testing.T) {
		_, err := repo.FindByID(ctx, "owner-b", older.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
