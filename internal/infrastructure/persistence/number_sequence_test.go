package persistence

import (
	"context"
	"testing"

	"github.com/invoicesxpert/backend/internal/domain/invoicing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormNumberSequence(t *testing.T) {
	seq := NewGormNumberSequence(setupSQLiteDB(t))
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := seq.Next(ctx, "owner-a", 2025)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	t.Run("counters are per owner and year", func(t *testing.T) {
		got, err := seq.Next(ctx, "owner-b", 2025)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got)

		got, err = seq.Next(ctx, "owner-a", 2026)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got)
	})

	t.Run("drives the number generator", func(t *testing.T) {
		gen := invoicing.NewNumberGenerator(NewGormNumberSequence(setupSQLiteDB(t)))
		number, err := gen.Next(ctx, "owner-c")
		require.NoError(t, err)
		assert.Regexp(t, `^INV-\d{4}-0001$`, number)
	})
}
