package integration

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/invoicesxpert/backend/internal/domain/invoicing"
	"github.com/invoicesxpert/backend/internal/infrastructure/cache"
	"github.com/invoicesxpert/backend/internal/infrastructure/persistence"
	"github.com/invoicesxpert/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRedisKVStore_Integration runs the key/value repositories on Redis
func TestRedisKVStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tr := NewTestRedis(t)
	store := cache.NewRedisKVStore(tr.Client, cache.KVKeyPrefix)
	clients := persistence.NewKVClientRepository(store)
	ctx := context.Background()
	owner := testutil.TestOwnerID(t)

	t.Run("repository round trip", func(t *testing.T) {
		saved, err := clients.Add(ctx, newClient(t, owner, "acme"))
		require.NoError(t, err)

		found, err := clients.FindByID(ctx, owner, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, "acme", found.Name)

		// the collection lives under the prefixed key
		n, err := tr.Client.Exists(ctx, cache.KVKeyPrefix+persistence.ClientsKeyPrefix+":"+owner).Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("concurrent adds are not lost", func(t *testing.T) {
		racing := testutil.TestOwnerID(t)
		const writers = 8
		var wg sync.WaitGroup
		for i := range writers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := clients.Add(ctx, newClient(t, racing, string(rune('a'+i))+"-corp"))
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		all, err := clients.FindAll(ctx, racing)
		require.NoError(t, err)
		assert.Len(t, all, writers)
	})

	t.Run("missing key reads as nil", func(t *testing.T) {
		v, err := store.Get(ctx, "nothing-here")
		require.NoError(t, err)
		assert.Nil(t, v)
	})
}

// TestRedisLocker_Integration checks that two holders never overlap
func TestRedisLocker_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tr := NewTestRedis(t)
	locker := cache.NewRedisLocker(tr.Client, cache.LockKeyPrefix, 10*time.Second)
	ctx := context.Background()

	t.Run("mutual exclusion", func(t *testing.T) {
		var (
			wg      sync.WaitGroup
			inside  atomic.Int32
			overlap atomic.Bool
		)
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock, err := locker.Lock(ctx, "invoice-1")
				if !assert.NoError(t, err) {
					return
				}
				if inside.Add(1) > 1 {
					overlap.Store(true)
				}
				time.Sleep(20 * time.Millisecond)
				inside.Add(-1)
				unlock()
			}()
		}
		wg.Wait()
		assert.False(t, overlap.Load())
	})

	t.Run("waiter gives up when its context ends", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, "invoice-2")
		require.NoError(t, err)
		defer unlock()

		waitCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
		defer cancel()
		_, err = locker.Lock(waitCtx, "invoice-2")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("release frees the key", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, "invoice-3")
		require.NoError(t, err)
		unlock()

		n, err := tr.Client.Exists(ctx, cache.LockKeyPrefix+"invoice-3").Result()
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

// TestRedisNumberSequence_Integration checks numbering across two sequence
// instances sharing one Redis
func TestRedisNumberSequence_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tr := NewTestRedis(t)
	first := cache.NewRedisNumberSequence(tr.Client, cache.SequenceKeyPrefix)
	second := cache.NewRedisNumberSequence(tr.Client, cache.SequenceKeyPrefix)
	ctx := context.Background()
	owner := testutil.TestOwnerID(t)

	n, err := first.Next(ctx, owner, 2025)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = second.Next(ctx, owner, 2025)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	gen := invoicing.NewNumberGenerator(first).
		WithClock(func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) })
	number, err := gen.Next(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, "INV-2025-0003", number)
}
