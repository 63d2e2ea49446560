package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreContract exercises the behaviour every backend must share.
func runStoreContract(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("GetMissing_NotFound", func(t *testing.T) {
		_, err := s.Get(ctx, NamespaceLedgerTest, "nobody")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("CreateThenGet", func(t *testing.T) {
		require.NoError(t, s.Create(ctx, NamespaceLedgerTest, "alice", Item{"name": "alice", "balance": "100.00"}))

		item, err := s.Get(ctx, NamespaceLedgerTest, "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", item["name"])
		assert.Equal(t, "100.00", item["balance"])
	})

	t.Run("CreateDuplicate_Rejected", func(t *testing.T) {
		require.NoError(t, s.Create(ctx, NamespaceUsersTest, "dup", Item{"name": "dup"}))
		err := s.Create(ctx, NamespaceUsersTest, "dup", Item{"name": "other"})
		assert.ErrorIs(t, err, ErrDuplicate)

		item, err := s.Get(ctx, NamespaceUsersTest, "dup")
		require.NoError(t, err)
		assert.Equal(t, "dup", item["name"])
	})

	t.Run("NamespacesAreIsolated", func(t *testing.T) {
		require.NoError(t, s.Create(ctx, NamespaceLedger, "carol", Item{"balance": "1"}))
		_, err := s.Get(ctx, NamespaceLedgerTest, "carol")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("UpdateMergesFields", func(t *testing.T) {
		require.NoError(t, s.Create(ctx, NamespaceUsersTest, "dave", Item{"name": "dave", "hashed_password": "x"}))
		require.NoError(t, s.Update(ctx, NamespaceUsersTest, "dave", Item{"hashed_password": "y"}))

		item, err := s.Get(ctx, NamespaceUsersTest, "dave")
		require.NoError(t, err)
		assert.Equal(t, "dave", item["name"])
		assert.Equal(t, "y", item["hashed_password"])
	})

	t.Run("UpdateMissing_NotFound", func(t *testing.T) {
		err := s.Update(ctx, NamespaceUsersTest, "ghost", Item{"x": "1"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		require.NoError(t, s.Create(ctx, NamespacePortfolioTest, "erin", Item{"username": "erin"}))
		require.NoError(t, s.Delete(ctx, NamespacePortfolioTest, "erin"))
		require.NoError(t, s.Delete(ctx, NamespacePortfolioTest, "erin"))
		_, err := s.Get(ctx, NamespacePortfolioTest, "erin")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("AdjustDecimal", func(t *testing.T) {
		require.NoError(t, s.Create(ctx, NamespaceLedgerTest, "frank", Item{"name": "frank", "balance": "10.50"}))

		item, err := s.AdjustDecimal(ctx, NamespaceLedgerTest, "frank", "balance", decimal.RequireFromString("-20.25"))
		require.NoError(t, err)
		assert.Equal(t, "frank", item["name"])
		assert.True(t, decimal.RequireFromString("-9.75").Equal(decimal.RequireFromString(item["balance"])))

		stored, err := s.Get(ctx, NamespaceLedgerTest, "frank")
		require.NoError(t, err)
		assert.Equal(t, item["balance"], stored["balance"])
	})

	t.Run("AdjustDecimalMissing_NotFound", func(t *testing.T) {
		_, err := s.AdjustDecimal(ctx, NamespaceLedgerTest, "ghost", "balance", decimal.NewFromInt(1))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("AdjustDecimalMalformed", func(t *testing.T) {
		require.NoError(t, s.Create(ctx, NamespaceLedgerTest, "grace", Item{"balance": "lots"}))
		_, err := s.AdjustDecimal(ctx, NamespaceLedgerTest, "grace", "balance", decimal.NewFromInt(1))
		assert.ErrorIs(t, err, ErrMalformedItem)

		item, err := s.Get(ctx, NamespaceLedgerTest, "grace")
		require.NoError(t, err)
		assert.Equal(t, "lots", item["balance"])
	})

	t.Run("AdjustDecimalConcurrent_NoLostUpdates", func(t *testing.T) {
		require.NoError(t, s.Create(ctx, NamespaceLedgerTest, "heidi", Item{"balance": "0"}))

		const workers = 20
		var wg sync.WaitGroup
		errs := make(chan error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.AdjustDecimal(ctx, NamespaceLedgerTest, "heidi", "balance", decimal.RequireFromString("1.10"))
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			assert.NoError(t, err)
		}

		item, err := s.Get(ctx, NamespaceLedgerTest, "heidi")
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("22").Equal(decimal.RequireFromString(item["balance"])),
			fmt.Sprintf("balance %s", item["balance"]))
	})

	t.Run("EmptyKey_Rejected", func(t *testing.T) {
		_, err := s.Get(ctx, NamespaceLedgerTest, "")
		assert.ErrorIs(t, err, ErrMalformedItem)
	})
}
