package repositories

import (
	"context"
	"testing"

	"github.com/nimeshabuddhika/gojenga-ledger/pkg"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/models"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_EnvSelectsNamespace(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	repo := NewAccountRepository(kv)

	require.NoError(t, repo.Create(ctx, pkg.EnvTest, models.Account{Name: "alice", Balance: decimal.RequireFromString("100.00")}))

	_, err := repo.FindByName(ctx, pkg.EnvProduction, "alice")
	assert.ErrorIs(t, err, store.ErrNotFound)

	item, err := kv.Get(ctx, store.NamespaceLedgerTest, "alice")
	require.NoError(t, err)
	assert.Equal(t, "100", item["balance"])
}

func TestAccountRepository_AdjustAndSet(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository(store.NewMemoryStore())
	require.NoError(t, repo.Create(ctx, pkg.EnvProduction, models.Account{Name: "bob", Balance: decimal.RequireFromString("30.00")}))

	account, err := repo.AdjustBalance(ctx, pkg.EnvProduction, "bob", decimal.RequireFromString("-50.5"))
	require.NoError(t, err)
	assert.Equal(t, "bob", account.Name)
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("-20.5")))

	require.NoError(t, repo.SetBalance(ctx, pkg.EnvProduction, "bob", decimal.RequireFromString("7")))
	account, err = repo.FindByName(ctx, pkg.EnvProduction, "bob")
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(7)))

	assert.ErrorIs(t, repo.SetBalance(ctx, pkg.EnvProduction, "ghost", decimal.Zero), store.ErrNotFound)
}

func TestAccountRepository_MalformedBalance(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	require.NoError(t, kv.Create(ctx, store.NamespaceLedger, "eve", store.Item{"name": "eve", "balance": "abc"}))

	_, err := NewAccountRepository(kv).FindByName(ctx, pkg.EnvProduction, "eve")
	assert.ErrorIs(t, err, store.ErrMalformedItem)
}

func TestUserRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	repo := NewUserRepository(kv)

	require.NoError(t, repo.Create(ctx, pkg.EnvProduction, models.UserCredential{Name: "carol", HashedPassword: "h1"}))
	require.NoError(t, repo.UpdatePassword(ctx, pkg.EnvProduction, "carol", "h2"))

	user, err := repo.FindByName(ctx, pkg.EnvProduction, "carol")
	require.NoError(t, err)
	assert.Equal(t, models.UserCredential{Name: "carol", HashedPassword: "h2"}, user)

	// Records without a disabled flag read as active.
	require.NoError(t, kv.Create(ctx, store.NamespaceUsers, "legacy", store.Item{"name": "legacy", "hashed_password": "h"}))
	user, err = repo.FindByName(ctx, pkg.EnvProduction, "legacy")
	require.NoError(t, err)
	assert.False(t, user.Disabled)
}

func TestPortfolioRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewPortfolioRepository(store.NewMemoryStore())
	portfolio := models.Portfolio{
		Username: "dave",
		Holdings: []models.Holding{{Symbol: "AAPL", Quantity: decimal.RequireFromString("1.5")}},
	}
	require.NoError(t, repo.Create(ctx, pkg.EnvTest, portfolio))

	got, err := repo.FindByUsername(ctx, pkg.EnvTest, "dave")
	require.NoError(t, err)
	require.Len(t, got.Holdings, 1)
	assert.Equal(t, "AAPL", got.Holdings[0].Symbol)
	assert.True(t, got.Holdings[0].Quantity.Equal(decimal.RequireFromString("1.5")))

	require.NoError(t, repo.Replace(ctx, pkg.EnvTest, models.Portfolio{Username: "dave"}))
	got, err = repo.FindByUsername(ctx, pkg.EnvTest, "dave")
	require.NoError(t, err)
	assert.Empty(t, got.Holdings)
}
