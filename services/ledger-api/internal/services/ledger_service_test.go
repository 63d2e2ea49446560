package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nimeshabuddhika/gojenga-ledger/pkg"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/models"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/repositories"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type ledgerFixture struct {
	svc       LedgerService
	kv        *faultyStore
	accounts  repositories.AccountRepository
	users     repositories.UserRepository
	portfolio repositories.PortfolioRepository
	events    *recordingPublisher
	sleeps    []time.Duration
}

func newLedgerFixture(t *testing.T, attempts int) *ledgerFixture {
	t.Helper()
	f := &ledgerFixture{kv: &faultyStore{Store: store.NewMemoryStore()}, events: &recordingPublisher{}}
	f.accounts = repositories.NewAccountRepository(f.kv)
	f.users = repositories.NewUserRepository(f.kv)
	f.portfolio = repositories.NewPortfolioRepository(f.kv)
	f.svc = NewLedgerService(zap.NewNop(), LedgerConfig{
		RollbackMaxAttempts: attempts,
		RollbackBaseBackoff: 10 * time.Millisecond,
		RollbackMaxBackoff:  100 * time.Millisecond,
		Now:                 fixedClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)),
		Sleep:               func(d time.Duration) { f.sleeps = append(f.sleeps, d) },
	}, f.accounts, f.portfolio, f.users, f.events)
	return f
}

func (f *ledgerFixture) open(t *testing.T, env pkg.Env, name, balance string) {
	t.Helper()
	_, err := f.svc.CreateAccount(context.Background(), "trace", env, name, decimal.RequireFromString(balance))
	require.NoError(t, err)
}

func (f *ledgerFixture) balance(t *testing.T, env pkg.Env, name string) string {
	t.Helper()
	account, err := f.svc.GetAccount(context.Background(), "trace", env, name)
	require.NoError(t, err)
	return account.Balance.StringFixed(2)
}

func transfer(sender, receiver, amount string) models.Transaction {
	return models.Transaction{Sender: sender, Receiver: receiver, Amount: decimal.RequireFromString(amount)}
}

func TestTransfer_MovesFundsAndAllowsOverdraft(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, 3)
	f.open(t, pkg.EnvProduction, "alice", "100.00")
	f.open(t, pkg.EnvProduction, "bob", "0.00")

	receipt, err := f.svc.Transfer(ctx, "trace", pkg.EnvProduction, transfer("alice", "bob", "30.00"))
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.TransferID)
	assert.Equal(t, "alice", receipt.Sender.Name)
	assert.Equal(t, "70.00", receipt.Sender.Balance.StringFixed(2))
	assert.Equal(t, "bob", receipt.Receiver)
	assert.Equal(t, "70.00", f.balance(t, pkg.EnvProduction, "alice"))
	assert.Equal(t, "30.00", f.balance(t, pkg.EnvProduction, "bob"))

	_, err = f.svc.Transfer(ctx, "trace", pkg.EnvProduction, transfer("alice", "bob", "1000.00"))
	require.NoError(t, err)
	assert.Equal(t, "-930.00", f.balance(t, pkg.EnvProduction, "alice"))
	assert.Equal(t, "1030.00", f.balance(t, pkg.EnvProduction, "bob"))

	events := f.events.Events()
	require.Len(t, events, 2)
	assert.Equal(t, pkg.LedgerEventTransferCompleted, events[0].Type)
	assert.Equal(t, receipt.TransferID, events[0].ID)
	assert.True(t, events[0].Amount.Equal(decimal.RequireFromString("30")))
}

func TestTransfer_RecipientNotFound(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, 3)
	f.open(t, pkg.EnvProduction, "alice", "70.00")

	_, err := f.svc.Transfer(ctx, "trace", pkg.EnvProduction, transfer("alice", "nonexistent", "10.00"))
	require.Error(t, err)
	assert.True(t, pkg.HasCode(err, pkg.ErrRecipientNotFoundCode))
	assert.ErrorIs(t, err, pkg.ErrRecipientNotFound)
	assert.Equal(t, "70.00", f.balance(t, pkg.EnvProduction, "alice"))
	assert.Empty(t, f.events.Events())
}

func TestTransfer_RecipientCheckReadsPrimary(t *testing.T) {
	f := newLedgerFixture(t, 3)
	f.open(t, pkg.EnvProduction, "alice", "70.00")
	f.open(t, pkg.EnvProduction, "bob", "0.00")

	var checks []bool
	f.kv.onGet = func(ctx context.Context, ns store.Namespace, key string) error {
		if ns == store.NamespaceLedger && key == "bob" {
			checks = append(checks, store.IsPrimaryRead(ctx))
		}
		return nil
	}

	_, err := f.svc.Transfer(context.Background(), "trace", pkg.EnvProduction, transfer("alice", "bob", "10.00"))
	require.NoError(t, err)
	require.NotEmpty(t, checks)
	assert.True(t, checks[0])
}

func TestTransfer_MissingSenderLeavesReceiverUntouched(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, 3)
	f.open(t, pkg.EnvProduction, "bob", "5.00")

	_, err := f.svc.Transfer(ctx, "trace", pkg.EnvProduction, transfer("ghost", "bob", "1.00"))
	assert.True(t, pkg.HasCode(err, pkg.ErrRecordNotFoundCode))
	assert.Equal(t, "5.00", f.balance(t, pkg.EnvProduction, "bob"))
}

func TestTransfer_PartitionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, 3)
	f.open(t, pkg.EnvProduction, "alice", "10.00")
	f.open(t, pkg.EnvTest, "alice", "10.00")
	f.open(t, pkg.EnvTest, "bob", "0.00")

	_, err := f.svc.Transfer(ctx, "trace", pkg.EnvProduction, transfer("alice", "bob", "1.00"))
	assert.True(t, pkg.HasCode(err, pkg.ErrRecipientNotFoundCode))

	_, err = f.svc.Transfer(ctx, "trace", pkg.EnvTest, transfer("alice", "bob", "1.00"))
	require.NoError(t, err)
	assert.Equal(t, "10.00", f.balance(t, pkg.EnvProduction, "alice"))
	assert.Equal(t, "9.00", f.balance(t, pkg.EnvTest, "alice"))
}

func TestTransfer_CreditFailureIsRolledBack(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, 3)
	f.open(t, pkg.EnvProduction, "alice", "100.00")
	f.open(t, pkg.EnvProduction, "bob", "0.00")

	boom := errors.New("connection reset")
	f.kv.failAdjust = func(_ int, key string, _ decimal.Decimal) error {
		if key == "bob" {
			return boom
		}
		return nil
	}

	_, err := f.svc.Transfer(ctx, "trace", pkg.EnvProduction, transfer("alice", "bob", "25.00"))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, pkg.HasCode(err, pkg.ErrStoreUnknownCode))
	assert.Equal(t, "100.00", f.balance(t, pkg.EnvProduction, "alice"))
	assert.Equal(t, "0.00", f.balance(t, pkg.EnvProduction, "bob"))
	assert.Empty(t, f.sleeps)

	events := f.events.Events()
	require.Len(t, events, 1)
	assert.Equal(t, pkg.LedgerEventTransferRolledBack, events[0].Type)
}

func TestTransfer_ReceiverVanishesBeforeCredit(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, 3)
	f.open(t, pkg.EnvProduction, "alice", "100.00")
	f.open(t, pkg.EnvProduction, "bob", "0.00")

	f.kv.failAdjust = func(_ int, key string, _ decimal.Decimal) error {
		if key == "bob" {
			return store.ErrNotFound
		}
		return nil
	}

	_, err := f.svc.Transfer(ctx, "trace", pkg.EnvProduction, transfer("alice", "bob", "10.00"))
	assert.True(t, pkg.HasCode(err, pkg.ErrRecipientNotFoundCode))
	assert.Equal(t, "100.00", f.balance(t, pkg.EnvProduction, "alice"))
}

func TestTransfer_RollbackRetriesWithBackoff(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, 3)
	f.open(t, pkg.EnvProduction, "alice", "100.00")
	f.open(t, pkg.EnvProduction, "bob", "0.00")

	rollbacks := 0
	f.kv.failAdjust = func(_ int, key string, delta decimal.Decimal) error {
		switch {
		case key == "bob":
			return errors.New("credit failed")
		case key == "alice" && delta.IsPositive():
			rollbacks++
			if rollbacks < 3 {
				return errors.New("rollback failed")
			}
		}
		return nil
	}

	_, err := f.svc.Transfer(ctx, "trace", pkg.EnvProduction, transfer("alice", "bob", "40.00"))
	require.Error(t, err)
	assert.False(t, pkg.HasCode(err, pkg.ErrRollbackFailedCode))
	assert.Equal(t, 3, rollbacks)
	assert.Len(t, f.sleeps, 2)
	for _, d := range f.sleeps {
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, 100*time.Millisecond)
	}
	assert.Equal(t, "100.00", f.balance(t, pkg.EnvProduction, "alice"))
}

func TestTransfer_RollbackFailedLeavesSenderDebited(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, 2)
	f.open(t, pkg.EnvProduction, "alice", "100.00")
	f.open(t, pkg.EnvProduction, "bob", "0.00")

	creditErr := errors.New("credit failed")
	rollbackErr := errors.New("rollback failed")
	f.kv.failAdjust = func(_ int, key string, delta decimal.Decimal) error {
		switch {
		case key == "bob":
			return creditErr
		case key == "alice" && delta.IsPositive():
			return rollbackErr
		}
		return nil
	}

	_, err := f.svc.Transfer(ctx, "trace", pkg.EnvProduction, transfer("alice", "bob", "40.00"))
	require.Error(t, err)
	assert.True(t, pkg.HasCode(err, pkg.ErrRollbackFailedCode))
	assert.ErrorIs(t, err, pkg.ErrRollbackFailed)
	assert.ErrorIs(t, err, creditErr)
	assert.ErrorIs(t, err, rollbackErr)
	assert.Len(t, f.sleeps, 1)

	f.kv.failAdjust = nil
	assert.Equal(t, "60.00", f.balance(t, pkg.EnvProduction, "alice"))
	assert.Equal(t, "0.00", f.balance(t, pkg.EnvProduction, "bob"))

	events := f.events.Events()
	require.Len(t, events, 1)
	assert.Equal(t, pkg.LedgerEventTransferRollbackFailed, events[0].Type)
	assert.Equal(t, rollbackErr.Error(), events[0].Reason)
}

func TestTransfer_RollbackSurvivesCancelledRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := newLedgerFixture(t, 3)
	f.open(t, pkg.EnvProduction, "alice", "100.00")
	f.open(t, pkg.EnvProduction, "bob", "0.00")

	f.kv.failAdjust = func(_ int, key string, _ decimal.Decimal) error {
		if key == "bob" {
			cancel()
			return context.Canceled
		}
		return nil
	}

	_, err := f.svc.Transfer(ctx, "trace", pkg.EnvProduction, transfer("alice", "bob", "15.00"))
	require.Error(t, err)
	assert.Equal(t, "100.00", f.balance(t, pkg.EnvProduction, "alice"))
}

func TestTransfer_ConcurrentTransfersConserveTotal(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, 3)
	f.open(t, pkg.EnvProduction, "alice", "500.00")
	f.open(t, pkg.EnvProduction, "bob", "500.00")
	f.open(t, pkg.EnvProduction, "carol", "500.00")

	pairs := [][2]string{{"alice", "bob"}, {"bob", "carol"}, {"carol", "alice"}, {"bob", "alice"}}
	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := pairs[i%len(pairs)]
			_, err := f.svc.Transfer(ctx, "trace", pkg.EnvProduction, transfer(p[0], p[1], "3.33"))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	total := decimal.Zero
	for _, name := range []string{"alice", "bob", "carol"} {
		account, err := f.svc.GetAccount(ctx, "trace", pkg.EnvProduction, name)
		require.NoError(t, err)
		total = total.Add(account.Balance)
	}
	assert.Equal(t, "1500.00", total.StringFixed(2))
}

func TestAdjustBalance_ConcurrentDeposits(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, 3)
	f.open(t, pkg.EnvProduction, "alice", "0")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.AdjustBalance(ctx, "trace", pkg.EnvProduction, "alice", decimal.RequireFromString("0.10"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, "5.00", f.balance(t, pkg.EnvProduction, "alice"))
}

func TestAccountLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, 3)
	f.open(t, pkg.EnvProduction, "alice", "1.50")

	_, err := f.svc.CreateAccount(ctx, "trace", pkg.EnvProduction, "alice", decimal.Zero)
	assert.True(t, pkg.HasCode(err, pkg.ErrStoreDuplicateCode))

	account, err := f.svc.SetBalance(ctx, "trace", pkg.EnvProduction, "alice", decimal.RequireFromString("42"))
	require.NoError(t, err)
	assert.Equal(t, "42.00", account.Balance.StringFixed(2))

	_, err = f.svc.SetBalance(ctx, "trace", pkg.EnvProduction, "nobody", decimal.Zero)
	assert.True(t, pkg.HasCode(err, pkg.ErrRecordNotFoundCode))

	_, err = f.svc.GetAccount(ctx, "trace", pkg.EnvProduction, "nobody")
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestDeleteAccount_RemovesEveryRecord(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, 3)
	f.open(t, pkg.EnvProduction, "alice", "1.00")
	require.NoError(t, f.users.Create(ctx, pkg.EnvProduction, models.UserCredential{Name: "alice", HashedPassword: "h"}))
	require.NoError(t, f.portfolio.Create(ctx, pkg.EnvProduction, models.Portfolio{Username: "alice"}))

	require.NoError(t, f.svc.DeleteAccount(ctx, "trace", pkg.EnvProduction, "alice"))

	_, err := f.accounts.FindByName(ctx, pkg.EnvProduction, "alice")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = f.users.FindByName(ctx, pkg.EnvProduction, "alice")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = f.portfolio.FindByUsername(ctx, pkg.EnvProduction, "alice")
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.NoError(t, f.svc.DeleteAccount(ctx, "trace", pkg.EnvProduction, "alice"))
}

func TestDeleteAccount_CleansUpWithoutLedgerRecord(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, 3)
	require.NoError(t, f.users.Create(ctx, pkg.EnvProduction, models.UserCredential{Name: "carol", HashedPassword: "h"}))
	require.NoError(t, f.portfolio.Create(ctx, pkg.EnvProduction, models.Portfolio{Username: "carol"}))

	require.NoError(t, f.svc.DeleteAccount(ctx, "trace", pkg.EnvProduction, "carol"))

	_, err := f.users.FindByName(ctx, pkg.EnvProduction, "carol")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = f.portfolio.FindByUsername(ctx, pkg.EnvProduction, "carol")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeleteAccount_LaterStepFailureKeepsCompletedSteps(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t, 3)
	f.open(t, pkg.EnvProduction, "alice", "1.00")
	require.NoError(t, f.users.Create(ctx, pkg.EnvProduction, models.UserCredential{Name: "alice", HashedPassword: "h"}))
	require.NoError(t, f.portfolio.Create(ctx, pkg.EnvProduction, models.Portfolio{Username: "alice"}))
	f.kv.failDelete = func(ns store.Namespace, _ string) error {
		if ns == store.NamespaceUsers {
			return errors.New("connection reset")
		}
		return nil
	}

	err := f.svc.DeleteAccount(ctx, "trace", pkg.EnvProduction, "alice")
	require.Error(t, err)
	assert.True(t, pkg.HasCode(err, pkg.ErrStoreUnknownCode))
	assert.Contains(t, err.Error(), "credentials")

	_, err = f.accounts.FindByName(ctx, pkg.EnvProduction, "alice")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = f.portfolio.FindByUsername(ctx, pkg.EnvProduction, "alice")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = f.users.FindByName(ctx, pkg.EnvProduction, "alice")
	assert.NoError(t, err)

	f.kv.failDelete = nil
	require.NoError(t, f.svc.DeleteAccount(ctx, "trace", pkg.EnvProduction, "alice"))
	_, err = f.users.FindByName(ctx, pkg.EnvProduction, "alice")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
