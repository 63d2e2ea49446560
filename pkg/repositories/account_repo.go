package repositories

import (
	"context"

	"github.com/nimeshabuddhika/gojenga-ledger/pkg"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/models"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/store"
	"github.com/shopspring/decimal"
)

const (
	fieldAccountName    = "name"
	fieldAccountBalance = "balance"
)

// AccountRepository defines the interface for account repository.
type AccountRepository interface {
	// FindByName returns the account or store.ErrNotFound.
	FindByName(ctx context.Context, env pkg.Env, name string) (models.Account, error)
	// Create inserts a new account; store.ErrDuplicate if it exists.
	Create(ctx context.Context, env pkg.Env, account models.Account) error
	// SetBalance overwrites the balance of an existing account.
	SetBalance(ctx context.Context, env pkg.Env, name string, balance decimal.Decimal) error
	// AdjustBalance atomically adds delta and returns the updated account.
	AdjustBalance(ctx context.Context, env pkg.Env, name string, delta decimal.Decimal) (models.Account, error)
	Delete(ctx context.Context, env pkg.Env, name string) error
}

type AccountRepositoryImpl struct {
	store store.Store
}

func NewAccountRepository(s store.Store) AccountRepository {
	return &AccountRepositoryImpl{store: s}
}

func (a AccountRepositoryImpl) namespace(env pkg.Env) store.Namespace {
	return namespaceFor(env, store.NamespaceLedger, store.NamespaceLedgerTest)
}

func (a AccountRepositoryImpl) FindByName(ctx context.Context, env pkg.Env, name string) (models.Account, error) {
	item, err := a.store.Get(ctx, a.namespace(env), name)
	if err != nil {
		return models.Account{}, err
	}
	return toAccount(name, item)
}

func (a AccountRepositoryImpl) Create(ctx context.Context, env pkg.Env, account models.Account) error {
	return a.store.Create(ctx, a.namespace(env), account.Name, store.Item{
		fieldAccountName:    account.Name,
		fieldAccountBalance: account.Balance.String(),
	})
}

func (a AccountRepositoryImpl) SetBalance(ctx context.Context, env pkg.Env, name string, balance decimal.Decimal) error {
	return a.store.Update(ctx, a.namespace(env), name, store.Item{fieldAccountBalance: balance.String()})
}

func (a AccountRepositoryImpl) AdjustBalance(ctx context.Context, env pkg.Env, name string, delta decimal.Decimal) (models.Account, error) {
	item, err := a.store.AdjustDecimal(ctx, a.namespace(env), name, fieldAccountBalance, delta)
	if err != nil {
		return models.Account{}, err
	}
	return toAccount(name, item)
}

func (a AccountRepositoryImpl) Delete(ctx context.Context, env pkg.Env, name string) error {
	return a.store.Delete(ctx, a.namespace(env), name)
}

func toAccount(key string, item store.Item) (models.Account, error) {
	balance, err := decimal.NewFromString(item[fieldAccountBalance])
	if err != nil {
		return models.Account{}, malformed(fieldAccountBalance, err)
	}
	name := item[fieldAccountName]
	if name == "" {
		name = key
	}
	return models.Account{Name: name, Balance: balance}, nil
}
