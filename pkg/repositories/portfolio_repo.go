package repositories

import (
	"context"
	"encoding/json"

	"github.com/nimeshabuddhika/gojenga-ledger/pkg"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/models"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/store"
)

const (
	fieldPortfolioUsername = "username"
	fieldPortfolioHoldings = "holdings"
)

// PortfolioRepository stores holdings as a JSON document inside the item.
type PortfolioRepository interface {
	FindByUsername(ctx context.Context, env pkg.Env, username string) (models.Portfolio, error)
	Create(ctx context.Context, env pkg.Env, portfolio models.Portfolio) error
	// Replace overwrites the holdings of an existing portfolio.
	Replace(ctx context.Context, env pkg.Env, portfolio models.Portfolio) error
	Delete(ctx context.Context, env pkg.Env, username string) error
}

type PortfolioRepositoryImpl struct {
	store store.Store
}

func NewPortfolioRepository(s store.Store) PortfolioRepository {
	return &PortfolioRepositoryImpl{store: s}
}

func (p PortfolioRepositoryImpl) namespace(env pkg.Env) store.Namespace {
	return namespaceFor(env, store.NamespacePortfolio, store.NamespacePortfolioTest)
}

func (p PortfolioRepositoryImpl) FindByUsername(ctx context.Context, env pkg.Env, username string) (models.Portfolio, error) {
	item, err := p.store.Get(ctx, p.namespace(env), username)
	if err != nil {
		return models.Portfolio{}, err
	}
	portfolio := models.Portfolio{Username: item[fieldPortfolioUsername], Holdings: []models.Holding{}}
	if portfolio.Username == "" {
		portfolio.Username = username
	}
	if raw := item[fieldPortfolioHoldings]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &portfolio.Holdings); err != nil {
			return models.Portfolio{}, malformed(fieldPortfolioHoldings, err)
		}
	}
	return portfolio, nil
}

func (p PortfolioRepositoryImpl) Create(ctx context.Context, env pkg.Env, portfolio models.Portfolio) error {
	holdings, err := encodeHoldings(portfolio.Holdings)
	if err != nil {
		return err
	}
	return p.store.Create(ctx, p.namespace(env), portfolio.Username, store.Item{
		fieldPortfolioUsername: portfolio.Username,
		fieldPortfolioHoldings: holdings,
	})
}

func (p PortfolioRepositoryImpl) Replace(ctx context.Context, env pkg.Env, portfolio models.Portfolio) error {
	holdings, err := encodeHoldings(portfolio.Holdings)
	if err != nil {
		return err
	}
	return p.store.Update(ctx, p.namespace(env), portfolio.Username, store.Item{fieldPortfolioHoldings: holdings})
}

func (p PortfolioRepositoryImpl) Delete(ctx context.Context, env pkg.Env, username string) error {
	return p.store.Delete(ctx, p.namespace(env), username)
}

func encodeHoldings(holdings []models.Holding) (string, error) {
	if holdings == nil {
		holdings = []models.Holding{}
	}
	raw, err := json.Marshal(holdings)
	if err != nil {
		return "", malformed(fieldPortfolioHoldings, err)
	}
	return string(raw), nil
}
