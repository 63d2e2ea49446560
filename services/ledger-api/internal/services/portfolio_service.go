package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/nimeshabuddhika/gojenga-ledger/pkg"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/models"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/repositories"
	"go.uber.org/zap"
)

type UpdateType string

const (
	UpdateTypeAdd     UpdateType = "add"
	UpdateTypeRemove  UpdateType = "remove"
	UpdateTypeReplace UpdateType = "replace"
)

// ParseUpdateType maps the update-type header; anything unrecognised replaces.
func ParseUpdateType(raw string) UpdateType {
	switch UpdateType(strings.ToLower(strings.TrimSpace(raw))) {
	case UpdateTypeAdd:
		return UpdateTypeAdd
	case UpdateTypeRemove:
		return UpdateTypeRemove
	default:
		return UpdateTypeReplace
	}
}

type PortfolioService interface {
	GetPortfolio(ctx context.Context, traceId string, env pkg.Env, username string) (models.Portfolio, error)
	CreatePortfolio(ctx context.Context, traceId string, env pkg.Env, portfolio models.Portfolio) (models.Portfolio, error)
	UpdatePortfolio(ctx context.Context, traceId string, env pkg.Env, updateType UpdateType, portfolio models.Portfolio) (models.Portfolio, error)
	DeletePortfolio(ctx context.Context, traceId string, env pkg.Env, username string) error
}

type PortfolioServiceImpl struct {
	logger        *zap.Logger
	portfolioRepo repositories.PortfolioRepository
}

func NewPortfolioService(logger *zap.Logger, portfolioRepo repositories.PortfolioRepository) PortfolioService {
	return &PortfolioServiceImpl{logger: logger, portfolioRepo: portfolioRepo}
}

func (p *PortfolioServiceImpl) GetPortfolio(ctx context.Context, traceId string, env pkg.Env, username string) (models.Portfolio, error) {
	portfolio, err := p.portfolioRepo.FindByUsername(ctx, env, username)
	if err != nil {
		return models.Portfolio{}, pkg.HandleStoreError(traceId, p.logger, err)
	}
	return portfolio, nil
}

func (p *PortfolioServiceImpl) CreatePortfolio(ctx context.Context, traceId string, env pkg.Env, portfolio models.Portfolio) (models.Portfolio, error) {
	holdings, err := normalizeHoldings(portfolio.Holdings)
	if err != nil {
		return models.Portfolio{}, err
	}
	portfolio.Holdings = holdings
	if err := p.portfolioRepo.Create(ctx, env, portfolio); err != nil {
		return models.Portfolio{}, pkg.HandleStoreError(traceId, p.logger, err)
	}
	return portfolio, nil
}

// UpdatePortfolio is a read-modify-write without a per-key lock; concurrent updates to one portfolio
// may lose one of them.
func (p *PortfolioServiceImpl) UpdatePortfolio(ctx context.Context, traceId string, env pkg.Env, updateType UpdateType, portfolio models.Portfolio) (models.Portfolio, error) {
	changes, err := normalizeHoldings(portfolio.Holdings)
	if err != nil {
		return models.Portfolio{}, err
	}
	current, err := p.portfolioRepo.FindByUsername(ctx, env, portfolio.Username)
	if err != nil {
		return models.Portfolio{}, pkg.HandleStoreError(traceId, p.logger, err)
	}

	switch updateType {
	case UpdateTypeAdd:
		current.Holdings = mergeHoldings(current.Holdings, changes, false)
	case UpdateTypeRemove:
		current.Holdings = mergeHoldings(current.Holdings, changes, true)
	default:
		current.Holdings = changes
	}

	if err := p.portfolioRepo.Replace(ctx, env, current); err != nil {
		return models.Portfolio{}, pkg.HandleStoreError(traceId, p.logger, err)
	}
	p.logger.Info("portfolio_updated", zap.String(pkg.TraceId, traceId), zap.String(pkg.Username, current.Username),
		zap.String("update_type", string(updateType)))
	return current, nil
}

func (p *PortfolioServiceImpl) DeletePortfolio(ctx context.Context, traceId string, env pkg.Env, username string) error {
	if _, err := p.portfolioRepo.FindByUsername(ctx, env, username); err != nil {
		return pkg.HandleStoreError(traceId, p.logger, err)
	}
	if err := p.portfolioRepo.Delete(ctx, env, username); err != nil {
		return pkg.HandleStoreError(traceId, p.logger, err)
	}
	return nil
}

// normalizeHoldings upper-cases symbols and folds duplicates into one entry.
func normalizeHoldings(holdings []models.Holding) ([]models.Holding, error) {
	out := make([]models.Holding, 0, len(holdings))
	index := make(map[string]int, len(holdings))
	for _, h := range holdings {
		symbol := strings.ToUpper(strings.TrimSpace(h.Symbol))
		if symbol == "" {
			return nil, pkg.NewAppError(pkg.ErrInvalidInputCode, "holding symbol is required", nil)
		}
		if h.Quantity.IsNegative() {
			return nil, pkg.NewAppError(pkg.ErrInvalidInputCode, fmt.Sprintf("negative quantity for %s", symbol), nil)
		}
		if i, ok := index[symbol]; ok {
			out[i].Quantity = out[i].Quantity.Add(h.Quantity)
			continue
		}
		index[symbol] = len(out)
		out = append(out, models.Holding{Symbol: symbol, Quantity: h.Quantity})
	}
	return out, nil
}

// mergeHoldings adds (or subtracts) changes into current, keeping current's order.
// Subtracting drops holdings that reach zero or less.
func mergeHoldings(current, changes []models.Holding, subtract bool) []models.Holding {
	out := make([]models.Holding, 0, len(current)+len(changes))
	index := make(map[string]int, len(current))
	for _, h := range current {
		index[h.Symbol] = len(out)
		out = append(out, h)
	}
	for _, c := range changes {
		i, ok := index[c.Symbol]
		if !ok {
			if subtract {
				continue
			}
			index[c.Symbol] = len(out)
			out = append(out, c)
			continue
		}
		if subtract {
			out[i].Quantity = out[i].Quantity.Sub(c.Quantity)
		} else {
			out[i].Quantity = out[i].Quantity.Add(c.Quantity)
		}
	}

	if !subtract {
		return out
	}
	kept := out[:0]
	for _, h := range out {
		if h.Quantity.IsPositive() {
			kept = append(kept, h)
		}
	}
	return kept
}
