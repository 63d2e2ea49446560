package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nimeshabuddhika/gojenga-ledger/pkg"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/models"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/repositories"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/store"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/utils"
	"github.com/nimeshabuddhika/gojenga-ledger/pkg/views"
	"github.com/nimeshabuddhika/gojenga-ledger/services/ledger-api/internal/observability"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LedgerService owns account balances and transfers between them.
type LedgerService interface {
	GetAccount(ctx context.Context, traceId string, env pkg.Env, username string) (models.Account, error)
	CreateAccount(ctx context.Context, traceId string, env pkg.Env, username string, initialBalance decimal.Decimal) (models.Account, error)
	SetBalance(ctx context.Context, traceId string, env pkg.Env, username string, balance decimal.Decimal) (models.Account, error)
	AdjustBalance(ctx context.Context, traceId string, env pkg.Env, username string, delta decimal.Decimal) (models.Account, error)
	DeleteAccount(ctx context.Context, traceId string, env pkg.Env, username string) error
	Transfer(ctx context.Context, traceId string, env pkg.Env, tx models.Transaction) (views.Receipt, error)
}

type LedgerConfig struct {
	RollbackMaxAttempts int
	RollbackBaseBackoff time.Duration
	RollbackMaxBackoff  time.Duration
	Now                 func() time.Time
	Sleep               func(time.Duration)
}

type LedgerServiceImpl struct {
	logger        *zap.Logger
	cnf           LedgerConfig
	accountRepo   repositories.AccountRepository
	portfolioRepo repositories.PortfolioRepository
	userRepo      repositories.UserRepository
	publisher     LedgerEventPublisher
}

func NewLedgerService(logger *zap.Logger, cnf LedgerConfig, accountRepo repositories.AccountRepository,
	portfolioRepo repositories.PortfolioRepository, userRepo repositories.UserRepository, publisher LedgerEventPublisher) LedgerService {
	if cnf.RollbackMaxAttempts <= 0 {
		cnf.RollbackMaxAttempts = 3
	}
	if cnf.RollbackBaseBackoff <= 0 {
		cnf.RollbackBaseBackoff = 50 * time.Millisecond
	}
	if cnf.RollbackMaxBackoff < cnf.RollbackBaseBackoff {
		cnf.RollbackMaxBackoff = 2 * time.Second
	}
	if cnf.Now == nil {
		cnf.Now = time.Now
	}
	if cnf.Sleep == nil {
		cnf.Sleep = time.Sleep
	}
	return &LedgerServiceImpl{
		logger:        logger,
		cnf:           cnf,
		accountRepo:   accountRepo,
		portfolioRepo: portfolioRepo,
		userRepo:      userRepo,
		publisher:     publisher,
	}
}

func (s *LedgerServiceImpl) GetAccount(ctx context.Context, traceId string, env pkg.Env, username string) (models.Account, error) {
	account, err := s.accountRepo.FindByName(ctx, env, username)
	if err != nil {
		return models.Account{}, pkg.HandleStoreError(traceId, s.logger, err)
	}
	return account, nil
}

func (s *LedgerServiceImpl) CreateAccount(ctx context.Context, traceId string, env pkg.Env, username string, initialBalance decimal.Decimal) (models.Account, error) {
	account := models.Account{Name: username, Balance: initialBalance}
	if err := s.accountRepo.Create(ctx, env, account); err != nil {
		return models.Account{}, pkg.HandleStoreError(traceId, s.logger, err)
	}
	s.logger.Info("account_created", zap.String(pkg.TraceId, traceId), zap.String(pkg.Username, username),
		zap.String(pkg.Environment, string(env)))
	return account, nil
}

func (s *LedgerServiceImpl) SetBalance(ctx context.Context, traceId string, env pkg.Env, username string, balance decimal.Decimal) (models.Account, error) {
	if err := s.accountRepo.SetBalance(ctx, env, username, balance); err != nil {
		return models.Account{}, pkg.HandleStoreError(traceId, s.logger, err)
	}
	return models.Account{Name: username, Balance: balance}, nil
}

// AdjustBalance relies on the store's per-key atomic update; concurrent deposits never lose an update.
func (s *LedgerServiceImpl) AdjustBalance(ctx context.Context, traceId string, env pkg.Env, username string, delta decimal.Decimal) (models.Account, error) {
	account, err := s.accountRepo.AdjustBalance(ctx, env, username, delta)
	if err != nil {
		return models.Account{}, pkg.HandleStoreError(traceId, s.logger, err)
	}
	return account, nil
}

// DeleteAccount removes the ledger record, the portfolio and the credential record in that order.
// Each step is idempotent, so records left over from a partial delete can be cleaned up by calling it again.
// Steps already completed are not restored when a later step fails.
func (s *LedgerServiceImpl) DeleteAccount(ctx context.Context, traceId string, env pkg.Env, username string) error {
	steps := []struct {
		name string
		run  func() error
	}{
		{"ledger", func() error { return s.accountRepo.Delete(ctx, env, username) }},
		{"portfolio", func() error { return s.portfolioRepo.Delete(ctx, env, username) }},
		{"credentials", func() error { return s.userRepo.Delete(ctx, env, username) }},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			s.logger.Error("account_delete_step_failed", zap.String(pkg.TraceId, traceId),
				zap.String(pkg.Username, username), zap.String("step", step.name), zap.Error(err))
			return pkg.HandleStoreError(traceId, s.logger, fmt.Errorf("delete %s record: %w", step.name, err))
		}
	}
	s.logger.Info("account_deleted", zap.String(pkg.TraceId, traceId), zap.String(pkg.Username, username),
		zap.String(pkg.Environment, string(env)))
	return nil
}

// Transfer debits the sender, then credits the receiver. A failed credit is compensated by
// re-crediting the sender; if compensation keeps failing the sender stays debited and
// RollbackFailed is returned.
func (s *LedgerServiceImpl) Transfer(ctx context.Context, traceId string, env pkg.Env, tx models.Transaction) (views.Receipt, error) {
	start := time.Now()
	defer func() {
		observability.TransferLatency.WithLabelValues(string(env)).Observe(time.Since(start).Seconds())
	}()
	logger := s.logger.With(zap.String(pkg.TraceId, traceId), zap.String(pkg.Environment, string(env)),
		zap.String("sender", tx.Sender), zap.String("receiver", tx.Receiver), zap.String("amount", tx.Amount.String()))

	if _, err := s.accountRepo.FindByName(store.WithPrimaryRead(ctx), env, tx.Receiver); err != nil {
		observability.TransfersTotal.WithLabelValues(string(env), observability.OutcomeRejected).Inc()
		if errors.Is(err, store.ErrNotFound) {
			logger.Warn("transfer_recipient_not_found")
			return views.Receipt{}, pkg.NewAppError(pkg.ErrRecipientNotFoundCode, pkg.ErrRecipientNotFoundCode.Message,
				errors.Join(pkg.ErrRecipientNotFound, err))
		}
		return views.Receipt{}, pkg.HandleStoreError(traceId, s.logger, err)
	}

	sender, err := s.accountRepo.AdjustBalance(ctx, env, tx.Sender, tx.Amount.Neg())
	if err != nil {
		observability.TransfersTotal.WithLabelValues(string(env), observability.OutcomeRejected).Inc()
		logger.Warn("transfer_debit_failed", zap.Error(err))
		return views.Receipt{}, pkg.HandleStoreError(traceId, s.logger, err)
	}

	if _, creditErr := s.accountRepo.AdjustBalance(ctx, env, tx.Receiver, tx.Amount); creditErr != nil {
		logger.Warn("transfer_credit_failed", zap.Error(creditErr))
		return views.Receipt{}, s.compensate(ctx, traceId, env, tx, creditErr, logger)
	}

	receipt := views.Receipt{
		TransferID:  pkg.GenerateUUID(),
		Sender:      sender,
		Receiver:    tx.Receiver,
		Amount:      tx.Amount,
		CompletedAt: s.cnf.Now().UTC(),
	}
	observability.TransfersTotal.WithLabelValues(string(env), observability.OutcomeCompleted).Inc()
	logger.Info("transfer_completed", zap.String("transfer_id", receipt.TransferID))
	s.publish(ctx, traceId, env, pkg.LedgerEventTransferCompleted, tx, "", receipt.TransferID)
	return receipt, nil
}

// compensate re-credits the sender. It runs detached from request cancellation so a client
// disconnect cannot strand a debit.
func (s *LedgerServiceImpl) compensate(ctx context.Context, traceId string, env pkg.Env, tx models.Transaction, creditErr error, logger *zap.Logger) error {
	ctx = context.WithoutCancel(ctx)

	var rollbackErr error
	for attempt := 1; attempt <= s.cnf.RollbackMaxAttempts; attempt++ {
		_, rollbackErr = s.accountRepo.AdjustBalance(ctx, env, tx.Sender, tx.Amount)
		if rollbackErr == nil {
			observability.RollbackAttempts.WithLabelValues(string(env), "success").Inc()
			break
		}
		observability.RollbackAttempts.WithLabelValues(string(env), "failure").Inc()
		logger.Warn("transfer_rollback_attempt_failed", zap.Int("attempt", attempt), zap.Error(rollbackErr))
		if attempt < s.cnf.RollbackMaxAttempts {
			s.cnf.Sleep(utils.CalculateExponentialBackoffWithJitter(attempt, s.cnf.RollbackBaseBackoff, s.cnf.RollbackMaxBackoff))
		}
	}

	if rollbackErr != nil {
		observability.TransfersTotal.WithLabelValues(string(env), observability.OutcomeRollbackFailed).Inc()
		observability.RollbackFailures.WithLabelValues(string(env)).Inc()
		logger.Error("transfer_rollback_failed",
			zap.NamedError("credit_error", creditErr),
			zap.NamedError("rollback_error", rollbackErr),
			zap.Int("attempts", s.cnf.RollbackMaxAttempts))
		s.publish(ctx, traceId, env, pkg.LedgerEventTransferRollbackFailed, tx, rollbackErr.Error(), "")
		return pkg.NewAppError(pkg.ErrRollbackFailedCode, pkg.ErrRollbackFailedCode.Message,
			errors.Join(pkg.ErrRollbackFailed, creditErr, rollbackErr))
	}

	observability.TransfersTotal.WithLabelValues(string(env), observability.OutcomeRolledBack).Inc()
	logger.Info("transfer_rolled_back")
	s.publish(ctx, traceId, env, pkg.LedgerEventTransferRolledBack, tx, creditErr.Error(), "")

	if errors.Is(creditErr, store.ErrNotFound) {
		return pkg.NewAppError(pkg.ErrRecipientNotFoundCode, pkg.ErrRecipientNotFoundCode.Message,
			errors.Join(pkg.ErrRecipientNotFound, creditErr))
	}
	return pkg.HandleStoreError(traceId, s.logger, creditErr)
}

// publish never fails the transfer; a lost event is logged and counted.
func (s *LedgerServiceImpl) publish(ctx context.Context, traceId string, env pkg.Env, eventType pkg.LedgerEventType, tx models.Transaction, reason, id string) {
	if id == "" {
		id = pkg.GenerateUUID()
	}
	event := views.LedgerEvent{
		ID:          id,
		TraceID:     traceId,
		Type:        eventType,
		Environment: env,
		Sender:      tx.Sender,
		Receiver:    tx.Receiver,
		Amount:      tx.Amount,
		Reason:      reason,
		CreatedAt:   s.cnf.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		observability.EventsPublishFailed.WithLabelValues(string(eventType)).Inc()
		s.logger.Error("ledger_event_publish_failed", zap.String(pkg.TraceId, traceId),
			zap.String("type", string(eventType)), zap.Error(err))
	}
}
