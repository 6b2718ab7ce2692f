package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/contract-ledger/internal/domain"
	"github.com/spec-kit/contract-ledger/internal/events"
	"github.com/spec-kit/contract-ledger/internal/observability"
	"github.com/spec-kit/contract-ledger/internal/repository"
	apperrors "github.com/spec-kit/contract-ledger/pkg/util/errorutil"
)

var hundred = decimal.NewFromInt(100)

// BalanceService handles client deposits.
type BalanceService struct {
	ledger      repository.LedgerRepository
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
	capRatio    decimal.Decimal
	requireSelf bool
}

// BalanceDependencies bundles collaborators and rules for the balance service.
type BalanceDependencies struct {
	LedgerRepo repository.LedgerRepository
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	// DepositCapRatio is the share of the client's unpaid active job total a single deposit may reach.
	DepositCapRatio decimal.Decimal
	// DepositRequireSelf restricts deposits to the requester's own balance.
	DepositRequireSelf bool
}

// NewBalanceService constructs the service.
func NewBalanceService(deps BalanceDependencies) *BalanceService {
	svc := &BalanceService{
		ledger:      deps.LedgerRepo,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
		capRatio:    deps.DepositCapRatio,
		requireSelf: deps.DepositRequireSelf,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// Deposit credits amount to the client's balance, capped by the client's unpaid active job total.
func (s *BalanceService) Deposit(ctx context.Context, requester domain.Profile, clientID int64, amount decimal.Decimal) (*domain.DepositReceipt, error) {
	receipt, err := s.deposit(ctx, requester, clientID, amount)
	s.metrics.RecordDeposit(outcome(err))
	if err != nil {
		return nil, err
	}

	s.logger.Info("balance deposited",
		zap.Int64("client_id", clientID),
		zap.Int64("requester_id", requester.ID),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("balance", receipt.Balance.StringFixed(2)))

	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:    events.EventBalanceDeposited,
		ActorID: requester.ID,
		Payload: events.BalanceDepositedPayload{
			ClientID: clientID,
			Amount:   amount,
			Balance:  receipt.Balance,
		},
	})
	return receipt, nil
}

func (s *BalanceService) deposit(ctx context.Context, requester domain.Profile, clientID int64, amount decimal.Decimal) (*domain.DepositReceipt, error) {
	if !requester.IsClient() {
		return nil, apperrors.NewInvalidProfileType("only clients can deposit")
	}
	if s.requireSelf && requester.ID != clientID {
		return nil, apperrors.NewForbidden("clients can only deposit into their own balance")
	}
	if !amount.IsPositive() {
		return nil, apperrors.NewValidationError("amount must be positive", nil)
	}
	if !amount.Round(2).Equal(amount) {
		return nil, apperrors.NewValidationError("amount must have at most two decimal places", nil)
	}

	var receipt *domain.DepositReceipt
	err := s.ledger.WithinTx(ctx, func(ctx context.Context, tx repository.LedgerTx) error {
		if _, err := tx.LockProfile(ctx, clientID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewNotFound("client", map[string]any{"client_id": clientID})
			}
			return err
		}

		totalUnpaid, err := tx.SumUnpaidActiveJobs(ctx, clientID)
		if err != nil {
			return err
		}
		maxDeposit := totalUnpaid.Mul(s.capRatio)
		if amount.GreaterThan(maxDeposit) {
			return apperrors.NewInvalidAmount(
				fmt.Sprintf("deposit exceeds %s%% of unpaid jobs total", s.capRatio.Mul(hundred).String()),
				map[string]any{"max_deposit": maxDeposit.StringFixed(2)},
			)
		}

		balance, err := tx.Credit(ctx, clientID, amount)
		if err != nil {
			return err
		}
		receipt = &domain.DepositReceipt{
			ClientID:    clientID,
			RequesterID: requester.ID,
			Amount:      amount,
			Balance:     balance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}
