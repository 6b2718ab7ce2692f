package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/contract-ledger/internal/domain"
	"github.com/spec-kit/contract-ledger/internal/events"
	"github.com/spec-kit/contract-ledger/internal/observability"
	"github.com/spec-kit/contract-ledger/internal/repository"
	apperrors "github.com/spec-kit/contract-ledger/pkg/util/errorutil"
)

// JobService coordinates job queries and payments.
type JobService struct {
	jobs       repository.JobRepository
	ledger     repository.LedgerRepository
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// JobDependencies bundles collaborators for the job service.
type JobDependencies struct {
	JobRepo    repository.JobRepository
	LedgerRepo repository.LedgerRepository
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	// Clock overrides time.Now, mainly for tests.
	Clock func() time.Time
}

// NewJobService constructs the service.
func NewJobService(deps JobDependencies) *JobService {
	svc := &JobService{
		jobs:       deps.JobRepo,
		ledger:     deps.LedgerRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		now:        deps.Clock,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc
}

// ListUnpaidJobs returns unpaid jobs on the requester's in_progress contracts.
func (s *JobService) ListUnpaidJobs(ctx context.Context, requesterID int64) ([]domain.Job, error) {
	return s.jobs.ListUnpaidActiveByProfile(ctx, requesterID)
}

// PayJob moves the job price from the contract client to the contractor and marks the job paid.
// Only the client on the contract may pay, and a job is paid at most once.
func (s *JobService) PayJob(ctx context.Context, jobID, requesterID int64) (*domain.PaymentReceipt, error) {
	var receipt *domain.PaymentReceipt

	err := s.ledger.WithinTx(ctx, func(ctx context.Context, tx repository.LedgerTx) error {
		payment, err := tx.LockJobForPayment(ctx, jobID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewNotFound("job", map[string]any{"job_id": jobID})
			}
			return err
		}

		job := payment.Job
		if job.Paid {
			return jobAlreadyPaid(jobID)
		}
		if payment.Contract.ClientID != requesterID {
			return apperrors.NewForbidden("only the contract client can pay for this job")
		}
		if payment.Client.Balance.LessThan(job.Price) {
			return insufficientBalance(payment)
		}

		paidAt := s.now().UTC()
		changed, err := tx.MarkJobPaid(ctx, job.ID, paidAt)
		if err != nil {
			return err
		}
		if !changed {
			return jobAlreadyPaid(jobID)
		}
		debited, err := tx.Debit(ctx, payment.Client.ID, job.Price)
		if err != nil {
			return err
		}
		if !debited {
			return insufficientBalance(payment)
		}
		if _, err := tx.Credit(ctx, payment.Contractor.ID, job.Price); err != nil {
			return err
		}

		receipt = &domain.PaymentReceipt{
			JobID:        job.ID,
			ContractID:   payment.Contract.ID,
			ClientID:     payment.Client.ID,
			ContractorID: payment.Contractor.ID,
			Amount:       job.Price,
			PaidAt:       paidAt,
		}
		return nil
	})
	s.metrics.RecordPayment(outcome(err))
	if err != nil {
		return nil, err
	}

	s.logger.Info("job paid",
		zap.Int64("job_id", receipt.JobID),
		zap.Int64("client_id", receipt.ClientID),
		zap.Int64("contractor_id", receipt.ContractorID),
		zap.String("amount", receipt.Amount.StringFixed(2)))

	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:    events.EventJobPaid,
		ActorID: requesterID,
		Payload: events.JobPaidPayload{
			JobID:        receipt.JobID,
			ContractID:   receipt.ContractID,
			ClientID:     receipt.ClientID,
			ContractorID: receipt.ContractorID,
			Amount:       receipt.Amount,
			PaidAt:       receipt.PaidAt,
		},
	})
	return receipt, nil
}

func jobAlreadyPaid(jobID int64) error {
	return apperrors.NewInvalidState("job already paid", map[string]any{"job_id": jobID})
}

func insufficientBalance(payment *domain.JobPayment) error {
	return apperrors.NewInsufficientFunds("insufficient balance", map[string]any{
		"job_id": payment.Job.ID,
		"price":  payment.Job.Price.StringFixed(2),
	})
}

// outcome turns an operation result into a metrics label.
func outcome(err error) string {
	if err == nil {
		return "success"
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return strings.ToLower(domainErr.Code)
	}
	return "error"
}

// publish emits an event after commit. Subscriber failures are only logged.
func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handlers failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
