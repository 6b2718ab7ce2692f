package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/contract-ledger/internal/cache"
	"github.com/spec-kit/contract-ledger/internal/domain"
	"github.com/spec-kit/contract-ledger/internal/events"
	"github.com/spec-kit/contract-ledger/internal/observability"
	"github.com/spec-kit/contract-ledger/internal/repository"
	apperrors "github.com/spec-kit/contract-ledger/pkg/util/errorutil"
)

// MaxReportLimit bounds the best-clients result size.
const MaxReportLimit = 100

// ReportService computes the admin aggregate reports.
type ReportService struct {
	reports      repository.ReportRepository
	cache        cache.ReportCache
	metrics      *observability.Metrics
	logger       *zap.Logger
	defaultLimit int
}

// ReportDependencies bundles collaborators for the report service.
type ReportDependencies struct {
	ReportRepo   repository.ReportRepository
	Cache        cache.ReportCache
	Metrics      *observability.Metrics
	Logger       *zap.Logger
	DefaultLimit int
}

// NewReportService constructs the service. A nil Cache disables caching.
func NewReportService(deps ReportDependencies) *ReportService {
	svc := &ReportService{
		reports:      deps.ReportRepo,
		cache:        deps.Cache,
		metrics:      deps.Metrics,
		logger:       deps.Logger,
		defaultLimit: deps.DefaultLimit,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.defaultLimit <= 0 {
		svc.defaultLimit = 2
	}
	return svc
}

// RegisterHandlers drops cached reports whenever a job is paid.
func (s *ReportService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil || s.cache == nil {
		return
	}
	dispatcher.Subscribe(events.EventJobPaid, func(ctx context.Context, _ events.Event) error {
		return s.cache.Invalidate(ctx)
	})
}

// BestProfession returns the profession that earned the most in the period.
func (s *ReportService) BestProfession(ctx context.Context, period domain.DateRange) (*domain.ProfessionEarnings, error) {
	if err := validatePeriod(period); err != nil {
		return nil, err
	}

	key := "best-profession:" + periodKey(period)
	scope := s.cacheScope(ctx)
	var cached domain.ProfessionEarnings
	if s.lookup(ctx, scope, key, &cached) {
		return &cached, nil
	}

	earnings, err := s.reports.BestProfession(ctx, period)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, noPaidJobs()
		}
		return nil, err
	}
	s.store(ctx, scope, key, earnings)
	return earnings, nil
}

// BestClients returns the clients that paid the most in the period. A zero limit selects the default.
func (s *ReportService) BestClients(ctx context.Context, period domain.DateRange, limit int) ([]domain.ClientPayments, error) {
	if err := validatePeriod(period); err != nil {
		return nil, err
	}
	if limit == 0 {
		limit = s.defaultLimit
	}
	if limit < 0 || limit > MaxReportLimit {
		return nil, apperrors.NewValidationError(fmt.Sprintf("limit must be between 1 and %d", MaxReportLimit), nil)
	}

	key := fmt.Sprintf("best-clients:%s:%d", periodKey(period), limit)
	scope := s.cacheScope(ctx)
	var cached []domain.ClientPayments
	if s.lookup(ctx, scope, key, &cached) {
		return cached, nil
	}

	clients, err := s.reports.BestClients(ctx, period, limit)
	if err != nil {
		return nil, err
	}
	if len(clients) == 0 {
		return nil, noPaidJobs()
	}
	s.store(ctx, scope, key, clients)
	return clients, nil
}

// reportScope pins the cache generation a request reads from and writes to.
type reportScope struct {
	generation int64
	enabled    bool
}

func (s *ReportService) cacheScope(ctx context.Context) reportScope {
	if s.cache == nil {
		return reportScope{}
	}
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.logger.Warn("report cache generation read failed", zap.Error(err))
		return reportScope{}
	}
	return reportScope{generation: gen, enabled: true}
}

func (s *ReportService) lookup(ctx context.Context, scope reportScope, key string, dest any) bool {
	if !scope.enabled {
		return false
	}
	hit, err := s.cache.Get(ctx, scope.generation, key, dest)
	if err != nil {
		s.logger.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	s.metrics.RecordCacheLookup(hit)
	return hit
}

func (s *ReportService) store(ctx context.Context, scope reportScope, key string, value any) {
	if !scope.enabled {
		return
	}
	if err := s.cache.Set(ctx, scope.generation, key, value); err != nil {
		s.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func validatePeriod(period domain.DateRange) error {
	if period.Start != nil && period.End != nil && (period.Start.After(*period.End) ||
		(period.EndExclusive && period.Start.Equal(*period.End))) {
		return apperrors.NewValidationError("start must not be after end", nil)
	}
	return nil
}

func periodKey(period domain.DateRange) string {
	bound := func(t *time.Time) string {
		if t == nil {
			return "*"
		}
		return t.UTC().Format(time.RFC3339Nano)
	}
	end := bound(period.End)
	if period.EndExclusive {
		end += ")"
	}
	return bound(period.Start) + "/" + end
}

func noPaidJobs() error {
	return apperrors.NewNotFound("paid jobs in the given period", nil)
}
