package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/contract-ledger/internal/cache"
	"github.com/spec-kit/contract-ledger/internal/domain"
	"github.com/spec-kit/contract-ledger/internal/events"
	"github.com/spec-kit/contract-ledger/internal/repository"
	"github.com/spec-kit/contract-ledger/internal/repository/memory"
	apperrors "github.com/spec-kit/contract-ledger/pkg/util/errorutil"
)

// mapCache is a process-local ReportCache used to observe caching behaviour.
type mapCache struct {
	mu         sync.Mutex
	entries    map[string][]byte
	generation int64
	hits       int
	invalidate int
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string][]byte{}}
}

func (c *mapCache) Generation(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation, nil
}

func (c *mapCache) Get(_ context.Context, generation int64, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[cache.Key(generation, key)]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(raw, dest)
}

func (c *mapCache) Set(_ context.Context, generation int64, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cache.Key(generation, key)] = raw
	return nil
}

func (c *mapCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.invalidate++
	return nil
}

// hookedReports runs afterRead once, after a report query and before the result is cached.
type hookedReports struct {
	repository.ReportRepository
	once      sync.Once
	afterRead func()
}

func (h *hookedReports) BestProfession(ctx context.Context, period domain.DateRange) (*domain.ProfessionEarnings, error) {
	res, err := h.ReportRepository.BestProfession(ctx, period)
	h.once.Do(h.afterRead)
	return res, err
}

func year2020() domain.DateRange {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2020, 12, 31, 23, 59, 59, 0, time.UTC)
	return domain.DateRange{Start: &start, End: &end}
}

func demoStore(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.New()
	require.NoError(t, memory.SeedDemo(s))
	return s
}

func TestBestProfession(t *testing.T) {
	s := demoStore(t)
	svc := NewReportService(ReportDependencies{ReportRepo: s.Reports()})

	best, err := svc.BestProfession(context.Background(), year2020())
	require.NoError(t, err)
	assert.Equal(t, "Programmer", best.Profession)
	assert.True(t, best.TotalEarned.Equal(dec("2683")))
}

func TestBestClientsDefaultLimit(t *testing.T) {
	s := demoStore(t)
	svc := NewReportService(ReportDependencies{ReportRepo: s.Reports(), DefaultLimit: 2})

	clients, err := svc.BestClients(context.Background(), year2020(), 0)
	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, "Ash Kethcum", clients[0].FullName)
	assert.True(t, clients[0].Paid.Equal(dec("2020")))
	assert.True(t, clients[0].Paid.GreaterThanOrEqual(clients[1].Paid))

	clients, err = svc.BestClients(context.Background(), year2020(), 10)
	require.NoError(t, err)
	assert.Len(t, clients, 4)
}

func TestReportsWithoutData(t *testing.T) {
	s := demoStore(t)
	svc := NewReportService(ReportDependencies{ReportRepo: s.Reports()})
	start := time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC)
	period := domain.DateRange{Start: &start}

	_, err := svc.BestProfession(context.Background(), period)
	requireCode(t, err, apperrors.CodeNotFound)

	_, err = svc.BestClients(context.Background(), period, 2)
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestReportValidation(t *testing.T) {
	s := demoStore(t)
	svc := NewReportService(ReportDependencies{ReportRepo: s.Reports()})
	period := year2020()
	inverted := domain.DateRange{Start: period.End, End: period.Start}

	_, err := svc.BestProfession(context.Background(), inverted)
	requireCode(t, err, apperrors.CodeValidation)

	_, err = svc.BestClients(context.Background(), period, -1)
	requireCode(t, err, apperrors.CodeValidation)

	_, err = svc.BestClients(context.Background(), period, MaxReportLimit+1)
	requireCode(t, err, apperrors.CodeValidation)
}

func TestReportCacheInvalidatedByPayment(t *testing.T) {
	s := demoStore(t)
	rc := newMapCache()
	dispatcher := events.NewInMemoryDispatcher()
	reports := NewReportService(ReportDependencies{ReportRepo: s.Reports(), Cache: rc})
	reports.RegisterHandlers(dispatcher)
	jobs := NewJobService(JobDependencies{JobRepo: s.Jobs(), LedgerRepo: s.Ledger(), Dispatcher: dispatcher})

	all := domain.DateRange{}
	first, err := reports.BestClients(context.Background(), all, 2)
	require.NoError(t, err)
	again, err := reports.BestClients(context.Background(), all, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, rc.hits)
	assert.Equal(t, first[0].ClientID, again[0].ClientID)
	assert.True(t, first[0].Paid.Equal(again[0].Paid))

	// Client 1 pays job 2 (201), raising their total from 442 to 643.
	_, err = jobs.PayJob(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, rc.invalidate)

	after, err := reports.BestClients(context.Background(), all, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), after[1].ClientID)
	assert.True(t, after[1].Paid.Equal(dec("643")), "paid %s", after[1].Paid)
}

func TestReportComputedBeforePaymentIsNotServedAfterIt(t *testing.T) {
	s := demoStore(t)
	rc := newMapCache()
	dispatcher := events.NewInMemoryDispatcher()
	jobs := NewJobService(JobDependencies{JobRepo: s.Jobs(), LedgerRepo: s.Ledger(), Dispatcher: dispatcher})
	ctx := context.Background()

	repo := &hookedReports{ReportRepository: s.Reports()}
	repo.afterRead = func() {
		// Client 1 pays job 2 (201) to a Programmer while the report is in flight.
		_, err := jobs.PayJob(ctx, 2, 1)
		require.NoError(t, err)
	}
	reports := NewReportService(ReportDependencies{ReportRepo: repo, Cache: rc})
	reports.RegisterHandlers(dispatcher)

	all := domain.DateRange{}
	first, err := reports.BestProfession(ctx, all)
	require.NoError(t, err)
	assert.True(t, first.TotalEarned.Equal(dec("2683")), "first %s", first.TotalEarned)
	assert.Equal(t, 1, rc.invalidate)

	second, err := reports.BestProfession(ctx, all)
	require.NoError(t, err)
	assert.Equal(t, "Programmer", second.Profession)
	assert.True(t, second.TotalEarned.Equal(dec("2884")), "second %s", second.TotalEarned)
	assert.Equal(t, 0, rc.hits)
}
