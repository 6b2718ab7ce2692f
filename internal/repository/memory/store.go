// Package memory provides an in-process implementation of the repository interfaces.
// It backs the service when no Postgres DSN is configured and doubles as the test store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spec-kit/contract-ledger/internal/domain"
	"github.com/spec-kit/contract-ledger/internal/repository"
)

// Store keeps profiles, contracts and jobs in maps guarded by one mutex.
type Store struct {
	mu        sync.Mutex
	profiles  map[int64]domain.Profile
	contracts map[int64]domain.Contract
	jobs      map[int64]domain.Job
	now       func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		profiles:  make(map[int64]domain.Profile),
		contracts: make(map[int64]domain.Contract),
		jobs:      make(map[int64]domain.Job),
		now:       time.Now,
	}
}

// AddProfile inserts or replaces a profile.
func (s *Store) AddProfile(p domain.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.CreatedAt, p.UpdatedAt = s.stamp(p.CreatedAt, p.UpdatedAt)
	s.profiles[p.ID] = p
}

// AddContract inserts or replaces a contract. Both parties must already exist and differ.
func (s *Store) AddContract(c domain.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ClientID == c.ContractorID {
		return fmt.Errorf("contract %d: client and contractor must differ", c.ID)
	}
	for _, id := range []int64{c.ClientID, c.ContractorID} {
		if _, ok := s.profiles[id]; !ok {
			return fmt.Errorf("contract %d: profile %d does not exist", c.ID, id)
		}
	}
	c.CreatedAt, c.UpdatedAt = s.stamp(c.CreatedAt, c.UpdatedAt)
	s.contracts[c.ID] = c
	return nil
}

// AddJob inserts or replaces a job under an existing contract.
func (s *Store) AddJob(j domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contracts[j.ContractID]; !ok {
		return fmt.Errorf("job %d: contract %d does not exist", j.ID, j.ContractID)
	}
	if !j.Price.IsPositive() {
		return fmt.Errorf("job %d: price must be positive", j.ID)
	}
	if j.Paid != (j.PaymentDate != nil) {
		return fmt.Errorf("job %d: payment date must be set exactly when paid", j.ID)
	}
	j.CreatedAt, j.UpdatedAt = s.stamp(j.CreatedAt, j.UpdatedAt)
	s.jobs[j.ID] = j
	return nil
}

// Profiles returns the profile repository view.
func (s *Store) Profiles() repository.ProfileRepository { return profileView{s} }

// Contracts returns the contract repository view.
func (s *Store) Contracts() repository.ContractRepository { return contractView{s} }

// Jobs returns the job repository view.
func (s *Store) Jobs() repository.JobRepository { return jobView{s} }

// Ledger returns the transactional repository view.
func (s *Store) Ledger() repository.LedgerRepository { return ledgerView{s} }

// Reports returns the report repository view.
func (s *Store) Reports() repository.ReportRepository { return reportView{s} }

// Repositories returns every view backed by this store.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Profiles:  s.Profiles(),
		Contracts: s.Contracts(),
		Jobs:      s.Jobs(),
		Ledger:    s.Ledger(),
		Reports:   s.Reports(),
	}
}

func (s *Store) stamp(created, updated time.Time) (time.Time, time.Time) {
	now := s.now()
	if created.IsZero() {
		created = now
	}
	if updated.IsZero() {
		updated = created
	}
	return created, updated
}

type profileView struct{ s *Store }

func (v profileView) GetByID(_ context.Context, id int64) (*domain.Profile, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	p, ok := v.s.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

type contractView struct{ s *Store }

func (v contractView) GetByID(_ context.Context, id int64) (*domain.Contract, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	c, ok := v.s.contracts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (v contractView) ListOpenByProfile(_ context.Context, profileID int64) ([]domain.Contract, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	result := []domain.Contract{}
	for _, c := range v.s.contracts {
		if c.HasParty(profileID) && c.Status != domain.ContractStatusTerminated {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type jobView struct{ s *Store }

func (v jobView) ListUnpaidActiveByProfile(_ context.Context, profileID int64) ([]domain.Job, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	result := []domain.Job{}
	for _, j := range v.s.jobs {
		c := v.s.contracts[j.ContractID]
		if !j.Paid && c.IsActive() && c.HasParty(profileID) {
			result = append(result, j)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type ledgerView struct{ s *Store }

// WithinTx holds the store lock for the whole callback and restores a snapshot if fn fails.
func (v ledgerView) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.LedgerTx) error) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	profiles := make(map[int64]domain.Profile, len(v.s.profiles))
	for id, p := range v.s.profiles {
		profiles[id] = p
	}
	jobs := make(map[int64]domain.Job, len(v.s.jobs))
	for id, j := range v.s.jobs {
		jobs[id] = j
	}

	if err := fn(ctx, &ledgerTx{s: v.s}); err != nil {
		v.s.profiles = profiles
		v.s.jobs = jobs
		return err
	}
	if err := ctx.Err(); err != nil {
		v.s.profiles = profiles
		v.s.jobs = jobs
		return err
	}
	return nil
}

// ledgerTx runs with the store lock held by WithinTx.
type ledgerTx struct{ s *Store }

func (t *ledgerTx) LockJobForPayment(_ context.Context, jobID int64) (*domain.JobPayment, error) {
	j, ok := t.s.jobs[jobID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c, ok := t.s.contracts[j.ContractID]
	if !ok {
		return nil, fmt.Errorf("job %d: contract %d missing", j.ID, j.ContractID)
	}
	client, okClient := t.s.profiles[c.ClientID]
	contractor, okContractor := t.s.profiles[c.ContractorID]
	if !okClient || !okContractor {
		return nil, fmt.Errorf("contract %d: party missing", c.ID)
	}
	return &domain.JobPayment{Job: j, Contract: c, Client: client, Contractor: contractor}, nil
}

func (t *ledgerTx) LockProfile(_ context.Context, profileID int64) (*domain.Profile, error) {
	p, ok := t.s.profiles[profileID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (t *ledgerTx) SumUnpaidActiveJobs(_ context.Context, clientID int64) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, j := range t.s.jobs {
		c := t.s.contracts[j.ContractID]
		if !j.Paid && c.IsActive() && c.ClientID == clientID {
			total = total.Add(j.Price)
		}
	}
	return total, nil
}

func (t *ledgerTx) MarkJobPaid(_ context.Context, jobID int64, paidAt time.Time) (bool, error) {
	j, ok := t.s.jobs[jobID]
	if !ok || j.Paid {
		return false, nil
	}
	j.Paid = true
	j.PaymentDate = &paidAt
	j.UpdatedAt = t.s.now()
	t.s.jobs[jobID] = j
	return true, nil
}

func (t *ledgerTx) Debit(_ context.Context, profileID int64, amount decimal.Decimal) (bool, error) {
	p, ok := t.s.profiles[profileID]
	if !ok || p.Balance.LessThan(amount) {
		return false, nil
	}
	p.Balance = p.Balance.Sub(amount)
	p.UpdatedAt = t.s.now()
	t.s.profiles[profileID] = p
	return true, nil
}

func (t *ledgerTx) Credit(_ context.Context, profileID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	p, ok := t.s.profiles[profileID]
	if !ok {
		return decimal.Zero, repository.ErrNotFound
	}
	p.Balance = p.Balance.Add(amount)
	p.UpdatedAt = t.s.now()
	t.s.profiles[profileID] = p
	return p.Balance, nil
}

type reportView struct{ s *Store }

func (v reportView) BestProfession(_ context.Context, period domain.DateRange) (*domain.ProfessionEarnings, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	totals := map[string]decimal.Decimal{}
	v.s.eachPaidJob(period, func(j domain.Job, c domain.Contract) {
		profession := v.s.profiles[c.ContractorID].Profession
		totals[profession] = totals[profession].Add(j.Price)
	})
	if len(totals) == 0 {
		return nil, repository.ErrNotFound
	}

	var best *domain.ProfessionEarnings
	for profession, total := range totals {
		if best == nil || total.GreaterThan(best.TotalEarned) ||
			(total.Equal(best.TotalEarned) && profession < best.Profession) {
			best = &domain.ProfessionEarnings{Profession: profession, TotalEarned: total}
		}
	}
	return best, nil
}

func (v reportView) BestClients(_ context.Context, period domain.DateRange, limit int) ([]domain.ClientPayments, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	totals := map[int64]decimal.Decimal{}
	v.s.eachPaidJob(period, func(j domain.Job, c domain.Contract) {
		totals[c.ClientID] = totals[c.ClientID].Add(j.Price)
	})

	result := make([]domain.ClientPayments, 0, len(totals))
	for clientID, total := range totals {
		result = append(result, domain.ClientPayments{
			ClientID: clientID,
			FullName: v.s.profiles[clientID].FullName(),
			Paid:     total,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Paid.Equal(result[j].Paid) {
			return result[i].Paid.GreaterThan(result[j].Paid)
		}
		return result[i].ClientID < result[j].ClientID
	})
	if limit <= 0 {
		limit = 2
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) eachPaidJob(period domain.DateRange, fn func(domain.Job, domain.Contract)) {
	for _, j := range s.jobs {
		if !j.Paid || j.PaymentDate == nil || !period.Contains(*j.PaymentDate) {
			continue
		}
		fn(j, s.contracts[j.ContractID])
	}
}
