package service

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/spec-kit/contract-ledger/internal/domain"
	"github.com/spec-kit/contract-ledger/internal/events"
	"github.com/spec-kit/contract-ledger/internal/repository/memory"
	apperrors "github.com/spec-kit/contract-ledger/pkg/util/errorutil"
)

func TestMain(m *testing.M) {
	// concurrent payment tests spawn goroutines; make sure none outlive the package
	defer goleak.VerifyTestMain(m)
	os.Exit(m.Run())
}

const (
	clientID     int64 = 1
	contractorID int64 = 2
	outsiderID   int64 = 3
	otherClient  int64 = 4
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// newFixture builds a store with one active contract between client 1 and contractor 2.
func newFixture(t *testing.T, clientBalance string) *memory.Store {
	t.Helper()
	s := memory.New()
	s.AddProfile(domain.Profile{ID: clientID, FirstName: "Ada", LastName: "Client", Balance: dec(clientBalance), Type: domain.ProfileTypeClient})
	s.AddProfile(domain.Profile{ID: contractorID, FirstName: "Bob", LastName: "Builder", Profession: "Builder", Balance: dec("0"), Type: domain.ProfileTypeContractor})
	s.AddProfile(domain.Profile{ID: outsiderID, FirstName: "Eve", LastName: "Outsider", Profession: "Spy", Balance: dec("0"), Type: domain.ProfileTypeContractor})
	s.AddProfile(domain.Profile{ID: otherClient, FirstName: "Carl", LastName: "Other", Balance: dec("0"), Type: domain.ProfileTypeClient})
	require.NoError(t, s.AddContract(domain.Contract{ID: 10, Status: domain.ContractStatusInProgress, ClientID: clientID, ContractorID: contractorID}))
	require.NoError(t, s.AddContract(domain.Contract{ID: 11, Status: domain.ContractStatusNew, ClientID: clientID, ContractorID: outsiderID}))
	require.NoError(t, s.AddContract(domain.Contract{ID: 12, Status: domain.ContractStatusTerminated, ClientID: clientID, ContractorID: contractorID}))
	return s
}

func addJob(t *testing.T, s *memory.Store, id, contractID int64, price string) {
	t.Helper()
	require.NoError(t, s.AddJob(domain.Job{ID: id, ContractID: contractID, Price: dec(price), Description: "work"}))
}

func balanceOf(t *testing.T, s *memory.Store, id int64) decimal.Decimal {
	t.Helper()
	p, err := s.Profiles().GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.Balance
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, apperrors.HasCode(err, code), "expected %s, got %v", code, err)
}

func requireBalance(t *testing.T, s *memory.Store, id int64, want string) {
	t.Helper()
	got := balanceOf(t, s, id)
	require.Truef(t, got.Equal(dec(want)), "profile %d balance: want %s, got %s", id, want, got)
}

type recordingDispatcher struct {
	mu     sync.Mutex
	inner  events.Dispatcher
	events []events.Event
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{inner: events.NewInMemoryDispatcher()}
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	d.events = append(d.events, event)
	d.mu.Unlock()
	return d.inner.Publish(ctx, event)
}

func (d *recordingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {
	d.inner.Subscribe(eventType, handler)
}

func (d *recordingDispatcher) published() []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]events.Event(nil), d.events...)
}

func fixedClock() func() time.Time {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}
