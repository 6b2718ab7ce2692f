package http

import (
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/contract-ledger/internal/api/http/handlers"
	"github.com/spec-kit/contract-ledger/internal/auth"
	"github.com/spec-kit/contract-ledger/internal/events"
	"github.com/spec-kit/contract-ledger/internal/observability"
	"github.com/spec-kit/contract-ledger/internal/ratelimit"
	"github.com/spec-kit/contract-ledger/internal/repository/memory"
	"github.com/spec-kit/contract-ledger/internal/service"
)

const testSecret = "router-secret"

type serverOption func(*RouteConfig)

func withAdminToken() serverOption {
	return func(cfg *RouteConfig) { cfg.AdminTokenRequired = true }
}

func withLimiter(l *ratelimit.MapLimiter) serverOption {
	return func(cfg *RouteConfig) { cfg.Limiter = l }
}

func newTestServer(t *testing.T, opts ...serverOption) (*fiber.App, *memory.Store) {
	t.Helper()
	store := memory.New()
	require.NoError(t, memory.SeedDemo(store))

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	contracts := service.NewContractService(store.Contracts())
	jobs := service.NewJobService(service.JobDependencies{
		JobRepo:    store.Jobs(),
		LedgerRepo: store.Ledger(),
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	balances := service.NewBalanceService(service.BalanceDependencies{
		LedgerRepo:      store.Ledger(),
		Dispatcher:      dispatcher,
		Metrics:         metrics,
		Logger:          logger,
		DepositCapRatio: decimal.RequireFromString("0.25"),
	})
	reports := service.NewReportService(service.ReportDependencies{
		ReportRepo: store.Reports(),
		Metrics:    metrics,
		Logger:     logger,
	})

	cfg := RouteConfig{
		Health:         handlers.NewHealthHandler("contract-ledger", "test", "memory", nil),
		Contracts:      handlers.NewContractsHandler(contracts),
		Jobs:           handlers.NewJobsHandler(jobs),
		Balances:       handlers.NewBalancesHandler(balances),
		Admin:          handlers.NewAdminHandler(reports),
		AuthMiddleware: auth.NewAuthMiddleware(auth.NewTokenManager(testSecret, 5), store.Profiles(), "profile_id"),
		Metrics:        metrics,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 5*time.Second)
	RegisterRoutes(app, cfg)
	return app, store
}

type testResponse struct {
	status int
	body   []byte
}

func (r testResponse) decode(t *testing.T, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.body, dest), string(r.body))
}

func (r testResponse) errorCode(t *testing.T) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	r.decode(t, &payload)
	return payload.Error.Code
}

func send(t *testing.T, app *fiber.App, method, target, profileID, body string, headers ...string) testResponse {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if profileID != "" {
		req.Header.Set("profile_id", profileID)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return testResponse{status: resp.StatusCode, body: raw}
}

func TestGetContract(t *testing.T) {
	app, _ := newTestServer(t)

	resp := send(t, app, nethttp.MethodGet, "/contracts/1", "1", "")
	require.Equal(t, nethttp.StatusOK, resp.status)
	var contract map[string]any
	resp.decode(t, &contract)
	assert.EqualValues(t, 1, contract["id"])
	assert.EqualValues(t, 1, contract["ClientId"])
	assert.EqualValues(t, 5, contract["ContractorId"])
	assert.Equal(t, "terminated", contract["status"])

	resp = send(t, app, nethttp.MethodGet, "/contracts/1", "5", "")
	assert.Equal(t, nethttp.StatusOK, resp.status, "contractor is a party")

	resp = send(t, app, nethttp.MethodGet, "/contracts/999", "1", "")
	assert.Equal(t, nethttp.StatusNotFound, resp.status)
	assert.Equal(t, "NOT_FOUND", resp.errorCode(t))

	resp = send(t, app, nethttp.MethodGet, "/contracts/1", "3", "")
	assert.Equal(t, nethttp.StatusForbidden, resp.status)
	assert.Equal(t, "FORBIDDEN", resp.errorCode(t))

	resp = send(t, app, nethttp.MethodGet, "/contracts/abc", "1", "")
	assert.Equal(t, nethttp.StatusBadRequest, resp.status)
}

func TestRequesterIsRequired(t *testing.T) {
	app, _ := newTestServer(t)

	for _, target := range []string{"/contracts/1", "/contracts", "/jobs/unpaid"} {
		resp := send(t, app, nethttp.MethodGet, target, "", "")
		assert.Equal(t, nethttp.StatusUnauthorized, resp.status, target)
		assert.Equal(t, "UNAUTHORIZED", resp.errorCode(t))
	}

	resp := send(t, app, nethttp.MethodGet, "/contracts", "99", "")
	assert.Equal(t, nethttp.StatusUnauthorized, resp.status)
}

func TestBearerTokenIdentifiesProfile(t *testing.T) {
	app, _ := newTestServer(t)
	token, _, err := auth.NewTokenManager(testSecret, 5).GenerateToken(1, "PROFILE")
	require.NoError(t, err)

	resp := send(t, app, nethttp.MethodGet, "/contracts/2", "", "", fiber.HeaderAuthorization, "Bearer "+token)
	assert.Equal(t, nethttp.StatusOK, resp.status)
}

func TestListContractsSkipsTerminated(t *testing.T) {
	app, _ := newTestServer(t)

	resp := send(t, app, nethttp.MethodGet, "/contracts", "1", "")
	require.Equal(t, nethttp.StatusOK, resp.status)
	var contracts []map[string]any
	resp.decode(t, &contracts)
	require.Len(t, contracts, 1)
	assert.EqualValues(t, 2, contracts[0]["id"])

	resp = send(t, app, nethttp.MethodGet, "/contracts", "8", "")
	require.Equal(t, nethttp.StatusOK, resp.status)
	resp.decode(t, &contracts)
	assert.Len(t, contracts, 2, "new and in_progress are both open")
}

func TestListUnpaidJobs(t *testing.T) {
	app, _ := newTestServer(t)

	resp := send(t, app, nethttp.MethodGet, "/jobs/unpaid", "1", "")
	require.Equal(t, nethttp.StatusOK, resp.status)
	var jobs []map[string]any
	resp.decode(t, &jobs)
	require.Len(t, jobs, 1)
	assert.EqualValues(t, 2, jobs[0]["id"])
	assert.EqualValues(t, 201, jobs[0]["price"])
	assert.Equal(t, false, jobs[0]["paid"])
	assert.Nil(t, jobs[0]["paymentDate"])

	resp = send(t, app, nethttp.MethodGet, "/jobs/unpaid", "3", "")
	require.Equal(t, nethttp.StatusOK, resp.status)
	resp.decode(t, &jobs)
	assert.Empty(t, jobs)
}

func TestPayJob(t *testing.T) {
	app, store := newTestServer(t)

	resp := send(t, app, nethttp.MethodPost, "/jobs/2/pay", "1", "")
	require.Equal(t, nethttp.StatusOK, resp.status, string(resp.body))
	var receipt map[string]any
	resp.decode(t, &receipt)
	assert.Equal(t, "Payment successful", receipt["message"])
	assert.EqualValues(t, 201, receipt["amount"])

	client, err := store.Profiles().GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "949", client.Balance.String())
	contractor, err := store.Profiles().GetByID(context.Background(), 6)
	require.NoError(t, err)
	assert.Equal(t, "1415", contractor.Balance.String())

	resp = send(t, app, nethttp.MethodPost, "/jobs/2/pay", "1", "")
	assert.Equal(t, nethttp.StatusBadRequest, resp.status)
	assert.Equal(t, "INVALID_STATE", resp.errorCode(t))

	resp = send(t, app, nethttp.MethodPost, "/jobs/3/pay", "3", "")
	assert.Equal(t, nethttp.StatusForbidden, resp.status)

	resp = send(t, app, nethttp.MethodPost, "/jobs/5/pay", "4", "")
	assert.Equal(t, nethttp.StatusBadRequest, resp.status)
	assert.Equal(t, "INSUFFICIENT_FUNDS", resp.errorCode(t))

	resp = send(t, app, nethttp.MethodPost, "/jobs/404/pay", "1", "")
	assert.Equal(t, nethttp.StatusNotFound, resp.status)
}

func TestDeposit(t *testing.T) {
	app, store := newTestServer(t)

	resp := send(t, app, nethttp.MethodPost, "/balances/deposit/4", "2", `{"amount": 1}`)
	require.Equal(t, nethttp.StatusOK, resp.status, string(resp.body))
	var receipt map[string]any
	resp.decode(t, &receipt)
	assert.Equal(t, "Deposit successful", receipt["message"])
	assert.EqualValues(t, 2.3, receipt["balance"])

	ash, err := store.Profiles().GetByID(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, "2.3", ash.Balance.String())

	resp = send(t, app, nethttp.MethodPost, "/balances/deposit/5", "5", `{"amount": 100}`)
	assert.Equal(t, nethttp.StatusForbidden, resp.status)
	assert.Equal(t, "INVALID_PROFILE_TYPE", resp.errorCode(t))

	resp = send(t, app, nethttp.MethodPost, "/balances/deposit/1", "1", `{"amount": 1000}`)
	assert.Equal(t, nethttp.StatusBadRequest, resp.status)
	assert.Equal(t, "INVALID_AMOUNT", resp.errorCode(t))

	resp = send(t, app, nethttp.MethodPost, "/balances/deposit/4", "4", `{"amount": "50.00"}`)
	assert.Equal(t, nethttp.StatusOK, resp.status, "exactly a quarter of 200 is allowed")

	resp = send(t, app, nethttp.MethodPost, "/balances/deposit/4", "4", `{}`)
	assert.Equal(t, nethttp.StatusBadRequest, resp.status)
	assert.Equal(t, "VALIDATION_FAILED", resp.errorCode(t))

	resp = send(t, app, nethttp.MethodPost, "/balances/deposit/99", "1", `{"amount": 1}`)
	assert.Equal(t, nethttp.StatusNotFound, resp.status)
}

func TestReports(t *testing.T) {
	app, _ := newTestServer(t)

	resp := send(t, app, nethttp.MethodGet, "/admin/best-profession?start=2020-01-01&end=2020-12-31", "", "")
	require.Equal(t, nethttp.StatusOK, resp.status, string(resp.body))
	var best map[string]any
	resp.decode(t, &best)
	assert.Equal(t, "Programmer", best["profession"])
	assert.EqualValues(t, 2683, best["total_earned"])

	resp = send(t, app, nethttp.MethodGet, "/admin/best-clients?start=2020-01-01&end=2020-12-31&limit=2", "", "")
	require.Equal(t, nethttp.StatusOK, resp.status, string(resp.body))
	var clients []map[string]any
	resp.decode(t, &clients)
	require.Len(t, clients, 2)
	assert.EqualValues(t, 4, clients[0]["id"])
	assert.Equal(t, "Ash Kethcum", clients[0]["fullName"])
	assert.EqualValues(t, 2020, clients[0]["paid"])

	resp = send(t, app, nethttp.MethodGet, "/admin/best-clients?start=2020-08-15&end=2020-08-15&limit=1", "", "")
	require.Equal(t, nethttp.StatusOK, resp.status)
	resp.decode(t, &clients)
	require.Len(t, clients, 1)
	assert.EqualValues(t, 4, clients[0]["id"], "date-only end covers the whole day")

	resp = send(t, app, nethttp.MethodGet, "/admin/best-profession?start=2030-01-01", "", "")
	assert.Equal(t, nethttp.StatusNotFound, resp.status)

	resp = send(t, app, nethttp.MethodGet, "/admin/best-profession?start=2021-01-01&end=2020-01-01", "", "")
	assert.Equal(t, nethttp.StatusBadRequest, resp.status)

	resp = send(t, app, nethttp.MethodGet, "/admin/best-profession?start=yesterday", "", "")
	assert.Equal(t, nethttp.StatusBadRequest, resp.status)

	resp = send(t, app, nethttp.MethodGet, "/admin/best-clients?limit=0", "", "")
	assert.Equal(t, nethttp.StatusBadRequest, resp.status)

	resp = send(t, app, nethttp.MethodGet, "/admin/best-clients?limit=101", "", "")
	assert.Equal(t, nethttp.StatusBadRequest, resp.status)
}

func TestAdminTokenRequired(t *testing.T) {
	app, _ := newTestServer(t, withAdminToken())
	tokens := auth.NewTokenManager(testSecret, 5)

	resp := send(t, app, nethttp.MethodGet, "/admin/best-profession", "", "")
	assert.Equal(t, nethttp.StatusUnauthorized, resp.status)

	profileToken, _, err := tokens.GenerateToken(1, "PROFILE")
	require.NoError(t, err)
	resp = send(t, app, nethttp.MethodGet, "/admin/best-profession", "", "", fiber.HeaderAuthorization, "Bearer "+profileToken)
	assert.Equal(t, nethttp.StatusForbidden, resp.status)

	adminToken, _, err := tokens.GenerateToken(0, "ADMIN")
	require.NoError(t, err)
	resp = send(t, app, nethttp.MethodGet, "/admin/best-profession", "", "", fiber.HeaderAuthorization, "Bearer "+adminToken)
	assert.Equal(t, nethttp.StatusOK, resp.status)
}

func TestMutatingRoutesAreRateLimited(t *testing.T) {
	app, _ := newTestServer(t, withLimiter(ratelimit.New(0.001, 1, time.Minute)))

	resp := send(t, app, nethttp.MethodPost, "/jobs/404/pay", "1", "")
	assert.Equal(t, nethttp.StatusNotFound, resp.status)

	resp = send(t, app, nethttp.MethodPost, "/jobs/2/pay", "1", "")
	assert.Equal(t, nethttp.StatusTooManyRequests, resp.status)
	assert.Equal(t, "RATE_LIMITED", resp.errorCode(t))

	resp = send(t, app, nethttp.MethodPost, "/jobs/2/pay", "2", "")
	assert.NotEqual(t, nethttp.StatusTooManyRequests, resp.status, "buckets are per profile")

	resp = send(t, app, nethttp.MethodGet, "/jobs/unpaid", "1", "")
	assert.Equal(t, nethttp.StatusOK, resp.status, "reads are not throttled")
}

func TestOperationalRoutes(t *testing.T) {
	app, _ := newTestServer(t)

	resp := send(t, app, nethttp.MethodGet, "/health/live", "", "")
	assert.Equal(t, nethttp.StatusOK, resp.status)

	resp = send(t, app, nethttp.MethodGet, "/health/ready", "", "")
	assert.Equal(t, nethttp.StatusOK, resp.status)

	send(t, app, nethttp.MethodGet, "/contracts/1", "1", "")
	resp = send(t, app, nethttp.MethodGet, "/metrics", "", "")
	require.Equal(t, nethttp.StatusOK, resp.status)
	assert.Contains(t, string(resp.body), "contract_ledger_http_requests_total")

	resp = send(t, app, nethttp.MethodGet, "/no-such-route", "", "")
	assert.Equal(t, nethttp.StatusNotFound, resp.status)
	assert.Equal(t, "NOT_FOUND", resp.errorCode(t))
}
