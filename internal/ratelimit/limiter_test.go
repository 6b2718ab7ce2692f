package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/contract-ledger/pkg/util/errorutil"
)

func TestNewRejectsInvalidArgs(t *testing.T) {
	assert.Nil(t, New(0, 1, time.Minute))
	assert.Nil(t, New(1, 0, time.Minute))

	var l *MapLimiter
	assert.True(t, l.Allow("anyone", time.Now()))
	assert.Zero(t, l.Len())
}

func TestAllowEnforcesBurstPerKey(t *testing.T) {
	l := New(1, 2, time.Minute)
	now := time.Unix(1_700_000_000, 0)

	assert.True(t, l.Allow("a", now))
	assert.True(t, l.Allow("a", now))
	assert.False(t, l.Allow("a", now))
	assert.True(t, l.Allow("b", now), "keys have separate buckets")
	assert.True(t, l.Allow("a", now.Add(time.Second)), "bucket refills")
	assert.True(t, l.Allow("  ", now), "blank key is not throttled")
}

func TestIdleBucketsAreSwept(t *testing.T) {
	l := New(100, 100, time.Second)
	start := time.Unix(1_700_000_000, 0)
	l.Allow("idle", start)

	later := start.Add(time.Minute)
	for i := 0; i < sweepEvery; i++ {
		l.Allow("busy", later)
	}
	assert.Equal(t, 1, l.Len())
}

func TestMiddlewareReturns429(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	app.Post("/pay", Middleware(New(1, 1, time.Minute), func() time.Time { return now }), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	statuses := []int{}
	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/pay", nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
		statuses = append(statuses, resp.StatusCode)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, statuses)
}
