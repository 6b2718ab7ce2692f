package ratelimit

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/contract-ledger/internal/auth"
	apperrors "github.com/spec-kit/contract-ledger/pkg/util/errorutil"
)

// Middleware throttles per authenticated profile, falling back to the client IP.
// It must run after the auth middleware to key by profile.
func Middleware(limiter *MapLimiter, clock func() time.Time) fiber.Handler {
	if clock == nil {
		clock = time.Now
	}
	return func(c *fiber.Ctx) error {
		if limiter == nil {
			return c.Next()
		}
		key := "ip:" + c.IP()
		if profile, ok := auth.ProfileFromContext(c); ok {
			key = "profile:" + strconv.FormatInt(profile.ID, 10)
		}
		if !limiter.Allow(key, clock()) {
			return apperrors.NewRateLimited("too many requests, slow down")
		}
		return c.Next()
	}
}
