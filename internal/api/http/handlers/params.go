package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/contract-ledger/internal/auth"
	"github.com/spec-kit/contract-ledger/internal/domain"
	apperrors "github.com/spec-kit/contract-ledger/pkg/util/errorutil"
)

const dateOnly = "2006-01-02"

func requester(c *fiber.Ctx) (*domain.Profile, error) {
	profile, ok := auth.ProfileFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("profile required")
	}
	return profile, nil
}

func idParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError(name+" must be a positive integer", map[string]any{name: c.Params(name)})
	}
	return id, nil
}

// parsePeriod reads start and end query bounds.
func parsePeriod(c *fiber.Ctx) (domain.DateRange, error) {
	var period domain.DateRange
	start, _, err := parseBound(c.Query("start"), false)
	if err != nil {
		return period, apperrors.NewValidationError("start must be YYYY-MM-DD or RFC3339", map[string]any{"start": c.Query("start")})
	}
	end, exclusive, err := parseBound(c.Query("end"), true)
	if err != nil {
		return period, apperrors.NewValidationError("end must be YYYY-MM-DD or RFC3339", map[string]any{"end": c.Query("end")})
	}
	period.Start, period.End, period.EndExclusive = start, end, exclusive
	return period, nil
}

// parseBound parses one bound. For a date-only end it returns the next midnight and
// reports the bound as exclusive, so every instant of that day is covered.
func parseBound(raw string, end bool) (*time.Time, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false, nil
	}
	if t, err := time.Parse(dateOnly, raw); err == nil {
		if end {
			t = t.AddDate(0, 0, 1)
			return &t, true, nil
		}
		return &t, false, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, false, err
	}
	return &t, false, nil
}

// parseLimit returns 0 when limit is absent so the service applies its default.
func parseLimit(c *fiber.Ctx) (int, error) {
	raw := strings.TrimSpace(c.Query("limit"))
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, apperrors.NewValidationError("limit must be a positive integer", map[string]any{"limit": raw})
	}
	return limit, nil
}
