package auth

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/contract-ledger/internal/domain"
	"github.com/spec-kit/contract-ledger/internal/repository"
	apperrors "github.com/spec-kit/contract-ledger/pkg/util/errorutil"
)

const profileKey = "auth_profile"

// AuthMiddleware resolves the requesting profile from a bearer token or the profile header.
type AuthMiddleware struct {
	tokens   *TokenManager
	profiles repository.ProfileRepository
	header   string
}

// NewAuthMiddleware constructs middleware. header names the request header carrying a profile id.
func NewAuthMiddleware(tokens *TokenManager, profiles repository.ProfileRepository, header string) *AuthMiddleware {
	if header == "" {
		header = "profile_id"
	}
	return &AuthMiddleware{tokens: tokens, profiles: profiles, header: header}
}

// Handle enforces that a known profile is making the request.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	profileID, err := m.requesterID(c)
	if err != nil {
		return err
	}

	profile, err := m.profiles.GetByID(c.UserContext(), profileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewUnauthorized("profile not found")
		}
		return err
	}

	c.Locals(profileKey, profile)
	return c.Next()
}

func (m *AuthMiddleware) requesterID(c *fiber.Ctx) (int64, error) {
	if token, ok := bearerToken(c); ok {
		claims, err := m.tokens.ParseToken(token)
		if err != nil {
			return 0, apperrors.NewUnauthorized("invalid token")
		}
		if claims.Role != domain.RoleProfile || claims.ProfileID <= 0 {
			return 0, apperrors.NewUnauthorized("token does not identify a profile")
		}
		return claims.ProfileID, nil
	}

	raw := strings.TrimSpace(c.Get(m.header))
	if raw == "" {
		return 0, apperrors.NewUnauthorized("missing " + m.header + " header")
	}
	profileID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || profileID <= 0 {
		return 0, apperrors.NewUnauthorized("invalid " + m.header + " header")
	}
	return profileID, nil
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// ProfileFromContext retrieves the authenticated profile.
func ProfileFromContext(c *fiber.Ctx) (*domain.Profile, bool) {
	val := c.Locals(profileKey)
	if val == nil {
		return nil, false
	}
	profile, ok := val.(*domain.Profile)
	return profile, ok
}
