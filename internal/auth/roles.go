package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/contract-ledger/internal/domain"
	apperrors "github.com/spec-kit/contract-ledger/pkg/util/errorutil"
)

// RequireAdmin guards operator routes. When required is false every caller passes.
func (m *AuthMiddleware) RequireAdmin(required bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !required {
			return c.Next()
		}
		token, ok := bearerToken(c)
		if !ok {
			return apperrors.NewUnauthorized("admin token required")
		}
		claims, err := m.tokens.ParseToken(token)
		if err != nil {
			return apperrors.NewUnauthorized("invalid token")
		}
		if claims.Role != domain.RoleAdmin {
			return apperrors.NewForbidden("admin role required")
		}
		return c.Next()
	}
}

// RequireProfile ensures Handle ran and resolved a profile.
func RequireProfile() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := ProfileFromContext(c); !ok {
			return apperrors.NewUnauthorized("profile required")
		}
		return c.Next()
	}
}
