package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/farm-portal/internal/auth"
	"github.com/spec-kit/farm-portal/internal/domain"
	apperrors "github.com/spec-kit/farm-portal/pkg/util/errorutil"
)

func currentUser(c *fiber.Ctx) (domain.User, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return domain.User{}, apperrors.NewUnauthorized("sign in required")
	}
	return principal.User, nil
}

func parseBody(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return apperrors.NewValidationError("invalid payload", map[string]any{"reason": err.Error()})
	}
	return nil
}
