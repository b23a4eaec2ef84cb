package auth

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/farm-portal/internal/domain"
)

// RequireAdmin ensures the caller operates the portal.
func RequireAdmin() fiber.Handler {
	return requireRole(domain.RoleAdmin, "admin required")
}

// RequireCustomer ensures the caller is a customer account.
func RequireCustomer() fiber.Handler {
	return requireRole(domain.RoleUser, "customer required")
}

func requireRole(role domain.Role, msg string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if principal.User.Role != role {
			return fiber.NewError(http.StatusForbidden, msg)
		}
		return c.Next()
	}
}

// RequireAnyRole ensures caller is authenticated.
func RequireAnyRole() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		return c.Next()
	}
}
