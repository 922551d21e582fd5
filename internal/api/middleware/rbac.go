package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tourbooking/auth-service/internal/core/domain"
)

// RBAC enforces role-based access control against the roles injected by the
// Auth middleware. Access is granted when any of the caller's roles is in
// the allowed set.
func RBAC(allowedRoles ...domain.RoleName) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[string(r)] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roles, _ := c.Get("roles").([]string)
			for _, role := range roles {
				if _, ok := allowed[role]; ok {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
	}
}
