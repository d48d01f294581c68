package middleware

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
)

// RequireRole lets a request through when the role set by Auth is one of
// roles. RoleAdmin passes every check.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(ContextRole).(string)
			if role != RoleAdmin && !slices.Contains(roles, role) {
				return echo.NewHTTPError(http.StatusForbidden, forbiddenMessage(role))
			}
			return next(c)
		}
	}
}

func forbiddenMessage(role string) string {
	if role == "" {
		return "forbidden: token carries no role"
	}
	return fmt.Sprintf("forbidden for role %q", role)
}
