package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/appsec-lab/gateway/internal/api/metrics"
	"github.com/appsec-lab/gateway/internal/core/domain"
)

// RequireRole lets the request through only when the authenticated identity
// has one of allowedRoles. It must run after Authenticate.
func RequireRole(resource string, allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := IdentityFrom(c.Request().Context())
			if !ok {
				return domain.ErrUnauthenticated
			}
			if _, ok := allowed[user.Role]; !ok {
				metrics.AccessDecisionsTotal.WithLabelValues(resource, "deny").Inc()
				return domain.ErrAccessDenied
			}
			metrics.AccessDecisionsTotal.WithLabelValues(resource, "allow").Inc()
			return next(c)
		}
	}
}
