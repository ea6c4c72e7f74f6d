package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/appsec-lab/gateway/internal/api/middleware"
	"github.com/appsec-lab/gateway/internal/core/domain"
)

// currentUser returns the identity stored by the Authenticate middleware.
// Handlers mounted without it fail closed with domain.ErrUnauthenticated.
func currentUser(c echo.Context) (*domain.User, error) {
	user, ok := middleware.IdentityFrom(c.Request().Context())
	if !ok {
		return nil, domain.ErrUnauthenticated
	}
	return user, nil
}
