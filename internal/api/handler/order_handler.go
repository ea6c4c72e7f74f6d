package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/appsec-lab/gateway/internal/api/metrics"
	"github.com/appsec-lab/gateway/internal/core/domain"
	"github.com/appsec-lab/gateway/internal/core/ports"
)

type OrderHandler struct {
	orderService ports.OrderService
}

func NewOrderHandler(orderService ports.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// GetOrder returns one order if the caller owns it or holds a privileged role.
//
// @Summary      Get order
// @Description  Existence is checked before ownership: unknown ids are 404, foreign orders 403.
// @Tags         orders
// @Produce      json
// @Param        id   path      int  true  "Order id"
// @Success      200  {object}  domain.Order
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Security     UserIDHeader
// @Security     SessionCookie
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetOrder(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	// A non-numeric id cannot name an order.
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		metrics.AccessDecisionsTotal.WithLabelValues("order", "not_found").Inc()
		return domain.ErrOrderNotFound
	}

	order, err := h.orderService.GetOrder(c.Request().Context(), user, id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccessDenied):
			metrics.AccessDecisionsTotal.WithLabelValues("order", "deny").Inc()
		case errors.Is(err, domain.ErrOrderNotFound):
			metrics.AccessDecisionsTotal.WithLabelValues("order", "not_found").Inc()
		}
		return err
	}
	metrics.AccessDecisionsTotal.WithLabelValues("order", "allow").Inc()

	return c.JSON(http.StatusOK, order)
}

// ListOrders returns the orders visible to the caller.
//
// @Summary      List visible orders
// @Tags         orders
// @Produce      json
// @Success      200  {array}   domain.Order
// @Failure      401  {object}  ErrorResponse
// @Router       /orders [get]
func (h *OrderHandler) ListOrders(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	orders, err := h.orderService.ListOrders(c.Request().Context(), user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orders)
}

// ListUsers returns the user directory. Mounted behind RequireRole(support).
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {array}   domain.User
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /users [get]
func (h *OrderHandler) ListUsers(c echo.Context) error {
	users, err := h.orderService.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}
