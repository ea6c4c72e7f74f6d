package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/appsec-lab/gateway/internal/core/domain"
	"github.com/appsec-lab/gateway/internal/core/ports"
)

// OrderService guards every order read with the ownership policy.
type OrderService struct {
	directory ports.Directory
	log       zerolog.Logger
}

func NewOrderService(directory ports.Directory, log zerolog.Logger) *OrderService {
	return &OrderService{directory: directory, log: log}
}

// GetOrder returns the order if identity may read it.
// Existence is checked before ownership: a missing order is
// domain.ErrOrderNotFound for every caller, an existing order the caller does
// not own is domain.ErrAccessDenied.
func (s *OrderService) GetOrder(ctx context.Context, identity *domain.User, orderID int) (*domain.Order, error) {
	if identity == nil {
		return nil, domain.ErrUnauthenticated
	}

	order, err := s.directory.FindOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !domain.CanAccess(identity, order) {
		s.log.Warn().
			Int("user_id", identity.ID).
			Str("role", identity.Role).
			Int("order_id", order.ID).
			Msg("order access denied")
		return nil, domain.ErrAccessDenied
	}

	return order, nil
}

// ListOrders returns the orders identity may read. Privileged roles see all
// orders, everyone else only their own.
func (s *OrderService) ListOrders(ctx context.Context, identity *domain.User) ([]domain.Order, error) {
	if identity == nil {
		return nil, domain.ErrUnauthenticated
	}

	filter := ports.OrderFilter{OwnerID: identity.ID}
	if identity.IsPrivileged() {
		filter = ports.OrderFilter{}
	}

	orders, err := s.directory.ListOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	visible := make([]domain.Order, 0, len(orders))
	for i := range orders {
		if domain.CanAccess(identity, &orders[i]) {
			visible = append(visible, orders[i])
		}
	}
	return visible, nil
}

// ListUsers returns the whole directory. Callers restrict it by role.
func (s *OrderService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.directory.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
