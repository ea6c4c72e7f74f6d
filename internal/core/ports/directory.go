package ports

import (
	"context"

	"github.com/appsec-lab/gateway/internal/core/domain"
)

// OrderFilter narrows ListOrders. A zero OwnerID means no owner filter; the
// service layer decides when that is allowed.
type OrderFilter struct {
	OwnerID int
}

// Directory is the read-only source of users and orders.
type Directory interface {
	FindUser(ctx context.Context, id int) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	FindOrder(ctx context.Context, id int) (*domain.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]domain.Order, error)
}
