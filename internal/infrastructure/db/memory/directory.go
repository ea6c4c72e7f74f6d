// Package memory provides in-process implementations of the directory and
// session store ports.
package memory

import (
	"context"
	"sort"

	"github.com/appsec-lab/gateway/internal/core/domain"
	"github.com/appsec-lab/gateway/internal/core/ports"
)

// Directory is an immutable user and order directory. It is safe for
// concurrent use because nothing mutates it after construction.
type Directory struct {
	users  map[int]domain.User
	orders map[int]domain.Order
}

func NewDirectory(users []domain.User, orders []domain.Order) *Directory {
	d := &Directory{
		users:  make(map[int]domain.User, len(users)),
		orders: make(map[int]domain.Order, len(orders)),
	}
	for _, u := range users {
		d.users[u.ID] = u
	}
	for _, o := range orders {
		d.orders[o.ID] = o
	}
	return d
}

func (d *Directory) FindUser(_ context.Context, id int) (*domain.User, error) {
	u, ok := d.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (d *Directory) ListUsers(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (d *Directory) FindOrder(_ context.Context, id int) (*domain.Order, error) {
	o, ok := d.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return &o, nil
}

func (d *Directory) ListOrders(_ context.Context, filter ports.OrderFilter) ([]domain.Order, error) {
	out := make([]domain.Order, 0, len(d.orders))
	for _, o := range d.orders {
		if filter.OwnerID != 0 && o.OwnerID != filter.OwnerID {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
