package service

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/appsec-lab/gateway/internal/core/domain"
	"github.com/appsec-lab/gateway/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// Directory stub
// ---------------------------------------------------------------------------

type stubDirectory struct {
	users      map[int]domain.User
	orders     []domain.Order
	listErr    error
	lastFilter ports.OrderFilter
}

func newStubDirectory() *stubDirectory {
	return &stubDirectory{
		users: map[int]domain.User{
			1: {ID: 1, Name: "Alice", Role: domain.RoleCustomer, Department: "north"},
			2: {ID: 2, Name: "Bob", Role: domain.RoleCustomer, Department: "south"},
			3: {ID: 3, Name: "Charlie", Role: domain.RoleSupport, Department: "north"},
		},
		orders: []domain.Order{
			{ID: 1, OwnerID: 1, Item: "Laptop", Region: "north", Total: 2000},
			{ID: 2, OwnerID: 1, Item: "Mouse", Region: "north", Total: 40},
			{ID: 3, OwnerID: 2, Item: "Monitor", Region: "south", Total: 300},
			{ID: 4, OwnerID: 2, Item: "Keyboard", Region: "south", Total: 60},
		},
	}
}

func (d *stubDirectory) FindUser(_ context.Context, id int) (*domain.User, error) {
	u, ok := d.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (d *stubDirectory) ListUsers(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(d.users))
	for id := 1; id <= len(d.users); id++ {
		if u, ok := d.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (d *stubDirectory) FindOrder(_ context.Context, id int) (*domain.Order, error) {
	for _, o := range d.orders {
		if o.ID == id {
			clone := o
			return &clone, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

// ListOrders deliberately ignores the owner filter so the service's own
// visibility check is exercised.
func (d *stubDirectory) ListOrders(_ context.Context, f ports.OrderFilter) ([]domain.Order, error) {
	d.lastFilter = f
	if d.listErr != nil {
		return nil, d.listErr
	}
	return append([]domain.Order(nil), d.orders...), nil
}

// ---------------------------------------------------------------------------
// Session store stub
// ---------------------------------------------------------------------------

type stubSessions struct {
	mu      sync.Mutex
	saved   map[string]*domain.Session
	saveErr error
}

func newStubSessions() *stubSessions {
	return &stubSessions{saved: make(map[string]*domain.Session)}
}

func (s *stubSessions) Save(_ context.Context, sess *domain.Session) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *sess
	s.saved[sess.ID] = &clone
	return nil
}

func (s *stubSessions) Find(_ context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.saved[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	clone := *sess
	return &clone, nil
}

func (s *stubSessions) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

// ---------------------------------------------------------------------------
// Record store stub
// ---------------------------------------------------------------------------

type stubRecords struct {
	accounts     map[int]*domain.Account
	transactions []domain.Transaction
	feedback     []domain.Feedback
	lastQuery    string
	err          error
}

func newStubRecords() *stubRecords {
	return &stubRecords{accounts: make(map[int]*domain.Account)}
}

func (r *stubRecords) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, a := range r.accounts {
		if a.Username == username {
			clone := *a
			return &clone, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubRecords) FindByID(_ context.Context, id int) (*domain.Account, error) {
	if r.err != nil {
		return nil, r.err
	}
	a, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *stubRecords) UpdateEmail(_ context.Context, id int, email string) error {
	if r.err != nil {
		return r.err
	}
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Email = email
	return nil
}

func (r *stubRecords) ListTransactions(_ context.Context, userID int, query string) ([]domain.Transaction, error) {
	r.lastQuery = query
	if r.err != nil {
		return nil, r.err
	}
	var out []domain.Transaction
	for _, tx := range r.transactions {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (r *stubRecords) InsertFeedback(_ context.Context, username, comment string) error {
	if r.err != nil {
		return r.err
	}
	r.feedback = append(r.feedback, domain.Feedback{User: username, Comment: comment})
	return nil
}

func (r *stubRecords) ListFeedback(_ context.Context) ([]domain.Feedback, error) {
	if r.err != nil {
		return nil, r.err
	}
	return append([]domain.Feedback(nil), r.feedback...), nil
}
