package ports

import (
	"context"

	"github.com/appsec-lab/gateway/internal/core/domain"
)

// LoginResult is returned by a successful login.
type LoginResult struct {
	Session *domain.Session
	User    *domain.User
	// Token is a signed bearer token, set only when token issuing is enabled.
	Token string
}

type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
}

// OrderService enforces ownership on every order read.
type OrderService interface {
	GetOrder(ctx context.Context, identity *domain.User, orderID int) (*domain.Order, error)
	ListOrders(ctx context.Context, identity *domain.User) ([]domain.Order, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// BankService covers the session-authenticated account routes.
type BankService interface {
	Profile(ctx context.Context, userID int) (*domain.Account, error)
	Transactions(ctx context.Context, userID int, query string) ([]domain.Transaction, error)
	SubmitFeedback(ctx context.Context, userID int, comment string) error
	Feedback(ctx context.Context) ([]domain.Feedback, error)
	ChangeEmail(ctx context.Context, userID int, email string) (string, error)
}

// DocumentService serves files from a fixed base directory.
type DocumentService interface {
	// Read resolves a caller-supplied name against the base directory and
	// refuses anything that escapes it.
	Read(ctx context.Context, filename string) (*domain.Document, error)
	// ReadAllowListed maps name through a closed allow-list before touching
	// the filesystem.
	ReadAllowListed(ctx context.Context, name string) (*domain.Document, error)
}
