package ports

import (
	"context"

	"github.com/appsec-lab/gateway/internal/core/domain"
)

// AccountRepository defines credential and profile persistence.
type AccountRepository interface {
	// FindByUsername matches the username exactly (case-sensitive).
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByID(ctx context.Context, id int) (*domain.Account, error)
	UpdateEmail(ctx context.Context, id int, email string) error
}

// LedgerRepository reads transactions.
type LedgerRepository interface {
	// ListTransactions returns the user's transactions whose description
	// contains query literally, newest first. An empty query matches all.
	ListTransactions(ctx context.Context, userID int, query string) ([]domain.Transaction, error)
}

// FeedbackRepository stores and lists feedback comments.
type FeedbackRepository interface {
	InsertFeedback(ctx context.Context, username, comment string) error
	ListFeedback(ctx context.Context) ([]domain.Feedback, error)
}
