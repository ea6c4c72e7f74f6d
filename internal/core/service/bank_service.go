package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/appsec-lab/gateway/internal/core/domain"
	"github.com/appsec-lab/gateway/internal/core/ports"
)

const (
	maxCommentLength = 2000
	maxEmailLength   = 254
)

// BankService implements the account routes of the FastBank lab on top of the
// record store.
type BankService struct {
	accounts ports.AccountRepository
	ledger   ports.LedgerRepository
	feedback ports.FeedbackRepository
	log      zerolog.Logger
}

func NewBankService(
	accounts ports.AccountRepository,
	ledger ports.LedgerRepository,
	feedback ports.FeedbackRepository,
	log zerolog.Logger,
) *BankService {
	return &BankService{accounts: accounts, ledger: ledger, feedback: feedback, log: log}
}

func (s *BankService) Profile(ctx context.Context, userID int) (*domain.Account, error) {
	return s.accounts.FindByID(ctx, userID)
}

func (s *BankService) Transactions(ctx context.Context, userID int, query string) ([]domain.Transaction, error) {
	txs, err := s.ledger.ListTransactions(ctx, userID, query)
	if err != nil {
		return nil, fmt.Errorf("transactions: %w", err)
	}
	return txs, nil
}

// SubmitFeedback stores comment under the caller's username. The comment is
// kept verbatim.
func (s *BankService) SubmitFeedback(ctx context.Context, userID int, comment string) error {
	if strings.TrimSpace(comment) == "" || len(comment) > maxCommentLength {
		return domain.ErrInvalidInput
	}

	account, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.feedback.InsertFeedback(ctx, account.Username, comment); err != nil {
		return fmt.Errorf("submit feedback: %w", err)
	}

	s.log.Debug().Int("user_id", userID).Int("length", len(comment)).Msg("feedback stored")
	return nil
}

func (s *BankService) Feedback(ctx context.Context) ([]domain.Feedback, error) {
	items, err := s.feedback.ListFeedback(ctx)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return items, nil
}

// ChangeEmail updates the caller's email and returns the stored value.
func (s *BankService) ChangeEmail(ctx context.Context, userID int, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || len(email) > maxEmailLength || !strings.Contains(email, "@") {
		return "", domain.ErrInvalidEmail
	}

	if err := s.accounts.UpdateEmail(ctx, userID, email); err != nil {
		return "", err
	}

	s.log.Info().Int("user_id", userID).Msg("email changed")
	return email, nil
}
