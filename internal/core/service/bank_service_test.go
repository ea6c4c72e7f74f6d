package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/appsec-lab/gateway/internal/core/domain"
)

func newBankFixture() (*BankService, *stubRecords) {
	records := newStubRecords()
	records.accounts[1] = &domain.Account{ID: 1, Username: "alice", Email: "alice@example.com"}
	records.accounts[2] = &domain.Account{ID: 2, Username: "bob", Email: "bob@example.com"}
	records.transactions = []domain.Transaction{
		{ID: 1, UserID: 1, Amount: 25.50, Description: "Coffee shop"},
		{ID: 2, UserID: 1, Amount: 100, Description: "Groceries"},
		{ID: 3, UserID: 2, Amount: 900, Description: "Rent"},
	}
	return NewBankService(records, records, records, discardLogger), records
}

func TestBankService_Profile(t *testing.T) {
	svc, _ := newBankFixture()

	acc, err := svc.Profile(context.Background(), 2)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if acc.Username != "bob" {
		t.Fatalf("unexpected account: %+v", acc)
	}

	if _, err := svc.Profile(context.Background(), 42); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestBankService_Transactions_ScopedToCaller(t *testing.T) {
	svc, records := newBankFixture()

	txs, err := svc.Transactions(context.Background(), 1, "' OR 1=1 --")
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if records.lastQuery != "' OR 1=1 --" {
		t.Fatalf("query must reach the store unchanged, got %q", records.lastQuery)
	}
	for _, tx := range txs {
		if tx.UserID != 1 {
			t.Fatalf("foreign transaction returned: %+v", tx)
		}
	}
}

func TestBankService_Transactions_StoreError(t *testing.T) {
	svc, records := newBankFixture()
	records.err = domain.ErrStore

	if _, err := svc.Transactions(context.Background(), 1, ""); !errors.Is(err, domain.ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
}

func TestBankService_SubmitFeedback(t *testing.T) {
	svc, records := newBankFixture()
	payload := `<script>alert(1)</script>`

	if err := svc.SubmitFeedback(context.Background(), 1, payload); err != nil {
		t.Fatalf("SubmitFeedback: %v", err)
	}

	items, err := svc.Feedback(context.Background())
	if err != nil {
		t.Fatalf("Feedback: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].User != "alice" || items[0].Comment != payload {
		t.Fatalf("feedback must be stored verbatim under the caller: %+v", items[0])
	}
	if len(records.feedback) != 1 {
		t.Fatalf("store not called")
	}
}

func TestBankService_SubmitFeedback_Invalid(t *testing.T) {
	svc, records := newBankFixture()

	for _, comment := range []string{"", "   ", strings.Repeat("a", maxCommentLength+1)} {
		if err := svc.SubmitFeedback(context.Background(), 1, comment); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("comment of length %d: expected ErrInvalidInput, got %v", len(comment), err)
		}
	}
	if len(records.feedback) != 0 {
		t.Fatalf("invalid feedback must not be stored")
	}
}

func TestBankService_ChangeEmail(t *testing.T) {
	svc, records := newBankFixture()

	got, err := svc.ChangeEmail(context.Background(), 2, "  bob@new.example  ")
	if err != nil {
		t.Fatalf("ChangeEmail: %v", err)
	}
	if got != "bob@new.example" {
		t.Fatalf("unexpected email %q", got)
	}
	if records.accounts[2].Email != "bob@new.example" {
		t.Fatalf("store not updated")
	}
	if records.accounts[1].Email != "alice@example.com" {
		t.Fatalf("other account modified")
	}
}

func TestBankService_ChangeEmail_Invalid(t *testing.T) {
	svc, records := newBankFixture()

	for _, email := range []string{"", "not-an-email", strings.Repeat("a", maxEmailLength) + "@x"} {
		if _, err := svc.ChangeEmail(context.Background(), 1, email); !errors.Is(err, domain.ErrInvalidEmail) {
			t.Fatalf("email %q: expected ErrInvalidEmail, got %v", email, err)
		}
	}
	if records.accounts[1].Email != "alice@example.com" {
		t.Fatalf("invalid email must not be stored")
	}
}
