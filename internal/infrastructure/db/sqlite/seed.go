package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/appsec-lab/gateway/internal/core/domain"
	"github.com/appsec-lab/gateway/internal/infrastructure/fixtures"
	"github.com/appsec-lab/gateway/internal/pkg/sqlcmd"
)

const (
	seedAccount = `INSERT INTO accounts (id, username, password_hash, email)
		VALUES (?, ?, ?, ?) ON CONFLICT DO NOTHING`
	seedTransaction = `INSERT INTO transactions (id, user_id, amount, description)
		VALUES (?, ?, ?, ?) ON CONFLICT DO NOTHING`
)

// Seed inserts accounts and transactions in one transaction. Rows that already
// exist are left untouched, so seeding a persistent database twice is a no-op.
// cost is the bcrypt cost; values below bcrypt.MinCost use bcrypt.DefaultCost.
func Seed(ctx context.Context, db *sql.DB, accounts []fixtures.Account, txs []domain.Transaction, cost int) error {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	exec := sqlcmd.NewExecutor(tx)

	for _, a := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), cost)
		if err != nil {
			return fmt.Errorf("seed: hash password for %s: %w", a.Username, err)
		}
		if _, err := exec.Exec(ctx, sqlcmd.New(seedAccount, a.ID, a.Username, string(hash), a.Email)); err != nil {
			return fmt.Errorf("seed: account %s: %w", a.Username, err)
		}
	}

	for _, t := range txs {
		if _, err := exec.Exec(ctx, sqlcmd.New(seedTransaction, t.ID, t.UserID, t.Amount, t.Description)); err != nil {
			return fmt.Errorf("seed: transaction %d: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit: %w", err)
	}
	return nil
}
