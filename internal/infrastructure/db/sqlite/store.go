package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/appsec-lab/gateway/internal/core/domain"
	"github.com/appsec-lab/gateway/internal/pkg/sqlcmd"
)

const (
	selectAccountByUsername = `SELECT id, username, password_hash, email FROM accounts WHERE username = ?`
	selectAccountByID       = `SELECT id, username, password_hash, email FROM accounts WHERE id = ?`
	updateAccountEmail      = `UPDATE accounts SET email = ? WHERE id = ?`

	selectTransactions = `SELECT id, user_id, amount, description FROM transactions
		WHERE user_id = ? AND description LIKE ? ESCAPE '\'
		ORDER BY id DESC`

	insertFeedback = `INSERT INTO feedback (username, comment) VALUES (?, ?)`
	selectFeedback = `SELECT id, username, comment FROM feedback ORDER BY id DESC`

	ping = `SELECT 1`
)

// Store implements the account, ledger and feedback repositories on SQLite.
// Every statement is a constant; caller input is only ever a bound argument.
type Store struct {
	db   *sql.DB
	exec *sqlcmd.Executor
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, exec: sqlcmd.NewExecutor(db)}
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStore, op, err)
}

func (s *Store) FindByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return s.findAccount(ctx, sqlcmd.New(selectAccountByUsername, username))
}

func (s *Store) FindByID(ctx context.Context, id int) (*domain.Account, error) {
	return s.findAccount(ctx, sqlcmd.New(selectAccountByID, id))
}

func (s *Store) findAccount(ctx context.Context, cmd sqlcmd.Command) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var a domain.Account
	err := s.exec.QueryRow(ctx, cmd).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, storeErr("find account", err)
	}
	return &a, nil
}

func (s *Store) UpdateEmail(ctx context.Context, id int, email string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := s.exec.Exec(ctx, sqlcmd.New(updateAccountEmail, email, id))
	if err != nil {
		return storeErr("update email", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("update email", err)
	}
	if n == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// ListTransactions matches query as a literal substring of the description.
// LIKE wildcards in query are escaped, so "%" only matches a percent sign.
func (s *Store) ListTransactions(ctx context.Context, userID int, query string) ([]domain.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := s.exec.Query(ctx, sqlcmd.New(selectTransactions, userID, "%"+escapeLike(query)+"%"))
	if err != nil {
		return nil, storeErr("list transactions", err)
	}
	defer rows.Close()

	txs := make([]domain.Transaction, 0)
	for rows.Next() {
		var tx domain.Transaction
		if err := rows.Scan(&tx.ID, &tx.UserID, &tx.Amount, &tx.Description); err != nil {
			return nil, storeErr("scan transaction", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list transactions", err)
	}
	return txs, nil
}

func (s *Store) InsertFeedback(ctx context.Context, username, comment string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.exec.Exec(ctx, sqlcmd.New(insertFeedback, username, comment)); err != nil {
		return storeErr("insert feedback", err)
	}
	return nil
}

// ListFeedback returns every comment, newest first.
func (s *Store) ListFeedback(ctx context.Context) ([]domain.Feedback, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := s.exec.Query(ctx, sqlcmd.New(selectFeedback))
	if err != nil {
		return nil, storeErr("list feedback", err)
	}
	defer rows.Close()

	items := make([]domain.Feedback, 0)
	for rows.Next() {
		var f domain.Feedback
		if err := rows.Scan(&f.ID, &f.User, &f.Comment); err != nil {
			return nil, storeErr("scan feedback", err)
		}
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list feedback", err)
	}
	return items, nil
}

// Ping reports whether the database answers a trivial query.
func (s *Store) Ping(ctx context.Context) error {
	var one int
	return s.exec.QueryRow(ctx, sqlcmd.New(ping)).Scan(&one)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
