// Package sqlcmd builds SQL commands whose text can only come from string
// constants written in the source. Values always travel separately as bound
// arguments.
//
//	cmd := sqlcmd.New("SELECT id FROM accounts WHERE username = ?", username)
//
// Passing a string variable as the text does not compile, because text is an
// unexported type and only untyped constants convert to it implicitly.
package sqlcmd

import (
	"context"
	"database/sql"
)

type text string

// Command is a statement plus its bound arguments.
type Command struct {
	text text
	args []any
}

// New returns a command for the given constant text and arguments.
func New(t text, args ...any) Command {
	return Command{text: t, args: args}
}

// Text returns the statement text.
func (c Command) Text() string { return string(c.text) }

// Args returns a copy of the bound arguments.
func (c Command) Args() []any { return append([]any(nil), c.args...) }

// Querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Executor runs commands against a Querier. It has no method that accepts raw
// SQL text.
type Executor struct {
	q Querier
}

func NewExecutor(q Querier) *Executor {
	return &Executor{q: q}
}

func (e *Executor) Query(ctx context.Context, cmd Command) (*sql.Rows, error) {
	return e.q.QueryContext(ctx, string(cmd.text), cmd.args...)
}

func (e *Executor) QueryRow(ctx context.Context, cmd Command) *sql.Row {
	return e.q.QueryRowContext(ctx, string(cmd.text), cmd.args...)
}

func (e *Executor) Exec(ctx context.Context, cmd Command) (sql.Result, error) {
	return e.q.ExecContext(ctx, string(cmd.text), cmd.args...)
}
