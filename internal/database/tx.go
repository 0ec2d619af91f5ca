package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Querier is satisfied by *sql.DB, *sql.Tx and Tx. Component operations that must
// join a caller's unit of work take one explicitly.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

//go:generate mockgen -source=tx.go -destination=tx_mock.go -package=database

// Tx is one unit of work. Rollback after a successful Commit is a no-op,
// so callers defer it unconditionally.
type Tx interface {
	Querier
	Commit() error
	Rollback() error
}

// Beginner opens units of work.
type Beginner interface {
	Begin(ctx context.Context) (Tx, error)
}

// Transactor opens read-committed transactions on a *sql.DB. Row locks and
// conditional updates provide the isolation each operation needs.
type Transactor struct {
	db *sql.DB
}

func NewTransactor(db *sql.DB) *Transactor {
	return &Transactor{db: db}
}

func (t *Transactor) Begin(ctx context.Context) (Tx, error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	return tx, nil
}

// WithTx runs fn inside a unit of work, committing when fn returns nil.
func WithTx(ctx context.Context, b Beginner, fn func(tx Tx) error) error {
	tx, err := b.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// Savepoint marks a point inside tx that RollbackTo can return to without
// abandoning the rest of the unit of work.
func Savepoint(ctx context.Context, tx Querier, name string) error {
	if _, err := tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return fmt.Errorf("creating savepoint %s: %w", name, err)
	}

	return nil
}

func RollbackTo(ctx context.Context, tx Querier, name string) error {
	if _, err := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); err != nil {
		return fmt.Errorf("rolling back to savepoint %s: %w", name, err)
	}

	return nil
}

func Release(ctx context.Context, tx Querier, name string) error {
	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		return fmt.Errorf("releasing savepoint %s: %w", name, err)
	}

	return nil
}
