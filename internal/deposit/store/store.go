package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/database"
	"github.com/MrJamesThe3rd/marketvest/internal/deposit"
	"github.com/MrJamesThe3rd/marketvest/internal/pagination"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Claim(ctx context.Context, q database.Querier, d *deposit.Deposit) (bool, error) {
	query := `
		INSERT INTO deposits (id, user_id, fingerprint, amount, raw_description, date)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (fingerprint) DO NOTHING
		RETURNING created_at
	`

	err := q.QueryRowContext(ctx, query,
		d.ID, d.UserID, d.Fingerprint, d.Amount, d.RawDescription, d.Date,
	).Scan(&d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("inserting deposit: %w", err)
	}

	return true, nil
}

func (s *Store) AttachTransaction(ctx context.Context, q database.Querier, depositID, transactionID uuid.UUID) error {
	query := `UPDATE deposits SET transaction_id = $1 WHERE id = $2`

	if _, err := q.ExecContext(ctx, query, transactionID, depositID); err != nil {
		return fmt.Errorf("attaching wallet transaction: %w", err)
	}

	return nil
}

func (s *Store) ListForUser(ctx context.Context, userID uuid.UUID, page pagination.Request) ([]*deposit.Deposit, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM deposits WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting deposits: %w", err)
	}

	query := `
		SELECT id, user_id, fingerprint, amount, raw_description, date, transaction_id, created_at
		FROM deposits
		WHERE user_id = $1
		ORDER BY date DESC, created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("listing deposits: %w", err)
	}
	defer rows.Close()

	var deposits []*deposit.Deposit

	for rows.Next() {
		var d deposit.Deposit
		if err := rows.Scan(
			&d.ID, &d.UserID, &d.Fingerprint, &d.Amount, &d.RawDescription, &d.Date, &d.TransactionID, &d.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scanning deposit: %w", err)
		}

		deposits = append(deposits, &d)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating deposits: %w", err)
	}

	return deposits, total, nil
}
