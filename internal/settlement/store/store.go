package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/database"
	"github.com/MrJamesThe3rd/marketvest/internal/settlement"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// dueCondition selects resale orders whose return date has passed and whose
// return is still outstanding. Cancelled orders never settle.
const dueCondition = `
	resale_returned = FALSE
	AND resale_return_date IS NOT NULL
	AND resale_return_date <= $1
	AND resale_expected_return > 0
	AND type IN ('resale', 'mixed')
	AND status <> 'cancelled'
`

func (s *Store) ListDue(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	query := `SELECT id FROM orders WHERE ` + dueCondition + ` ORDER BY resale_return_date, id LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("listing due orders: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning due order: %w", err)
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating due orders: %w", err)
	}

	return ids, nil
}

func (s *Store) LockDue(ctx context.Context, q database.Querier, orderID uuid.UUID, now time.Time) (*settlement.Due, error) {
	query := `
		SELECT id, user_id, order_number, resale_expected_return, resale_return_date
		FROM orders
		WHERE ` + dueCondition + ` AND id = $2
		FOR UPDATE`

	var d settlement.Due

	err := q.QueryRowContext(ctx, query, now, orderID).Scan(
		&d.OrderID, &d.UserID, &d.OrderNumber, &d.Amount, &d.ReturnDate,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("locking due order: %w", err)
	}

	return &d, nil
}

func (s *Store) MarkReturned(ctx context.Context, q database.Querier, orderID uuid.UUID, at time.Time) error {
	res, err := q.ExecContext(ctx, `
		UPDATE orders
		SET resale_returned = TRUE, resale_returned_at = $2, updated_at = NOW()
		WHERE id = $1 AND resale_returned = FALSE`,
		orderID, at,
	)
	if err != nil {
		return fmt.Errorf("marking order returned: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("order %s already returned", orderID)
	}

	return nil
}
