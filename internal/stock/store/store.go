package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/database"
	"github.com/MrJamesThe3rd/marketvest/internal/stock"
)

type Store struct{}

func New() *Store {
	return &Store{}
}

func (s *Store) Decrement(ctx context.Context, q database.Querier, productID uuid.UUID, qty int) (bool, error) {
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity - $2,
		    in_stock = stock_quantity - $2 > 0,
		    updated_at = NOW()
		WHERE id = $1 AND stock_quantity >= $2
	`

	res, err := q.ExecContext(ctx, query, productID, qty)
	if err != nil {
		return false, fmt.Errorf("decrementing stock: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading affected rows: %w", err)
	}

	return n == 1, nil
}

func (s *Store) Increment(ctx context.Context, q database.Querier, productID uuid.UUID, qty int) error {
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity + $2,
		    in_stock = TRUE,
		    updated_at = NOW()
		WHERE id = $1
	`

	res, err := q.ExecContext(ctx, query, productID, qty)
	if err != nil {
		return fmt.Errorf("incrementing stock: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return stock.ErrNotFound
	}

	return nil
}

func (s *Store) Quantity(ctx context.Context, q database.Querier, productID uuid.UUID) (int, error) {
	var qty int

	err := q.QueryRowContext(ctx, `SELECT stock_quantity FROM products WHERE id = $1`, productID).Scan(&qty)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, stock.ErrNotFound
		}

		return 0, fmt.Errorf("reading stock: %w", err)
	}

	return qty, nil
}
