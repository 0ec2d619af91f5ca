package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/database"
)

type Store struct{}

func New() *Store {
	return &Store{}
}

func (s *Store) DeleteItems(ctx context.Context, q database.Querier, userID uuid.UUID) (int64, error) {
	res, err := q.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("deleting cart items: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading affected rows: %w", err)
	}

	return n, nil
}
