// Package cart is the checkout-facing edge of the shopping cart: the only
// thing checkout does with it is empty it once an order is placed.
package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/database"
)

type Repository interface {
	DeleteItems(ctx context.Context, q database.Querier, userID uuid.UUID) (int64, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Clear removes every cart line of the user inside the caller's unit of work.
func (s *Service) Clear(ctx context.Context, q database.Querier, userID uuid.UUID) error {
	if _, err := s.repo.DeleteItems(ctx, q, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	return nil
}
