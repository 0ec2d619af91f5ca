// Package stock reserves and releases product inventory with single
// conditional statements, so concurrent buyers can never drive a counter negative.
package stock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/database"
)

var (
	ErrNotFound        = errors.New("product not found")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// InsufficientError reports a reservation that could not be satisfied.
type InsufficientError struct {
	ProductID uuid.UUID
	Requested int
	Available int
}

func (e *InsufficientError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=stock
type Repository interface {
	// Decrement subtracts qty when at least qty units remain and reports whether it did.
	Decrement(ctx context.Context, q database.Querier, productID uuid.UUID, qty int) (bool, error)
	Increment(ctx context.Context, q database.Querier, productID uuid.UUID, qty int) error
	Quantity(ctx context.Context, q database.Querier, productID uuid.UUID) (int, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Reserve takes qty units of the product inside the caller's unit of work.
func (s *Service) Reserve(ctx context.Context, q database.Querier, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	ok, err := s.repo.Decrement(ctx, q, productID, qty)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	if ok {
		return nil
	}

	available, err := s.repo.Quantity(ctx, q, productID)
	if err != nil {
		return fmt.Errorf("read stock: %w", err)
	}

	return &InsufficientError{ProductID: productID, Requested: qty, Available: available}
}

// Release returns qty units, e.g. when an order is cancelled.
func (s *Service) Release(ctx context.Context, q database.Querier, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	if err := s.repo.Increment(ctx, q, productID, qty); err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}

	slog.Info("stock released", "product_id", productID, "quantity", qty)

	return nil
}

// Available reads the current counter without reserving anything.
func (s *Service) Available(ctx context.Context, q database.Querier, productID uuid.UUID) (int, error) {
	return s.repo.Quantity(ctx, q, productID)
}
