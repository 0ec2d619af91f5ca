package settlement

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/database"
	"github.com/MrJamesThe3rd/marketvest/internal/wallet"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=settlement
type Repository interface {
	ListDue(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
	// LockDue locks the order row and returns nil when it has been settled
	// or cancelled since it was listed.
	LockDue(ctx context.Context, q database.Querier, orderID uuid.UUID, now time.Time) (*Due, error)
	MarkReturned(ctx context.Context, q database.Querier, orderID uuid.UUID, at time.Time) error
}

type Crediter interface {
	Credit(ctx context.Context, q database.Querier, e wallet.Entry) (*wallet.Transaction, error)
}

type Service struct {
	repo      Repository
	tx        database.Beginner
	ledger    Crediter
	batchSize int
	nowFunc   func() time.Time
}

const defaultBatchSize = 500

func NewService(repo Repository, tx database.Beginner, ledger Crediter) *Service {
	return &Service{
		repo:      repo,
		tx:        tx,
		ledger:    ledger,
		batchSize: defaultBatchSize,
		nowFunc:   time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.nowFunc = now
	return s
}

func (s *Service) WithBatchSize(n int) *Service {
	if n > 0 {
		s.batchSize = n
	}

	return s
}

// Run credits the resale return of every due order, each in its own unit of
// work. A failing order is reported and does not stop the others. Running it
// again never credits an order twice.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	now := s.nowFunc()

	ids, err := s.repo.ListDue(ctx, now, s.batchSize)
	if err != nil {
		return nil, fmt.Errorf("list due orders: %w", err)
	}

	res := &Result{Errors: []OrderError{}}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		amount, err := s.settle(ctx, id, now)
		if err != nil {
			slog.Error("failed to settle order", "order_id", id, "error", err)
			res.Errors = append(res.Errors, OrderError{OrderID: id, Error: err.Error()})

			continue
		}

		if amount == 0 {
			res.Skipped++
			continue
		}

		res.Processed++
		res.Credited += amount
	}

	slog.Info("settlement run finished",
		"processed", res.Processed,
		"credited", res.Credited,
		"skipped", res.Skipped,
		"errors", len(res.Errors),
	)

	return res, nil
}

func (s *Service) settle(ctx context.Context, orderID uuid.UUID, now time.Time) (int64, error) {
	var amount int64

	err := database.WithTx(ctx, s.tx, func(tx database.Tx) error {
		due, err := s.repo.LockDue(ctx, tx, orderID, now)
		if err != nil {
			return fmt.Errorf("lock order: %w", err)
		}

		if due == nil {
			return nil
		}

		if _, err := s.ledger.Credit(ctx, tx, wallet.Entry{
			UserID:      due.UserID,
			Amount:      due.Amount,
			Type:        wallet.TypeResaleReturn,
			Description: "Resale return for order " + due.OrderNumber,
			Reference:   &wallet.Reference{Type: wallet.RefOrder, ID: due.OrderID},
		}); err != nil {
			return fmt.Errorf("credit resale return: %w", err)
		}

		if err := s.repo.MarkReturned(ctx, tx, due.OrderID, now); err != nil {
			return fmt.Errorf("mark returned: %w", err)
		}

		amount = due.Amount

		return nil
	})

	return amount, err
}
