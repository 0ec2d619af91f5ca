package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/database"
	"github.com/MrJamesThe3rd/marketvest/internal/pagination"
	"github.com/MrJamesThe3rd/marketvest/internal/wallet"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=order
type Repository interface {
	// CreateOrder inserts the order and reports false when its number is taken.
	CreateOrder(ctx context.Context, q database.Querier, o *Order) (bool, error)
	CreateItem(ctx context.Context, q database.Querier, it *Item) error
	LockOrder(ctx context.Context, q database.Querier, id uuid.UUID) (*Order, error)
	UpdateStatus(ctx context.Context, q database.Querier, id uuid.UUID, status Status) error

	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID, page pagination.Request) ([]*Order, int, error)
}

// Refunder credits a wallet.
type Refunder interface {
	Credit(ctx context.Context, q database.Querier, e wallet.Entry) (*wallet.Transaction, error)
}

// StockReleaser returns reserved units to a product.
type StockReleaser interface {
	Release(ctx context.Context, q database.Querier, productID uuid.UUID, qty int) error
}

// InvestmentCanceller cancels the open investments of an order.
type InvestmentCanceller interface {
	CancelForOrder(ctx context.Context, q database.Querier, orderID uuid.UUID) (int64, error)
}

type Service struct {
	repo        Repository
	tx          database.Beginner
	ledger      Refunder
	stock       StockReleaser
	investments InvestmentCanceller
	nowFunc     func() time.Time
}

func NewService(
	repo Repository,
	tx database.Beginner,
	ledger Refunder,
	stock StockReleaser,
	investments InvestmentCanceller,
) *Service {
	return &Service{
		repo:        repo,
		tx:          tx,
		ledger:      ledger,
		stock:       stock,
		investments: investments,
		nowFunc:     time.Now,
	}
}

const numberAttempts = 5

// Create persists the order and its items inside the caller's unit of work,
// assigning a fresh order number.
func (s *Service) Create(ctx context.Context, q database.Querier, o *Order) error {
	created := false

	for range numberAttempts {
		o.OrderNumber = NewNumber(s.nowFunc())

		ok, err := s.repo.CreateOrder(ctx, q, o)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		if ok {
			created = true
			break
		}
	}

	if !created {
		return fmt.Errorf("create order: no free order number after %d attempts", numberAttempts)
	}

	for _, it := range o.Items {
		it.OrderID = o.ID
		if err := s.repo.CreateItem(ctx, q, it); err != nil {
			return fmt.Errorf("create order item: %w", err)
		}
	}

	return nil
}

// GetForUser returns the order when it belongs to the user.
func (s *Service) GetForUser(ctx context.Context, userID, id uuid.UUID) (*Order, error) {
	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if o.UserID != userID {
		return nil, ErrNotFound
	}

	return o, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.repo.GetOrder(ctx, id)
}

type Page struct {
	Orders []*Order
	Meta   pagination.Meta
}

func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, page pagination.Request) (*Page, error) {
	page = page.Normalize()

	orders, total, err := s.repo.ListOrders(ctx, userID, page)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	return &Page{Orders: orders, Meta: pagination.NewMeta(page, total)}, nil
}

// Cancel cancels a pending or confirmed order of the user, refunding the full
// total, releasing reserved stock and cancelling its open investments in one
// unit of work.
func (s *Service) Cancel(ctx context.Context, userID, id uuid.UUID) (*Order, error) {
	tx, err := s.tx.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin cancel: %w", err)
	}
	defer tx.Rollback()

	o, err := s.repo.LockOrder(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if o.UserID != userID {
		return nil, ErrNotFound
	}

	if !o.Status.Cancellable() {
		return nil, ErrNotCancellable.WithMessage("order %s is %s and can no longer be cancelled", o.OrderNumber, o.Status)
	}

	if o.ResaleReturned {
		return nil, ErrResaleSettled.WithMessage("order %s was settled and can no longer be cancelled", o.OrderNumber)
	}

	// Refused when an investment has matured; its payout is owed instead.
	if _, err := s.investments.CancelForOrder(ctx, tx, o.ID); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, tx, o.ID, StatusCancelled); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	if o.TotalAmount > 0 {
		if _, err := s.ledger.Credit(ctx, tx, wallet.Entry{
			UserID:      o.UserID,
			Amount:      o.TotalAmount,
			Type:        wallet.TypeRefund,
			Description: "Refund for order " + o.OrderNumber,
			Reference:   &wallet.Reference{Type: wallet.RefOrder, ID: o.ID},
		}); err != nil {
			return nil, fmt.Errorf("refund: %w", err)
		}
	}

	for _, it := range o.Items {
		if it.PurchaseType != PurchaseWallet {
			continue
		}

		if err := s.stock.Release(ctx, tx, it.ProductID, it.Quantity); err != nil {
			return nil, fmt.Errorf("release stock: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit cancel: %w", err)
	}

	o.Status = StatusCancelled

	slog.Info("order cancelled", "order_id", o.ID, "order_number", o.OrderNumber, "refund", o.TotalAmount)

	return o, nil
}

// Transition advances an order along the fulfilment path. Cancellation goes
// through Cancel so the refund is never skipped.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, next Status) (*Order, error) {
	if next == StatusCancelled || !next.Valid() {
		return nil, ErrInvalidStatus.WithMessage("cannot transition to %q", next)
	}

	return s.setStatus(ctx, id, next, func(o *Order) error {
		if !o.Status.CanTransitionTo(next) {
			return ErrInvalidTransition.WithMessage("cannot move order from %s to %s", o.Status, next)
		}

		return nil
	})
}

// ForceStatus lets an admin override the status without moving money or stock.
func (s *Service) ForceStatus(ctx context.Context, id uuid.UUID, next Status) (*Order, error) {
	if !next.Forceable() {
		return nil, ErrInvalidStatus.WithMessage("status %q cannot be forced", next)
	}

	return s.setStatus(ctx, id, next, func(*Order) error { return nil })
}

func (s *Service) setStatus(ctx context.Context, id uuid.UUID, next Status, check func(*Order) error) (*Order, error) {
	var o *Order

	err := database.WithTx(ctx, s.tx, func(tx database.Tx) error {
		var err error

		o, err = s.repo.LockOrder(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := check(o); err != nil {
			return err
		}

		return s.repo.UpdateStatus(ctx, tx, id, next)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}

		return nil, fmt.Errorf("set status: %w", err)
	}

	slog.Info("order status changed", "order_id", id, "from", o.Status, "to", next)
	o.Status = next

	return o, nil
}
