package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/apperr"
	"github.com/MrJamesThe3rd/marketvest/internal/catalog"
	"github.com/MrJamesThe3rd/marketvest/internal/database"
	"github.com/MrJamesThe3rd/marketvest/internal/investment"
	"github.com/MrJamesThe3rd/marketvest/internal/order"
	"github.com/MrJamesThe3rd/marketvest/internal/stock"
	"github.com/MrJamesThe3rd/marketvest/internal/wallet"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=checkout
type Catalog interface {
	Product(ctx context.Context, q database.Querier, id uuid.UUID) (*catalog.Product, error)
	ResalePlan(ctx context.Context, q database.Querier, id uuid.UUID) (*catalog.ResalePlan, error)
}

type Ledger interface {
	Debit(ctx context.Context, q database.Querier, e wallet.Entry) (*wallet.Transaction, error)
}

type Stock interface {
	Reserve(ctx context.Context, q database.Querier, productID uuid.UUID, qty int) error
}

type Investments interface {
	Open(ctx context.Context, q database.Querier, p investment.OpenParams) (*investment.Investment, error)
	Activate(ctx context.Context, q database.Querier, orderID uuid.UUID) (int64, error)
}

type Orders interface {
	Create(ctx context.Context, q database.Querier, o *order.Order) error
}

type Cart interface {
	Clear(ctx context.Context, q database.Querier, userID uuid.UUID) error
}

type Deps struct {
	DB          database.Querier
	Tx          database.Beginner
	Catalog     Catalog
	Ledger      Ledger
	Stock       Stock
	Investments Investments
	Orders      Orders
	Cart        Cart
}

type Orchestrator struct {
	db          database.Querier
	tx          database.Beginner
	catalog     Catalog
	ledger      Ledger
	stock       Stock
	investments Investments
	orders      Orders
	cart        Cart
	validator   *validator.Validate
	nowFunc     func() time.Time
}

func NewOrchestrator(d Deps) *Orchestrator {
	return &Orchestrator{
		db:          d.DB,
		tx:          d.Tx,
		catalog:     d.Catalog,
		ledger:      d.Ledger,
		stock:       d.Stock,
		investments: d.Investments,
		orders:      d.Orders,
		cart:        d.Cart,
		validator:   validator.New(),
		nowFunc:     time.Now,
	}
}

func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.nowFunc = now
	return o
}

// Quote validates and prices the request without holding any lock. Gateway
// payments use it to fail fast before redirecting the user.
func (o *Orchestrator) Quote(ctx context.Context, req *Request) (*Quote, error) {
	if err := o.validate(req); err != nil {
		return nil, err
	}

	return o.price(ctx, o.db, req)
}

// Checkout validates the request, then places the order in its own unit of work.
func (o *Orchestrator) Checkout(ctx context.Context, req *Request) (*Result, error) {
	quote, err := o.Quote(ctx, req)
	if err != nil {
		return nil, err
	}

	var res *Result

	err = database.WithTx(ctx, o.tx, func(tx database.Tx) error {
		var err error
		res, err = o.execute(ctx, tx, quote)

		return err
	})
	if err != nil {
		return nil, err
	}

	o.logPlaced(res)

	return res, nil
}

// Place validates, prices and places the order inside the caller's unit of
// work. Nothing is committed here; a returned error leaves q for the caller
// to roll back.
func (o *Orchestrator) Place(ctx context.Context, q database.Querier, req *Request) (*Result, error) {
	if err := o.validate(req); err != nil {
		return nil, err
	}

	quote, err := o.price(ctx, q, req)
	if err != nil {
		return nil, err
	}

	res, err := o.execute(ctx, q, quote)
	if err != nil {
		return nil, err
	}

	o.logPlaced(res)

	return res, nil
}

func (o *Orchestrator) execute(ctx context.Context, q database.Querier, quote *Quote) (*Result, error) {
	ord := &order.Order{
		UserID:               quote.UserID,
		Type:                 quote.Type,
		Status:               order.InitialStatus(quote.Type),
		Subtotal:             quote.Subtotal,
		DiscountPercent:      quote.DiscountPercent,
		DiscountAmount:       quote.DiscountAmount,
		TotalAmount:          quote.Total,
		Shipping:             quote.Shipping,
		ResaleReturnDate:     quote.ResaleReturnDate,
		ResaleExpectedReturn: quote.ResaleExpectedReturn,
		Items:                make([]*order.Item, 0, len(quote.Lines)),
	}

	for _, l := range quote.Lines {
		it := &order.Item{
			ProductID:    l.Item.ProductID,
			ProductName:  l.ProductName,
			CompanyID:    l.Item.CompanyID,
			Quantity:     l.Item.Quantity,
			UnitPrice:    l.UnitPrice,
			TotalPrice:   l.TotalPrice,
			PurchaseType: l.Item.PurchaseType,
		}

		if l.Plan != nil {
			status := string(investment.StatusPending)
			it.ResalePlanID = l.Item.ResalePlanID
			it.ResaleSnapshot = l.Plan
			it.ResaleExpectedReturn = &l.Terms.ExpectedReturn
			it.InvestmentStatus = &status
		}

		ord.Items = append(ord.Items, it)
	}

	if err := o.orders.Create(ctx, q, ord); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if ord.TotalAmount > 0 {
		if _, err := o.ledger.Debit(ctx, q, wallet.Entry{
			UserID:      ord.UserID,
			Amount:      ord.TotalAmount,
			Type:        wallet.TypePayment,
			Description: "Payment for order " + ord.OrderNumber,
			Reference:   &wallet.Reference{Type: wallet.RefOrder, ID: ord.ID},
		}); err != nil {
			if errors.Is(err, wallet.ErrInsufficientBalance) {
				e, _ := apperr.As(err)
				return nil, ErrOrderFailed.WithMessage("%s", e.Message).WithCause(err)
			}

			return nil, fmt.Errorf("debit wallet: %w", err)
		}
	}

	for i, l := range quote.Lines {
		if l.Item.PurchaseType != order.PurchaseWallet {
			continue
		}

		if err := o.stock.Reserve(ctx, q, l.Item.ProductID, l.Item.Quantity); err != nil {
			var insufficient *stock.InsufficientError
			if errors.As(err, &insufficient) {
				return nil, checkStock(ord.Items[i].ProductName, insufficient.Available, insufficient.Requested)
			}

			return nil, fmt.Errorf("reserve stock: %w", err)
		}
	}

	res := &Result{Order: ord}

	for i, l := range quote.Lines {
		if l.Plan == nil {
			continue
		}

		inv, err := o.investments.Open(ctx, q, investment.OpenParams{
			UserID:      ord.UserID,
			OrderID:     ord.ID,
			OrderItemID: ord.Items[i].ID,
			ProductID:   l.Item.ProductID,
			Invested:    l.TotalPrice,
			Plan:        *l.Plan,
			At:          l.Terms.InvestmentDate,
		})
		if err != nil {
			return nil, fmt.Errorf("open investment: %w", err)
		}

		res.Investments = append(res.Investments, inv)
	}

	if len(res.Investments) > 0 {
		if _, err := o.investments.Activate(ctx, q, ord.ID); err != nil {
			return nil, err
		}

		for _, inv := range res.Investments {
			inv.Status = investment.StatusActive
		}

		active := string(investment.StatusActive)
		for _, it := range ord.Items {
			if it.InvestmentStatus != nil {
				it.InvestmentStatus = &active
			}
		}
	}

	if err := o.cart.Clear(ctx, q, ord.UserID); err != nil {
		return nil, err
	}

	return res, nil
}

func (o *Orchestrator) logPlaced(res *Result) {
	slog.Info("order placed",
		"order_id", res.Order.ID,
		"order_number", res.Order.OrderNumber,
		"user_id", res.Order.UserID,
		"type", res.Order.Type,
		"total", res.Order.TotalAmount,
		"investments", len(res.Investments),
	)
}
