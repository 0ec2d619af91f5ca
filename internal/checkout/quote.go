package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/marketvest/internal/catalog"
	"github.com/MrJamesThe3rd/marketvest/internal/database"
	"github.com/MrJamesThe3rd/marketvest/internal/order"
	"github.com/MrJamesThe3rd/marketvest/internal/resale"
)

var hundred = decimal.NewFromInt(100)

func (o *Orchestrator) validate(req *Request) error {
	if err := o.validator.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return ErrValidation.WithMessage("%s", formatValidationErrors(verrs))
		}

		return ErrValidation.WithCause(err)
	}

	if req.DiscountPercent.IsNegative() || req.DiscountPercent.GreaterThan(hundred) {
		return ErrValidation.WithMessage("discount_percent must be between 0 and 100")
	}

	if req.hasWalletItems() && req.Shipping == nil {
		return ErrValidation.WithMessage("shipping is required when buying wallet items")
	}

	return nil
}

func formatValidationErrors(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))

	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "required_if":
			msgs = append(msgs, fe.Namespace()+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", fe.Namespace(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		}
	}

	return strings.Join(msgs, "; ")
}

// price reads every product and plan through q and computes the order totals.
// Prices are taken from the catalog once, never from the request.
func (o *Orchestrator) price(ctx context.Context, q database.Querier, req *Request) (*Quote, error) {
	now := o.nowFunc()

	quote := &Quote{
		UserID:          req.UserID,
		DiscountPercent: req.DiscountPercent,
		Shipping:        req.Shipping,
		Lines:           make([]*Line, 0, len(req.Items)),
	}

	orderItems := make([]*order.Item, 0, len(req.Items))

	for _, it := range req.Items {
		line, err := o.priceLine(ctx, q, it)
		if err != nil {
			return nil, err
		}

		quote.Lines = append(quote.Lines, line)
		quote.Subtotal += line.TotalPrice
		orderItems = append(orderItems, &order.Item{PurchaseType: it.PurchaseType})

		if line.Plan == nil {
			continue
		}

		terms := line.Plan.Terms(line.TotalPrice, now)
		line.Terms = &terms

		quote.ResaleExpectedReturn += terms.ExpectedReturn
		if quote.ResaleReturnDate == nil || terms.MaturityDate.After(*quote.ResaleReturnDate) {
			quote.ResaleReturnDate = &terms.MaturityDate
		}
	}

	quote.Type = order.ClassifyType(orderItems)
	quote.DiscountAmount = decimal.NewFromInt(quote.Subtotal).
		Mul(quote.DiscountPercent).
		Div(hundred).
		Round(0).
		IntPart()
	quote.Total = quote.Subtotal - quote.DiscountAmount

	return quote, nil
}

func (o *Orchestrator) priceLine(ctx context.Context, q database.Querier, it Item) (*Line, error) {
	p, err := o.catalog.Product(ctx, q, it.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return nil, ErrProductNotFound.WithMessage("product %s not found", it.ProductID)
		}

		return nil, fmt.Errorf("get product: %w", err)
	}

	if !p.Active || !p.CompanyActive {
		return nil, ErrOrderFailed.WithMessage("%s is no longer available", p.Name)
	}

	if p.CompanyID != it.CompanyID {
		return nil, ErrInvalidCompany.WithMessage("%s is not sold by company %s", p.Name, it.CompanyID)
	}

	line := &Line{
		Item:        it,
		ProductName: p.Name,
		UnitPrice:   p.Price,
		TotalPrice:  p.Price * int64(it.Quantity),
	}

	switch it.PurchaseType {
	case order.PurchaseWallet:
		if err := checkStock(p.Name, p.StockQuantity, it.Quantity); err != nil {
			return nil, err
		}
	case order.PurchaseResale:
		snap, err := o.snapshot(ctx, q, p, it)
		if err != nil {
			return nil, err
		}

		line.Plan = &snap
	}

	return line, nil
}

// snapshot freezes the plan terms. Every later profit computation for the
// line uses the snapshot and never the live plan.
func (o *Orchestrator) snapshot(ctx context.Context, q database.Querier, p *catalog.Product, it Item) (resale.Snapshot, error) {
	if it.ResalePlanID == nil {
		return resale.Snapshot{}, ErrInvalidResalePlan.WithMessage("%s needs a resale plan", p.Name)
	}

	plan, err := o.catalog.ResalePlan(ctx, q, *it.ResalePlanID)
	if err != nil {
		if errors.Is(err, catalog.ErrPlanNotFound) {
			return resale.Snapshot{}, ErrInvalidResalePlan.WithMessage("resale plan %s not found", *it.ResalePlanID)
		}

		return resale.Snapshot{}, fmt.Errorf("get resale plan: %w", err)
	}

	if plan.ProductID != p.ID || !plan.Active {
		return resale.Snapshot{}, ErrInvalidResalePlan.WithMessage("resale plan %s is not available for %s", plan.ID, p.Name)
	}

	snap, err := resale.NewSnapshot(plan.Months, plan.ProfitPercentage, plan.Label)
	if err != nil {
		return resale.Snapshot{}, ErrInvalidResalePlan.WithCause(err)
	}

	return snap, nil
}

func checkStock(name string, available, requested int) error {
	if available <= 0 {
		return ErrOutOfStock.WithMessage("%s is out of stock", name)
	}

	if requested > available {
		return ErrExceedsStock.WithMessage("only %d of %s left in stock", available, name)
	}

	return nil
}
