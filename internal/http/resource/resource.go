// Package resource holds the JSON shapes shared by several API handlers.
package resource

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/marketvest/internal/investment"
	"github.com/MrJamesThe3rd/marketvest/internal/order"
	"github.com/MrJamesThe3rd/marketvest/internal/pagination"
	"github.com/MrJamesThe3rd/marketvest/internal/resale"
)

type Plan struct {
	Months           int             `json:"months"`
	ProfitPercentage decimal.Decimal `json:"profit_percentage"`
	Label            string          `json:"label,omitempty"`
}

func NewPlan(s resale.Snapshot) Plan {
	return Plan{Months: s.Months(), ProfitPercentage: s.ProfitPercentage(), Label: s.Label()}
}

type OrderItem struct {
	ID                   uuid.UUID          `json:"id"`
	ProductID            uuid.UUID          `json:"product_id"`
	ProductName          string             `json:"product_name,omitempty"`
	CompanyID            uuid.UUID          `json:"company_id"`
	Quantity             int                `json:"quantity"`
	UnitPrice            int64              `json:"unit_price"`
	TotalPrice           int64              `json:"total_price"`
	PurchaseType         order.PurchaseType `json:"purchase_type"`
	ResalePlanID         *uuid.UUID         `json:"resale_plan_id,omitempty"`
	ResalePlan           *Plan              `json:"resale_plan,omitempty"`
	ResaleExpectedReturn *int64             `json:"resale_expected_return,omitempty"`
	InvestmentStatus     *string            `json:"investment_status,omitempty"`
}

type Order struct {
	ID                   uuid.UUID       `json:"id"`
	OrderNumber          string          `json:"order_number"`
	Type                 order.Type      `json:"type"`
	Status               order.Status    `json:"status"`
	Subtotal             int64           `json:"subtotal"`
	DiscountPercent      decimal.Decimal `json:"discount_percent"`
	DiscountAmount       int64           `json:"discount_amount"`
	TotalAmount          int64           `json:"total_amount"`
	Shipping             *order.Shipping `json:"shipping,omitempty"`
	ResaleReturnDate     *time.Time      `json:"resale_return_date,omitempty"`
	ResaleExpectedReturn int64           `json:"resale_expected_return"`
	ResaleReturned       bool            `json:"resale_returned"`
	ResaleReturnedAt     *time.Time      `json:"resale_returned_at,omitempty"`
	Items                []OrderItem     `json:"items"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

func NewOrder(o *order.Order) Order {
	resp := Order{
		ID:                   o.ID,
		OrderNumber:          o.OrderNumber,
		Type:                 o.Type,
		Status:               o.Status,
		Subtotal:             o.Subtotal,
		DiscountPercent:      o.DiscountPercent,
		DiscountAmount:       o.DiscountAmount,
		TotalAmount:          o.TotalAmount,
		Shipping:             o.Shipping,
		ResaleReturnDate:     o.ResaleReturnDate,
		ResaleExpectedReturn: o.ResaleExpectedReturn,
		ResaleReturned:       o.ResaleReturned,
		ResaleReturnedAt:     o.ResaleReturnedAt,
		Items:                make([]OrderItem, 0, len(o.Items)),
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}

	for _, it := range o.Items {
		item := OrderItem{
			ID:                   it.ID,
			ProductID:            it.ProductID,
			ProductName:          it.ProductName,
			CompanyID:            it.CompanyID,
			Quantity:             it.Quantity,
			UnitPrice:            it.UnitPrice,
			TotalPrice:           it.TotalPrice,
			PurchaseType:         it.PurchaseType,
			ResalePlanID:         it.ResalePlanID,
			ResaleExpectedReturn: it.ResaleExpectedReturn,
			InvestmentStatus:     it.InvestmentStatus,
		}

		if it.ResaleSnapshot != nil {
			item.ResalePlan = new(NewPlan(*it.ResaleSnapshot))
		}

		resp.Items = append(resp.Items, item)
	}

	return resp
}

func NewOrders(orders []*order.Order) []Order {
	resp := make([]Order, len(orders))
	for i, o := range orders {
		resp[i] = NewOrder(o)
	}

	return resp
}

type Investment struct {
	ID             uuid.UUID         `json:"id"`
	UserID         uuid.UUID         `json:"user_id"`
	UserEmail      string            `json:"user_email,omitempty"`
	OrderID        uuid.UUID         `json:"order_id"`
	OrderNumber    string            `json:"order_number,omitempty"`
	ProductID      uuid.UUID         `json:"product_id"`
	ProductName    string            `json:"product_name,omitempty"`
	InvestedAmount int64             `json:"invested_amount"`
	ProfitAmount   int64             `json:"profit_amount"`
	ExpectedReturn int64             `json:"expected_return"`
	Plan           Plan              `json:"plan"`
	InvestmentDate time.Time         `json:"investment_date"`
	MaturityDate   time.Time         `json:"maturity_date"`
	Status         investment.Status `json:"status"`
	MaturedAt      *time.Time        `json:"matured_at,omitempty"`
	PaidOutAt      *time.Time        `json:"paid_out_at,omitempty"`
	PaidBy         *uuid.UUID        `json:"paid_by,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

func NewInvestment(inv *investment.Investment) Investment {
	return Investment{
		ID:             inv.ID,
		UserID:         inv.UserID,
		UserEmail:      inv.UserEmail,
		OrderID:        inv.OrderID,
		OrderNumber:    inv.OrderNumber,
		ProductID:      inv.ProductID,
		ProductName:    inv.ProductName,
		InvestedAmount: inv.InvestedAmount,
		ProfitAmount:   inv.ProfitAmount,
		ExpectedReturn: inv.ExpectedReturn,
		Plan:           NewPlan(inv.Plan),
		InvestmentDate: inv.InvestmentDate,
		MaturityDate:   inv.MaturityDate,
		Status:         inv.Status,
		MaturedAt:      inv.MaturedAt,
		PaidOutAt:      inv.PaidOutAt,
		PaidBy:         inv.PaidBy,
		CreatedAt:      inv.CreatedAt,
	}
}

func NewInvestments(invs []*investment.Investment) []Investment {
	resp := make([]Investment, len(invs))
	for i, inv := range invs {
		resp[i] = NewInvestment(inv)
	}

	return resp
}

// Page wraps a list endpoint's items with its pagination metadata.
type Page[T any] struct {
	Data []T            `json:"data"`
	Meta pagination.Meta `json:"meta"`
}
