// Package checkout turns a validated cart into an order, a wallet debit, stock
// reservations and resale investments inside a single unit of work.
package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/marketvest/internal/apperr"
	"github.com/MrJamesThe3rd/marketvest/internal/investment"
	"github.com/MrJamesThe3rd/marketvest/internal/order"
	"github.com/MrJamesThe3rd/marketvest/internal/resale"
)

type Item struct {
	ProductID    uuid.UUID          `json:"product_id" validate:"required"`
	Quantity     int                `json:"quantity" validate:"required,min=1,max=1000"`
	PurchaseType order.PurchaseType `json:"purchase_type" validate:"required,oneof=wallet resale"`
	CompanyID    uuid.UUID          `json:"company_id" validate:"required"`
	ResalePlanID *uuid.UUID         `json:"resale_plan_id,omitempty" validate:"required_if=PurchaseType resale"`
}

// Request is a checkout payload. It is stored verbatim while a gateway
// payment is outstanding, so it must survive a JSON round trip.
type Request struct {
	UserID          uuid.UUID       `json:"-"`
	Items           []Item          `json:"items" validate:"required,min=1,max=50,dive"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Shipping        *order.Shipping `json:"shipping,omitempty"`
}

func (r *Request) hasWalletItems() bool {
	for _, it := range r.Items {
		if it.PurchaseType == order.PurchaseWallet {
			return true
		}
	}

	return false
}

// Line is one priced cart item.
type Line struct {
	Item        Item
	ProductName string
	UnitPrice   int64
	TotalPrice  int64
	Plan        *resale.Snapshot
	Terms       *resale.Terms
}

// Quote is a fully priced cart, computed from the catalog at read time.
type Quote struct {
	UserID               uuid.UUID
	Type                 order.Type
	Lines                []*Line
	Subtotal             int64
	DiscountPercent      decimal.Decimal
	DiscountAmount       int64
	Total                int64
	ResaleExpectedReturn int64
	ResaleReturnDate     *time.Time
	Shipping             *order.Shipping
}

type Result struct {
	Order       *order.Order
	Investments []*investment.Investment
}

var (
	ErrValidation        = apperr.New(apperr.KindValidation, "VALIDATION_FAILED", "invalid checkout request")
	ErrProductNotFound   = apperr.New(apperr.KindValidation, "PRODUCT_NOT_FOUND", "product not found")
	ErrInvalidCompany    = apperr.New(apperr.KindValidation, "INVALID_COMPANY", "product does not belong to company")
	ErrInvalidResalePlan = apperr.New(apperr.KindValidation, "INVALID_RESALE_PLAN", "resale plan is not available for this product")
	ErrOutOfStock        = apperr.New(apperr.KindConflict, "OUT_OF_STOCK", "product is out of stock")
	ErrExceedsStock      = apperr.New(apperr.KindConflict, "EXCEEDS_STOCK", "requested quantity exceeds available stock")
	ErrOrderFailed       = apperr.New(apperr.KindConflict, "ORDER_FAILED", "order could not be placed")
)
