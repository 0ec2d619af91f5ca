package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/marketvest/internal/apperr"
	"github.com/MrJamesThe3rd/marketvest/internal/resale"
)

// Type is derived from the purchase types of an order's items.
type Type string

const (
	TypeSale   Type = "sale"
	TypeResale Type = "resale"
	TypeMixed  Type = "mixed"
)

type PurchaseType string

const (
	PurchaseWallet PurchaseType = "wallet"
	PurchaseResale PurchaseType = "resale"
)

// Status represents the lifecycle state of an order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusInvested   Status = "invested"
)

// Shipping is the delivery address captured at checkout.
type Shipping struct {
	Name       string `json:"name" validate:"required,max=120"`
	Phone      string `json:"phone" validate:"required,max=32"`
	Address    string `json:"address" validate:"required,max=500"`
	City       string `json:"city" validate:"required,max=120"`
	PostalCode string `json:"postal_code" validate:"required,max=16"`
	Notes      string `json:"notes,omitempty" validate:"max=500"`
}

type Order struct {
	ID                   uuid.UUID
	UserID               uuid.UUID
	OrderNumber          string
	Type                 Type
	Status               Status
	Subtotal             int64 // Amounts in cents
	DiscountPercent      decimal.Decimal
	DiscountAmount       int64
	TotalAmount          int64
	Shipping             *Shipping
	ResaleReturnDate     *time.Time
	ResaleExpectedReturn int64
	ResaleReturned       bool
	ResaleReturnedAt     *time.Time
	Items                []*Item // Loaded separately
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type Item struct {
	ID                   uuid.UUID
	OrderID              uuid.UUID
	ProductID            uuid.UUID
	ProductName          string // Loaded via JOIN
	CompanyID            uuid.UUID
	Quantity             int
	UnitPrice            int64
	TotalPrice           int64
	PurchaseType         PurchaseType
	ResalePlanID         *uuid.UUID
	ResaleSnapshot       *resale.Snapshot
	ResaleExpectedReturn *int64
	InvestmentStatus     *string
}

// ClassifyType returns sale when every item is a wallet purchase, resale when
// every item is a resale purchase and mixed otherwise.
func ClassifyType(items []*Item) Type {
	var hasWallet, hasResale bool

	for _, it := range items {
		switch it.PurchaseType {
		case PurchaseWallet:
			hasWallet = true
		case PurchaseResale:
			hasResale = true
		}
	}

	switch {
	case hasWallet && hasResale:
		return TypeMixed
	case hasResale:
		return TypeResale
	}

	return TypeSale
}

// HasResale reports whether the order carries a resale return.
func (o *Order) HasResale() bool {
	return o.Type == TypeResale || o.Type == TypeMixed
}

var (
	ErrNotFound          = apperr.New(apperr.KindNotFound, "ORDER_NOT_FOUND", "order not found")
	ErrNotCancellable    = apperr.New(apperr.KindConflict, "ORDER_NOT_CANCELLABLE", "order can only be cancelled while pending or confirmed")
	ErrResaleSettled     = apperr.New(apperr.KindConflict, "RESALE_SETTLED", "order's resale return was already credited")
	ErrInvalidTransition = apperr.New(apperr.KindConflict, "INVALID_STATUS_TRANSITION", "status transition not allowed")
	ErrInvalidStatus     = apperr.New(apperr.KindValidation, "INVALID_STATUS", "status not allowed here")
)
