package investment

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/apperr"
	"github.com/MrJamesThe3rd/marketvest/internal/resale"
)

// Status represents the lifecycle state of an investment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusMatured   Status = "matured"
	StatusPaidOut   Status = "paid_out"
	StatusCancelled Status = "cancelled"
)

// Investment is one resale order line held until maturity.
type Investment struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	UserEmail      string // Loaded via JOIN
	OrderID        uuid.UUID
	OrderNumber    string // Loaded via JOIN
	OrderItemID    uuid.UUID
	ProductID      uuid.UUID
	ProductName    string // Loaded via JOIN
	InvestedAmount int64
	ProfitAmount   int64
	ExpectedReturn int64
	Plan           resale.Snapshot
	InvestmentDate time.Time
	MaturityDate   time.Time
	Status         Status
	MaturedAt      *time.Time
	PaidOutAt      *time.Time
	PaidBy         *uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

var (
	ErrNotFound       = apperr.New(apperr.KindNotFound, "INVESTMENT_NOT_FOUND", "investment not found")
	ErrNotMatured     = apperr.New(apperr.KindConflict, "INVESTMENT_NOT_MATURED", "investment has not matured")
	ErrAlreadyPaidOut = apperr.New(apperr.KindConflict, "ALREADY_PAID_OUT", "investment was already paid out")
	ErrMatured        = apperr.New(apperr.KindConflict, "INVESTMENT_MATURED", "order has a matured investment and can no longer be cancelled")
)

// Settling reports whether the investment has reached maturity, paid out or not.
func (s Status) Settling() bool {
	return s == StatusMatured || s == StatusPaidOut
}
