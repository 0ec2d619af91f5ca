package settlement

import (
	"time"

	"github.com/google/uuid"
)

// Due is an order whose resale return has come due and not yet been credited.
type Due struct {
	OrderID     uuid.UUID
	UserID      uuid.UUID
	OrderNumber string
	Amount      int64
	ReturnDate  time.Time
}

type OrderError struct {
	OrderID uuid.UUID `json:"order_id"`
	Error   string    `json:"error"`
}

// Result summarises one settlement run.
type Result struct {
	Processed int          `json:"processed"`
	Credited  int64        `json:"credited"`
	Skipped   int          `json:"skipped"`
	Errors    []OrderError `json:"errors"`
}
