package wallet

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/apperr"
)

// Type is the kind of ledger movement.
type Type string

const (
	TypeDeposit      Type = "deposit"
	TypeWithdrawal   Type = "withdrawal"
	TypePayment      Type = "payment"
	TypeResaleReturn Type = "resale_return"
	TypeRefund       Type = "refund"
)

// IsCredit reports whether the movement adds to the balance.
func (t Type) IsCredit() bool {
	switch t {
	case TypeDeposit, TypeRefund, TypeResaleReturn:
		return true
	}

	return false
}

func (t Type) IsDebit() bool {
	switch t {
	case TypeWithdrawal, TypePayment:
		return true
	}

	return false
}

// Reference types link a movement to the entity that caused it.
const (
	RefOrder          = "order"
	RefPendingPayment = "pending_payment"
	RefDeposit        = "deposit"
)

type Reference struct {
	Type string
	ID   uuid.UUID
}

type Wallet struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Balance   int64 // Balance in cents
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Transaction is one append-only ledger row.
type Transaction struct {
	ID           uuid.UUID
	WalletID     uuid.UUID
	Type         Type
	Amount       int64 // Always positive; Type carries the sign
	BalanceAfter int64
	Description  string
	Reference    *Reference
	CreatedAt    time.Time
}

// Signed returns the amount with the sign the movement applies to the balance.
func (t *Transaction) Signed() int64 {
	if t.Type.IsCredit() {
		return t.Amount
	}

	return -t.Amount
}

var ErrNotFound = errors.New("wallet not found")

var (
	ErrInsufficientBalance = apperr.New(apperr.KindConflict, "INSUFFICIENT_BALANCE", "insufficient wallet balance")
	ErrInvalidAmount       = apperr.New(apperr.KindValidation, "INVALID_AMOUNT", "amount must be positive")
	ErrInvalidType         = apperr.New(apperr.KindValidation, "INVALID_TRANSACTION_TYPE", "transaction type does not match the movement direction")
	ErrDuplicateMovement   = apperr.New(apperr.KindConflict, "DUPLICATE_MOVEMENT", "movement already recorded for this reference")
)
