package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/database"
	"github.com/MrJamesThe3rd/marketvest/internal/pagination"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=wallet
type Repository interface {
	LockWallet(ctx context.Context, q database.Querier, userID uuid.UUID) (*Wallet, error)
	UpdateBalance(ctx context.Context, q database.Querier, walletID uuid.UUID, balance int64) error
	CreateTransaction(ctx context.Context, q database.Querier, tx *Transaction) error

	GetWallet(ctx context.Context, userID uuid.UUID) (*Wallet, error)
	ListTransactions(ctx context.Context, walletID uuid.UUID, page pagination.Request) ([]*Transaction, int, error)
	SumTransactions(ctx context.Context, walletID uuid.UUID) (int64, error)
}

// Ledger moves money in and out of wallets. Every movement locks the wallet
// row inside the caller's unit of work and appends exactly one transaction.
type Ledger struct {
	repo Repository
}

func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo}
}

type Entry struct {
	UserID      uuid.UUID
	Amount      int64
	Type        Type
	Description string
	Reference   *Reference
}

func (l *Ledger) Debit(ctx context.Context, q database.Querier, e Entry) (*Transaction, error) {
	if !e.Type.IsDebit() {
		return nil, ErrInvalidType.WithMessage("%s is not a debit", e.Type)
	}

	return l.post(ctx, q, e, -e.Amount)
}

func (l *Ledger) Credit(ctx context.Context, q database.Querier, e Entry) (*Transaction, error) {
	if !e.Type.IsCredit() {
		return nil, ErrInvalidType.WithMessage("%s is not a credit", e.Type)
	}

	return l.post(ctx, q, e, e.Amount)
}

func (l *Ledger) post(ctx context.Context, q database.Querier, e Entry, delta int64) (*Transaction, error) {
	if e.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	w, err := l.repo.LockWallet(ctx, q, e.UserID)
	if err != nil {
		return nil, fmt.Errorf("lock wallet: %w", err)
	}

	balance := w.Balance + delta
	if balance < 0 {
		return nil, ErrInsufficientBalance.WithMessage(
			"insufficient wallet balance: have %d, need %d", w.Balance, e.Amount,
		)
	}

	if err := l.repo.UpdateBalance(ctx, q, w.ID, balance); err != nil {
		return nil, fmt.Errorf("update balance: %w", err)
	}

	tx := &Transaction{
		WalletID:     w.ID,
		Type:         e.Type,
		Amount:       e.Amount,
		BalanceAfter: balance,
		Description:  e.Description,
		Reference:    e.Reference,
	}
	if err := l.repo.CreateTransaction(ctx, q, tx); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	slog.Info("wallet movement recorded",
		"user_id", e.UserID,
		"type", e.Type,
		"amount", e.Amount,
		"balance_after", balance,
	)

	return tx, nil
}

// Balance returns the user's wallet. Users who never transacted get an empty one.
func (l *Ledger) Balance(ctx context.Context, userID uuid.UUID) (*Wallet, error) {
	w, err := l.repo.GetWallet(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return &Wallet{UserID: userID}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("get wallet: %w", err)
	}

	return w, nil
}

type History struct {
	Wallet       *Wallet
	Transactions []*Transaction
	Meta         pagination.Meta
}

func (l *Ledger) History(ctx context.Context, userID uuid.UUID, page pagination.Request) (*History, error) {
	page = page.Normalize()

	w, err := l.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}

	if w.ID == uuid.Nil {
		return &History{Wallet: w, Meta: pagination.NewMeta(page, 0)}, nil
	}

	txs, total, err := l.repo.ListTransactions(ctx, w.ID, page)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	return &History{Wallet: w, Transactions: txs, Meta: pagination.NewMeta(page, total)}, nil
}

// Verification compares the stored balance with the sum of the ledger.
type Verification struct {
	UserID     uuid.UUID
	Balance    int64
	LedgerSum  int64
	Consistent bool
}

func (l *Ledger) Verify(ctx context.Context, userID uuid.UUID) (*Verification, error) {
	w, err := l.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}

	v := &Verification{UserID: userID, Balance: w.Balance, Consistent: true}
	if w.ID == uuid.Nil {
		return v, nil
	}

	sum, err := l.repo.SumTransactions(ctx, w.ID)
	if err != nil {
		return nil, fmt.Errorf("sum transactions: %w", err)
	}

	v.LedgerSum = sum
	v.Consistent = sum == w.Balance

	if !v.Consistent {
		slog.Warn("wallet balance diverges from ledger", "user_id", userID, "balance", w.Balance, "ledger_sum", sum)
	}

	return v, nil
}
