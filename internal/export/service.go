package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/marketvest/internal/pagination"
	"github.com/MrJamesThe3rd/marketvest/internal/wallet"
)

// batchSize is the page size used to walk the ledger.
const batchSize = pagination.MaxPerPage

//go:generate mockgen -source=service.go -destination=service_mock.go -package=export
type Ledger interface {
	History(ctx context.Context, userID uuid.UUID, page pagination.Request) (*wallet.History, error)
}

// Filter bounds the exported movements by creation time. Zero values are open.
type Filter struct {
	From time.Time
	To   time.Time
}

func (f Filter) includes(t time.Time) bool {
	if !f.From.IsZero() && t.Before(f.From) {
		return false
	}

	if !f.To.IsZero() && !t.Before(f.To) {
		return false
	}

	return true
}

// Summary describes a written statement.
type Summary struct {
	Rows    int
	Credits int64
	Debits  int64
	Balance int64
}

// Service writes wallet statements as CSV.
type Service struct {
	ledger Ledger
}

func NewService(ledger Ledger) *Service {
	return &Service{ledger: ledger}
}

var header = []string{"date", "type", "amount", "balance_after", "description", "reference_type", "reference_id"}

// Statement writes the user's ledger movements, newest first, to w.
func (s *Service) Statement(ctx context.Context, userID uuid.UUID, filter Filter, w io.Writer) (*Summary, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	sum := &Summary{}
	page := pagination.Request{Page: 1, PerPage: batchSize}

	for {
		h, err := s.ledger.History(ctx, userID, page)
		if err != nil {
			return nil, fmt.Errorf("reading ledger page %d: %w", page.Page, err)
		}

		sum.Balance = h.Wallet.Balance

		done := false

		for _, tx := range h.Transactions {
			if !filter.From.IsZero() && tx.CreatedAt.Before(filter.From) {
				done = true
				break
			}

			if !filter.includes(tx.CreatedAt) {
				continue
			}

			if err := cw.Write(record(tx)); err != nil {
				return nil, fmt.Errorf("writing transaction %s: %w", tx.ID, err)
			}

			sum.Rows++

			if tx.Type.IsCredit() {
				sum.Credits += tx.Amount
			} else {
				sum.Debits += tx.Amount
			}
		}

		if done || page.Page >= h.Meta.TotalPages {
			break
		}

		page.Page++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("flushing statement: %w", err)
	}

	return sum, nil
}

func record(tx *wallet.Transaction) []string {
	refType, refID := "", ""
	if tx.Reference != nil {
		refType = tx.Reference.Type
		refID = tx.Reference.ID.String()
	}

	return []string{
		tx.CreatedAt.UTC().Format(time.RFC3339),
		string(tx.Type),
		Euros(tx.Signed()),
		Euros(tx.BalanceAfter),
		tx.Description,
		refType,
		refID,
	}
}

// Euros formats cents as a plain decimal amount, e.g. -12.50.
func Euros(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
