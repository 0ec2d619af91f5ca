package deposit

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/database"
	"github.com/MrJamesThe3rd/marketvest/internal/pagination"
	"github.com/MrJamesThe3rd/marketvest/internal/statement"
	"github.com/MrJamesThe3rd/marketvest/internal/wallet"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=deposit
type Repository interface {
	// Claim inserts the deposit and reports false when its fingerprint was
	// already booked.
	Claim(ctx context.Context, q database.Querier, d *Deposit) (bool, error)
	AttachTransaction(ctx context.Context, q database.Querier, depositID, transactionID uuid.UUID) error
	ListForUser(ctx context.Context, userID uuid.UUID, page pagination.Request) ([]*Deposit, int, error)
}

type Parser interface {
	Parse(ctx context.Context, bank statement.Bank, r io.Reader) (*statement.Parsed, error)
}

type Matcher interface {
	Suggest(ctx context.Context, rawDescription string) (uuid.UUID, bool, error)
}

type Crediter interface {
	Credit(ctx context.Context, q database.Querier, e wallet.Entry) (*wallet.Transaction, error)
}

type Service struct {
	repo    Repository
	tx      database.Beginner
	parser  Parser
	matcher Matcher
	ledger  Crediter
}

func NewService(repo Repository, tx database.Beginner, parser Parser, matcher Matcher, ledger Crediter) *Service {
	return &Service{
		repo:    repo,
		tx:      tx,
		parser:  parser,
		matcher: matcher,
		ledger:  ledger,
	}
}

// Import books every credit line of the statement whose description maps to
// a user. Lines that fail are reported and do not stop the rest.
func (s *Service) Import(ctx context.Context, bank statement.Bank, r io.Reader) (*Result, error) {
	parsed, err := s.parser.Parse(ctx, bank, r)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Profile:   parsed.Profile,
		Charset:   parsed.Charset,
		Credited:  []*Deposit{},
		Unmatched: []statement.Line{},
		Errors:    []LineError{},
	}

	seen := make(map[string]int)

	for _, line := range parsed.Lines {
		if !line.IsCredit() {
			res.Debits++
			continue
		}

		seen[line.Key()]++
		fingerprint := Fingerprint(line, seen[line.Key()])

		userID, ok, err := s.matcher.Suggest(ctx, line.Description)
		if err != nil {
			res.Errors = append(res.Errors, LineError{Row: line.Row, Error: err.Error()})
			continue
		}

		if !ok {
			res.Unmatched = append(res.Unmatched, line)
			continue
		}

		d, err := s.book(ctx, userID, line, fingerprint)
		if err != nil {
			slog.Error("failed to book deposit", "row", line.Row, "user_id", userID, "error", err)
			res.Errors = append(res.Errors, LineError{Row: line.Row, Error: err.Error()})

			continue
		}

		if d == nil {
			res.Duplicates++
			continue
		}

		res.Credited = append(res.Credited, d)
	}

	slog.Info("statement imported",
		"bank", bank,
		"profile", res.Profile,
		"credited", len(res.Credited),
		"total", res.Total(),
		"duplicates", res.Duplicates,
		"unmatched", len(res.Unmatched),
		"errors", len(res.Errors),
	)

	return res, nil
}

// book returns nil when the line was booked by an earlier import.
func (s *Service) book(ctx context.Context, userID uuid.UUID, line statement.Line, fingerprint string) (*Deposit, error) {
	d := &Deposit{
		ID:             uuid.New(),
		UserID:         userID,
		Fingerprint:    fingerprint,
		Amount:         line.Amount,
		RawDescription: line.Description,
		Date:           line.Date,
	}

	var booked bool

	err := database.WithTx(ctx, s.tx, func(tx database.Tx) error {
		claimed, err := s.repo.Claim(ctx, tx, d)
		if err != nil {
			return fmt.Errorf("claim deposit: %w", err)
		}

		if !claimed {
			return nil
		}

		wtx, err := s.ledger.Credit(ctx, tx, wallet.Entry{
			UserID:      userID,
			Amount:      d.Amount,
			Type:        wallet.TypeDeposit,
			Description: "Bank transfer " + line.Description,
			Reference:   &wallet.Reference{Type: wallet.RefDeposit, ID: d.ID},
		})
		if err != nil {
			return fmt.Errorf("credit deposit: %w", err)
		}

		if err := s.repo.AttachTransaction(ctx, tx, d.ID, wtx.ID); err != nil {
			return fmt.Errorf("attach transaction: %w", err)
		}

		d.TransactionID = &wtx.ID
		booked = true

		return nil
	})
	if err != nil || !booked {
		return nil, err
	}

	return d, nil
}

type Page struct {
	Deposits []*Deposit
	Meta     pagination.Meta
}

func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, page pagination.Request) (*Page, error) {
	page = page.Normalize()

	deposits, total, err := s.repo.ListForUser(ctx, userID, page)
	if err != nil {
		return nil, fmt.Errorf("list deposits: %w", err)
	}

	return &Page{Deposits: deposits, Meta: pagination.NewMeta(page, total)}, nil
}
