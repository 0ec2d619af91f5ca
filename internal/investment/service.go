package investment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/database"
	"github.com/MrJamesThe3rd/marketvest/internal/pagination"
	"github.com/MrJamesThe3rd/marketvest/internal/resale"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=investment
type Repository interface {
	CreateInvestment(ctx context.Context, q database.Querier, inv *Investment) error
	ActivateForOrder(ctx context.Context, q database.Querier, orderID uuid.UUID) (int64, error)
	LockForOrder(ctx context.Context, q database.Querier, orderID uuid.UUID) ([]Status, error)
	CancelForOrder(ctx context.Context, q database.Querier, orderID uuid.UUID) (int64, error)

	MarkMatured(ctx context.Context, now time.Time) (int64, error)
	MarkPaidOut(ctx context.Context, id, paidBy uuid.UUID, at time.Time) (bool, error)

	GetInvestment(ctx context.Context, id uuid.UUID) (*Investment, error)
	ListInvestments(ctx context.Context, filter ListFilter, page pagination.Request) ([]*Investment, int, error)
	Summarize(ctx context.Context, filter ListFilter) (*Summary, error)
}

type Service struct {
	repo    Repository
	nowFunc func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, nowFunc: time.Now}
}

// WithClock replaces the time source used for sweeps and payouts.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.nowFunc = now
	return s
}

type OpenParams struct {
	UserID      uuid.UUID
	OrderID     uuid.UUID
	OrderItemID uuid.UUID
	ProductID   uuid.UUID
	Invested    int64
	Plan        resale.Snapshot
	At          time.Time
}

// Open records a pending investment inside the caller's unit of work.
func (s *Service) Open(ctx context.Context, q database.Querier, p OpenParams) (*Investment, error) {
	terms := p.Plan.Terms(p.Invested, p.At)

	inv := &Investment{
		UserID:         p.UserID,
		OrderID:        p.OrderID,
		OrderItemID:    p.OrderItemID,
		ProductID:      p.ProductID,
		InvestedAmount: terms.Invested,
		ProfitAmount:   terms.Profit,
		ExpectedReturn: terms.ExpectedReturn,
		Plan:           p.Plan,
		InvestmentDate: terms.InvestmentDate,
		MaturityDate:   terms.MaturityDate,
		Status:         StatusPending,
	}

	if err := s.repo.CreateInvestment(ctx, q, inv); err != nil {
		return nil, fmt.Errorf("create investment: %w", err)
	}

	return inv, nil
}

// Activate moves the order's pending investments to active. Checkout calls it
// as the last step before commit, so pending is never visible outside it.
func (s *Service) Activate(ctx context.Context, q database.Querier, orderID uuid.UUID) (int64, error) {
	n, err := s.repo.ActivateForOrder(ctx, q, orderID)
	if err != nil {
		return 0, fmt.Errorf("activate investments: %w", err)
	}

	return n, nil
}

// CancelForOrder cancels the order's pending and active investments. The rows
// stay locked until the caller's unit of work ends, so the maturity sweep
// cannot move one underneath it. Once any investment has matured the whole
// cancel is refused with ErrMatured.
func (s *Service) CancelForOrder(ctx context.Context, q database.Querier, orderID uuid.UUID) (int64, error) {
	statuses, err := s.repo.LockForOrder(ctx, q, orderID)
	if err != nil {
		return 0, fmt.Errorf("lock investments: %w", err)
	}

	for _, st := range statuses {
		if st.Settling() {
			return 0, ErrMatured
		}
	}

	n, err := s.repo.CancelForOrder(ctx, q, orderID)
	if err != nil {
		return 0, fmt.Errorf("cancel investments: %w", err)
	}

	return n, nil
}

// SweepMatured marks every active investment past its maturity date as
// matured. Running it again finds nothing left to do.
func (s *Service) SweepMatured(ctx context.Context) (int64, error) {
	n, err := s.repo.MarkMatured(ctx, s.nowFunc())
	if err != nil {
		return 0, fmt.Errorf("mark matured: %w", err)
	}

	if n > 0 {
		slog.Info("investments matured", "count", n)
	}

	return n, nil
}

// MarkPaid records that an admin paid the investment out. It never moves money.
func (s *Service) MarkPaid(ctx context.Context, id, adminID uuid.UUID) (*Investment, error) {
	ok, err := s.repo.MarkPaidOut(ctx, id, adminID, s.nowFunc())
	if err != nil {
		return nil, fmt.Errorf("mark paid out: %w", err)
	}

	inv, err := s.repo.GetInvestment(ctx, id)
	if err != nil {
		return nil, err
	}

	if ok {
		slog.Info("investment paid out", "investment_id", id, "admin_id", adminID, "amount", inv.ExpectedReturn)
		return inv, nil
	}

	if inv.Status == StatusPaidOut || inv.PaidOutAt != nil {
		return nil, ErrAlreadyPaidOut
	}

	return nil, ErrNotMatured.WithMessage("investment is %s, not matured", inv.Status)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Investment, error) {
	return s.repo.GetInvestment(ctx, id)
}

type ListFilter struct {
	Status *Status
	UserID *uuid.UUID
}

type Summary struct {
	Count          int
	TotalInvested  int64
	TotalProfit    int64
	TotalExpected  int64
	OldestMaturity *time.Time
}

type Page struct {
	Investments []*Investment
	Meta        pagination.Meta
	Summary     *Summary
}

// ListMatured returns matured investments awaiting payout, oldest first, with
// a summary of what is owed.
func (s *Service) ListMatured(ctx context.Context, page pagination.Request) (*Page, error) {
	filter := ListFilter{Status: new(StatusMatured)}

	p, err := s.list(ctx, filter, page)
	if err != nil {
		return nil, err
	}

	summary, err := s.repo.Summarize(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("summarize investments: %w", err)
	}

	p.Summary = summary

	return p, nil
}

// ListPaid returns the payout history, most recent first.
func (s *Service) ListPaid(ctx context.Context, page pagination.Request) (*Page, error) {
	return s.list(ctx, ListFilter{Status: new(StatusPaidOut)}, page)
}

func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, page pagination.Request) (*Page, error) {
	return s.list(ctx, ListFilter{UserID: &userID}, page)
}

func (s *Service) list(ctx context.Context, filter ListFilter, page pagination.Request) (*Page, error) {
	page = page.Normalize()

	invs, total, err := s.repo.ListInvestments(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}

	return &Page{Investments: invs, Meta: pagination.NewMeta(page, total)}, nil
}
