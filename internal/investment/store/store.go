package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/marketvest/internal/database"
	"github.com/MrJamesThe3rd/marketvest/internal/investment"
	"github.com/MrJamesThe3rd/marketvest/internal/pagination"
	"github.com/MrJamesThe3rd/marketvest/internal/resale"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectInvestmentColumns = `
	i.id, i.user_id, u.email, i.order_id, o.order_number, i.order_item_id, i.product_id, p.name,
	i.invested_amount, i.profit_amount, i.expected_return,
	i.plan_months, i.plan_profit_percentage, i.plan_label,
	i.investment_date, i.maturity_date, i.status, i.matured_at, i.paid_out_at, i.paid_by,
	i.created_at, i.updated_at
`

const fromInvestments = `
	FROM investments i
	JOIN users u ON u.id = i.user_id
	JOIN orders o ON o.id = i.order_id
	JOIN products p ON p.id = i.product_id
`

// scanInvestment expects the column order of selectInvestmentColumns.
func scanInvestment(s scanner) (*investment.Investment, error) {
	var (
		inv       investment.Investment
		months    int
		pct       decimal.Decimal
		label     string
		statusStr string
	)

	if err := s.Scan(
		&inv.ID, &inv.UserID, &inv.UserEmail, &inv.OrderID, &inv.OrderNumber, &inv.OrderItemID,
		&inv.ProductID, &inv.ProductName,
		&inv.InvestedAmount, &inv.ProfitAmount, &inv.ExpectedReturn,
		&months, &pct, &label,
		&inv.InvestmentDate, &inv.MaturityDate, &statusStr, &inv.MaturedAt, &inv.PaidOutAt, &inv.PaidBy,
		&inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		return nil, err
	}

	inv.Plan = resale.Restore(months, pct, label)
	inv.Status = investment.Status(statusStr)

	return &inv, nil
}

func (s *Store) CreateInvestment(ctx context.Context, q database.Querier, inv *investment.Investment) error {
	query := `
		INSERT INTO investments (
			user_id, order_id, order_item_id, product_id,
			invested_amount, profit_amount, expected_return,
			plan_months, plan_profit_percentage, plan_label,
			investment_date, maturity_date, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRowContext(ctx, query,
		inv.UserID,
		inv.OrderID,
		inv.OrderItemID,
		inv.ProductID,
		inv.InvestedAmount,
		inv.ProfitAmount,
		inv.ExpectedReturn,
		inv.Plan.Months(),
		inv.Plan.ProfitPercentage(),
		inv.Plan.Label(),
		inv.InvestmentDate,
		inv.MaturityDate,
		inv.Status,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating investment: %w", err)
	}

	return nil
}

// transition moves matching investments to the target status and mirrors the
// new status onto their order items in the same statement.
func transition(ctx context.Context, q database.Querier, where string, set string, args ...any) (int64, error) {
	query := `
		WITH moved AS (
			UPDATE investments
			SET ` + set + `, updated_at = NOW()
			WHERE ` + where + `
			RETURNING order_item_id, status
		)
		UPDATE order_items oi
		SET investment_status = moved.status
		FROM moved
		WHERE oi.id = moved.order_item_id
	`

	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (s *Store) ActivateForOrder(ctx context.Context, q database.Querier, orderID uuid.UUID) (int64, error) {
	n, err := transition(ctx, q,
		`order_id = $1 AND status = 'pending'`,
		`status = 'active'`,
		orderID,
	)
	if err != nil {
		return 0, fmt.Errorf("activating investments: %w", err)
	}

	return n, nil
}

func (s *Store) LockForOrder(ctx context.Context, q database.Querier, orderID uuid.UUID) ([]investment.Status, error) {
	query := `SELECT status FROM investments WHERE order_id = $1 ORDER BY id FOR UPDATE`

	rows, err := q.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("locking investments: %w", err)
	}
	defer rows.Close()

	var statuses []investment.Status

	for rows.Next() {
		var st investment.Status
		if err := rows.Scan(&st); err != nil {
			return nil, fmt.Errorf("scanning investment status: %w", err)
		}

		statuses = append(statuses, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating investments: %w", err)
	}

	return statuses, nil
}

func (s *Store) CancelForOrder(ctx context.Context, q database.Querier, orderID uuid.UUID) (int64, error) {
	n, err := transition(ctx, q,
		`order_id = $1 AND status IN ('pending', 'active')`,
		`status = 'cancelled'`,
		orderID,
	)
	if err != nil {
		return 0, fmt.Errorf("cancelling investments: %w", err)
	}

	return n, nil
}

func (s *Store) MarkMatured(ctx context.Context, now time.Time) (int64, error) {
	n, err := transition(ctx, s.db,
		`status = 'active' AND maturity_date <= $1`,
		`status = 'matured', matured_at = $1`,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("marking investments matured: %w", err)
	}

	return n, nil
}

func (s *Store) MarkPaidOut(ctx context.Context, id, paidBy uuid.UUID, at time.Time) (bool, error) {
	n, err := transition(ctx, s.db,
		`id = $1 AND status = 'matured' AND paid_out_at IS NULL`,
		`status = 'paid_out', paid_out_at = $3, paid_by = $2`,
		id, paidBy, at,
	)
	if err != nil {
		return false, fmt.Errorf("marking investment paid out: %w", err)
	}

	return n == 1, nil
}

func (s *Store) GetInvestment(ctx context.Context, id uuid.UUID) (*investment.Investment, error) {
	query := `SELECT ` + selectInvestmentColumns + fromInvestments + ` WHERE i.id = $1`

	inv, err := scanInvestment(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, investment.ErrNotFound
		}

		return nil, fmt.Errorf("getting investment: %w", err)
	}

	return inv, nil
}

func whereClause(filter investment.ListFilter) (string, []any) {
	where := ` WHERE TRUE`

	var args []any

	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += fmt.Sprintf(" AND i.status = $%d", len(args))
	}

	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		where += fmt.Sprintf(" AND i.user_id = $%d", len(args))
	}

	return where, args
}

func orderClause(filter investment.ListFilter) string {
	if filter.Status == nil {
		return ` ORDER BY i.investment_date DESC, i.id`
	}

	switch *filter.Status {
	case investment.StatusMatured:
		return ` ORDER BY i.maturity_date ASC, i.id`
	case investment.StatusPaidOut:
		return ` ORDER BY i.paid_out_at DESC, i.id`
	}

	return ` ORDER BY i.investment_date DESC, i.id`
}

func (s *Store) ListInvestments(ctx context.Context, filter investment.ListFilter, page pagination.Request) ([]*investment.Investment, int, error) {
	where, args := whereClause(filter)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM investments i`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting investments: %w", err)
	}

	query := `SELECT ` + selectInvestmentColumns + fromInvestments + where + orderClause(filter) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)

	rows, err := s.db.QueryContext(ctx, query, append(args, page.Limit(), page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing investments: %w", err)
	}
	defer rows.Close()

	var invs []*investment.Investment

	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning investment: %w", err)
		}

		invs = append(invs, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating investments: %w", err)
	}

	return invs, total, nil
}

func (s *Store) Summarize(ctx context.Context, filter investment.ListFilter) (*investment.Summary, error) {
	where, args := whereClause(filter)

	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(i.invested_amount), 0),
		       COALESCE(SUM(i.profit_amount), 0),
		       COALESCE(SUM(i.expected_return), 0),
		       MIN(i.maturity_date)
		FROM investments i` + where

	var sum investment.Summary
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&sum.Count, &sum.TotalInvested, &sum.TotalProfit, &sum.TotalExpected, &sum.OldestMaturity,
	); err != nil {
		return nil, fmt.Errorf("summarizing investments: %w", err)
	}

	return &sum, nil
}
