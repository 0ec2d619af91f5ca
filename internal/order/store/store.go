package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/marketvest/internal/database"
	"github.com/MrJamesThe3rd/marketvest/internal/order"
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

const selectOrderColumns = `
	id, user_id, order_number, type, status, subtotal, discount_percent, discount_amount, total_amount,
	shipping, resale_return_date, resale_expected_return, resale_returned, resale_returned_at,
	created_at, updated_at
`

func scanOrder(s scanner) (*order.Order, error) {
	var (
		o         order.Order
		typeStr   string
		statusStr string
		shipping  []byte
	)

	if err := s.Scan(
		&o.ID, &o.UserID, &o.OrderNumber, &typeStr, &statusStr,
		&o.Subtotal, &o.DiscountPercent, &o.DiscountAmount, &o.TotalAmount,
		&shipping, &o.ResaleReturnDate, &o.ResaleExpectedReturn, &o.ResaleReturned, &o.ResaleReturnedAt,
		&o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}

	o.Type = order.Type(typeStr)
	o.Status = order.Status(statusStr)

	if len(shipping) > 0 {
		var sh order.Shipping
		if err := json.Unmarshal(shipping, &sh); err != nil {
			return nil, fmt.Errorf("decoding shipping: %w", err)
		}

		o.Shipping = &sh
	}

	return &o, nil
}

const selectItemColumns = `
	oi.id, oi.order_id, oi.product_id, p.name, oi.company_id, oi.quantity, oi.unit_price, oi.total_price,
	oi.purchase_type, oi.resale_plan_id, oi.resale_plan_months, oi.resale_plan_profit_percentage,
	oi.resale_plan_label, oi.resale_expected_return, oi.investment_status
`

func scanItem(s scanner) (*order.Item, error) {
	var (
		it       order.Item
		purchase string
		months   sql.NullInt64
		pct      decimal.NullDecimal
		label    sql.NullString
	)

	if err := s.Scan(
		&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.CompanyID, &it.Quantity,
		&it.UnitPrice, &it.TotalPrice, &purchase, &it.ResalePlanID, &months, &pct,
		&label, &it.ResaleExpectedReturn, &it.InvestmentStatus,
	); err != nil {
		return nil, err
	}

	it.PurchaseType = order.PurchaseType(purchase)

	if months.Valid && pct.Valid {
		snap := resale.Restore(int(months.Int64), pct.Decimal, label.String)
		it.ResaleSnapshot = &snap
	}

	return &it, nil
}

func (s *Store) CreateOrder(ctx context.Context, q database.Querier, o *order.Order) (bool, error) {
	var shipping []byte

	if o.Shipping != nil {
		b, err := json.Marshal(o.Shipping)
		if err != nil {
			return false, fmt.Errorf("encoding shipping: %w", err)
		}

		shipping = b
	}

	query := `
		INSERT INTO orders (
			user_id, order_number, type, status, subtotal, discount_percent, discount_amount, total_amount,
			shipping, resale_return_date, resale_expected_return
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (order_number) DO NOTHING
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRowContext(ctx, query,
		o.UserID,
		o.OrderNumber,
		o.Type,
		o.Status,
		o.Subtotal,
		o.DiscountPercent,
		o.DiscountAmount,
		o.TotalAmount,
		shipping,
		o.ResaleReturnDate,
		o.ResaleExpectedReturn,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}

		return false, fmt.Errorf("creating order: %w", err)
	}

	return true, nil
}

func (s *Store) CreateItem(ctx context.Context, q database.Querier, it *order.Item) error {
	var (
		months *int
		pct    *decimal.Decimal
		label  *string
	)

	if it.ResaleSnapshot != nil {
		m, p, l := it.ResaleSnapshot.Months(), it.ResaleSnapshot.ProfitPercentage(), it.ResaleSnapshot.Label()
		months, pct, label = &m, &p, &l
	}

	query := `
		INSERT INTO order_items (
			order_id, product_id, company_id, quantity, unit_price, total_price, purchase_type,
			resale_plan_id, resale_plan_months, resale_plan_profit_percentage, resale_plan_label,
			resale_expected_return, investment_status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`

	err := q.QueryRowContext(ctx, query,
		it.OrderID,
		it.ProductID,
		it.CompanyID,
		it.Quantity,
		it.UnitPrice,
		it.TotalPrice,
		it.PurchaseType,
		it.ResalePlanID,
		months,
		pct,
		label,
		it.ResaleExpectedReturn,
		it.InvestmentStatus,
	).Scan(&it.ID)
	if err != nil {
		return fmt.Errorf("creating order item: %w", err)
	}

	return nil
}

func (s *Store) LockOrder(ctx context.Context, q database.Querier, id uuid.UUID) (*order.Order, error) {
	query := `SELECT ` + selectOrderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`

	return s.loadOrder(ctx, q, query, id)
}

func (s *Store) GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	query := `SELECT ` + selectOrderColumns + ` FROM orders WHERE id = $1`

	return s.loadOrder(ctx, s.db, query, id)
}

func (s *Store) loadOrder(ctx context.Context, q database.Querier, query string, id uuid.UUID) (*order.Order, error) {
	o, err := scanOrder(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, order.ErrNotFound
		}

		return nil, fmt.Errorf("getting order: %w", err)
	}

	items, err := s.listItems(ctx, q, []uuid.UUID{o.ID})
	if err != nil {
		return nil, err
	}

	o.Items = items[o.ID]

	return o, nil
}

func (s *Store) listItems(ctx context.Context, q database.Querier, orderIDs []uuid.UUID) (map[uuid.UUID][]*order.Item, error) {
	ids := make([]string, len(orderIDs))
	for i, id := range orderIDs {
		ids[i] = id.String()
	}

	query := `SELECT ` + selectItemColumns + `
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1::uuid[])
		ORDER BY oi.created_at, oi.id`

	rows, err := q.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("listing order items: %w", err)
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]*order.Item, len(orderIDs))

	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order item: %w", err)
		}

		items[it.OrderID] = append(items[it.OrderID], it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order items: %w", err)
	}

	return items, nil
}

func (s *Store) UpdateStatus(ctx context.Context, q database.Querier, id uuid.UUID, status order.Status) error {
	res, err := q.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`, status, id,
	)
	if err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return order.ErrNotFound
	}

	return nil
}

func (s *Store) ListOrders(ctx context.Context, userID uuid.UUID, page pagination.Request) ([]*order.Order, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting orders: %w", err)
	}

	query := `SELECT ` + selectOrderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`

	rows, err := s.db.QueryContext(ctx, query, userID, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	var (
		orders []*order.Order
		ids    []uuid.UUID
	)

	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning order: %w", err)
		}

		orders = append(orders, o)
		ids = append(ids, o.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating orders: %w", err)
	}

	if len(orders) == 0 {
		return nil, total, nil
	}

	items, err := s.listItems(ctx, s.db, ids)
	if err != nil {
		return nil, 0, err
	}

	for _, o := range orders {
		o.Items = items[o.ID]
	}

	return orders, total, nil
}
