package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/catalog"
	"github.com/MrJamesThe3rd/marketvest/internal/database"
)

type Store struct{}

func New() *Store {
	return &Store{}
}

func (s *Store) GetProduct(ctx context.Context, q database.Querier, id uuid.UUID) (*catalog.Product, error) {
	query := `
		SELECT p.id, p.company_id, c.active, p.name, p.price, p.stock_quantity, p.in_stock, p.active, p.updated_at
		FROM products p
		JOIN companies c ON c.id = p.company_id
		WHERE p.id = $1
	`

	var p catalog.Product

	err := q.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.CompanyID, &p.CompanyActive, &p.Name, &p.Price,
		&p.StockQuantity, &p.InStock, &p.Active, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrProductNotFound
		}

		return nil, fmt.Errorf("getting product: %w", err)
	}

	return &p, nil
}

func (s *Store) GetResalePlan(ctx context.Context, q database.Querier, id uuid.UUID) (*catalog.ResalePlan, error) {
	query := `
		SELECT id, product_id, label, months, profit_percentage, active
		FROM resale_plans
		WHERE id = $1
	`

	var p catalog.ResalePlan

	err := q.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.ProductID, &p.Label, &p.Months, &p.ProfitPercentage, &p.Active,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrPlanNotFound
		}

		return nil, fmt.Errorf("getting resale plan: %w", err)
	}

	return &p, nil
}
