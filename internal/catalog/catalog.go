// Package catalog reads the products and resale plans that checkout prices
// against. Catalog management lives elsewhere.
package catalog

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrPlanNotFound    = errors.New("resale plan not found")
)

type Product struct {
	ID            uuid.UUID
	CompanyID     uuid.UUID
	CompanyActive bool
	Name          string
	Price         int64 // Price in cents
	StockQuantity int
	InStock       bool
	Active        bool
	UpdatedAt     time.Time
}

type ResalePlan struct {
	ID               uuid.UUID
	ProductID        uuid.UUID
	Label            string
	Months           int
	ProfitPercentage decimal.Decimal
	Active           bool
}
