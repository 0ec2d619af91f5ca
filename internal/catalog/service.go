package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/database"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=catalog
type Repository interface {
	GetProduct(ctx context.Context, q database.Querier, id uuid.UUID) (*Product, error)
	GetResalePlan(ctx context.Context, q database.Querier, id uuid.UUID) (*ResalePlan, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Product(ctx context.Context, q database.Querier, id uuid.UUID) (*Product, error) {
	return s.repo.GetProduct(ctx, q, id)
}

func (s *Service) ResalePlan(ctx context.Context, q database.Querier, id uuid.UUID) (*ResalePlan, error) {
	return s.repo.GetResalePlan(ctx, q, id)
}
