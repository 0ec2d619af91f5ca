package matching

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=matching
type Repository interface {
	// FindUser returns uuid.Nil when no pattern matches.
	FindUser(ctx context.Context, rawDescription string) (uuid.UUID, error)
	CreateMapping(ctx context.Context, rawPattern string, userID uuid.UUID) (*Mapping, error)
	ListMappings(ctx context.Context) ([]Mapping, error)
	DeleteMapping(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns the user whose longest pattern appears in rawDescription.
func (s *Service) Suggest(ctx context.Context, rawDescription string) (uuid.UUID, bool, error) {
	userID, err := s.repo.FindUser(ctx, rawDescription)
	if err != nil {
		return uuid.Nil, false, err
	}

	return userID, userID != uuid.Nil, nil
}

// Learn remembers that descriptions containing rawPattern belong to userID.
func (s *Service) Learn(ctx context.Context, rawPattern string, userID uuid.UUID) (*Mapping, error) {
	pattern := strings.Join(strings.Fields(rawPattern), " ")
	if utf8.RuneCountInString(pattern) < MinPatternLength {
		return nil, ErrPatternTooShort.WithMessage("pattern must be at least %d characters", MinPatternLength)
	}

	return s.repo.CreateMapping(ctx, pattern, userID)
}

func (s *Service) List(ctx context.Context) ([]Mapping, error) {
	return s.repo.ListMappings(ctx)
}

func (s *Service) Forget(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteMapping(ctx, id)
}
