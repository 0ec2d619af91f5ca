package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/marketvest/internal/database"
	"github.com/MrJamesThe3rd/marketvest/internal/matching"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindUser(ctx context.Context, rawDescription string) (uuid.UUID, error) {
	query := `
		SELECT user_id
		FROM deposit_mappings
		WHERE POSITION(UPPER(raw_pattern) IN UPPER($1)) > 0
		ORDER BY LENGTH(raw_pattern) DESC, created_at DESC
		LIMIT 1
	`

	var userID uuid.UUID

	err := s.db.QueryRowContext(ctx, query, rawDescription).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, nil
		}

		return uuid.Nil, fmt.Errorf("finding match: %w", err)
	}

	return userID, nil
}

func (s *Store) CreateMapping(ctx context.Context, rawPattern string, userID uuid.UUID) (*matching.Mapping, error) {
	query := `
		INSERT INTO deposit_mappings (raw_pattern, user_id, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, created_at
	`

	m := &matching.Mapping{RawPattern: rawPattern, UserID: userID}

	err := s.db.QueryRowContext(ctx, query, rawPattern, userID).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		switch {
		case database.IsUniqueViolation(err, "uq_deposit_mappings_pattern"):
			return nil, matching.ErrDuplicatePattern.WithMessage("pattern %q is already mapped", rawPattern)
		case database.IsForeignKeyViolation(err):
			return nil, matching.ErrUnknownUser
		}

		return nil, fmt.Errorf("creating mapping: %w", err)
	}

	return m, nil
}

func (s *Store) ListMappings(ctx context.Context) ([]matching.Mapping, error) {
	query := `
		SELECT id, raw_pattern, user_id, created_at
		FROM deposit_mappings
		ORDER BY raw_pattern
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing mappings: %w", err)
	}
	defer rows.Close()

	mappings := []matching.Mapping{}

	for rows.Next() {
		var m matching.Mapping
		if err := rows.Scan(&m.ID, &m.RawPattern, &m.UserID, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning mapping: %w", err)
		}

		mappings = append(mappings, m)
	}

	return mappings, rows.Err()
}

func (s *Store) DeleteMapping(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM deposit_mappings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting mapping: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting mapping: %w", err)
	}

	if n == 0 {
		return matching.ErrNotFound
	}

	return nil
}
