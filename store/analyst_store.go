package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"journeylens/api/models"
)

var (
	ErrAnalystNotFound = errors.New("analyst not found")
	ErrAnalystExists   = errors.New("analyst already exists")
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

type AnalystStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewAnalystStore(db *sql.DB, logger *zap.Logger) *AnalystStore {
	return &AnalystStore{db: db, logger: logger}
}

// CreateAnalyst inserts a new analyst.
func (s *AnalystStore) CreateAnalyst(ctx context.Context, email string, hashedPassword []byte) (*models.Analyst, error) {
	analyst := &models.Analyst{}
	query := `
		INSERT INTO analysts (email, hashed_password)
		VALUES ($1, $2)
		RETURNING id, email, created_at, updated_at;
	`
	err := s.db.QueryRowContext(ctx, query, email, hashedPassword).Scan(
		&analyst.ID,
		&analyst.Email,
		&analyst.CreatedAt,
		&analyst.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, fmt.Errorf("email %q: %w", email, ErrAnalystExists)
		}
		return nil, fmt.Errorf("failed to create analyst: %w", err)
	}

	s.logger.Info("analyst created", zap.Int("id", analyst.ID), zap.String("email", analyst.Email))
	return analyst, nil
}

func (s *AnalystStore) GetAnalystByEmail(ctx context.Context, email string) (*models.Analyst, error) {
	analyst := &models.Analyst{}
	query := `
		SELECT id, email, hashed_password, created_at, updated_at
		FROM analysts
		WHERE email = $1;
	`
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&analyst.ID,
		&analyst.Email,
		&analyst.HashedPassword,
		&analyst.CreatedAt,
		&analyst.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("email %q: %w", email, ErrAnalystNotFound)
		}
		return nil, fmt.Errorf("failed to get analyst by email: %w", err)
	}

	return analyst, nil
}
