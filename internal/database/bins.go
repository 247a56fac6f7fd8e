package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"binroute-backend/internal/models"

	"github.com/jmoiron/sqlx"
)

// BinStore reads and writes the bins table
type BinStore struct {
	db *sqlx.DB
}

func NewBinStore(db *sqlx.DB) *BinStore {
	return &BinStore{db: db}
}

const binColumns = `id, user_id, name, latitude, longitude, latest_fill_pct, status,
	latest_reading_at, created_at, updated_at`

// ListBins returns all bins owned by userID
func (s *BinStore) ListBins(ctx context.Context, userID string) ([]models.Bin, error) {
	bins := []models.Bin{}
	err := s.db.SelectContext(ctx, &bins, `
		SELECT `+binColumns+`
		FROM bins
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bins: %w", err)
	}
	return bins, nil
}

// GetBin returns a single bin, or an error matching models.ErrNotFound
func (s *BinStore) GetBin(ctx context.Context, userID, binID string) (*models.Bin, error) {
	var bin models.Bin
	err := s.db.GetContext(ctx, &bin, `
		SELECT `+binColumns+`
		FROM bins
		WHERE id = $1 AND user_id = $2
	`, binID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFound("Bin not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bin: %w", err)
	}
	return &bin, nil
}

func (s *BinStore) CreateBin(ctx context.Context, bin *models.Bin) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO bins (`+binColumns+`)
		VALUES (:id, :user_id, :name, :latitude, :longitude, :latest_fill_pct, :status,
			:latest_reading_at, :created_at, :updated_at)
	`, bin)
	if err != nil {
		return fmt.Errorf("failed to create bin: %w", err)
	}
	return nil
}

// UpdateBin overwrites every mutable column of bin
func (s *BinStore) UpdateBin(ctx context.Context, bin *models.Bin) error {
	result, err := s.db.NamedExecContext(ctx, `
		UPDATE bins
		SET name = :name, latitude = :latitude, longitude = :longitude,
			latest_fill_pct = :latest_fill_pct, status = :status,
			latest_reading_at = :latest_reading_at, updated_at = :updated_at
		WHERE id = :id AND user_id = :user_id
	`, bin)
	if err != nil {
		return fmt.Errorf("failed to update bin: %w", err)
	}
	return requireRow(result, "Bin not found")
}

func (s *BinStore) DeleteBin(ctx context.Context, userID, binID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM bins WHERE id = $1 AND user_id = $2`, binID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete bin: %w", err)
	}
	return requireRow(result, "Bin not found")
}

// requireRow turns a zero-row write into a not-found error
func requireRow(result sql.Result, notFound string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return models.NotFound(notFound)
	}
	return nil
}
