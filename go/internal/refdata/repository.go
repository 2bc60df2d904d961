// Package refdata provides read-only lookups for seasons, position formats
// and scoring schemas. These tables are seeded out of band and never mutated
// by this service.
package refdata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mcdev12/gridiron/go/internal/apperrors"
	"github.com/mcdev12/gridiron/go/internal/models"
	"github.com/mcdev12/gridiron/go/internal/sqlutil"
)

// Repository implements reference-data access operations
type Repository struct {
	db sqlutil.DBTX
}

// NewRepository creates a new refdata repository
func NewRepository(db sqlutil.DBTX) *Repository {
	return &Repository{db: db}
}

// GetSeason retrieves a season by ID
func (r *Repository) GetSeason(ctx context.Context, id uuid.UUID) (*models.Season, error) {
	const query = `
		SELECT id, year, label, active, created_at
		FROM seasons
		WHERE id = $1`

	var season models.Season
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&season.ID, &season.Year, &season.Label, &season.Active, &season.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.KindNotFound, "season %s does not exist", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get season: %w", err)
	}
	return &season, nil
}

// GetPositionFormat retrieves a position format by ID
func (r *Repository) GetPositionFormat(ctx context.Context, id uuid.UUID) (*models.PositionFormat, error) {
	const query = `
		SELECT id, name, total_slots
		FROM position_formats
		WHERE id = $1`

	var format models.PositionFormat
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&format.ID, &format.Name, &format.TotalSlots,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.KindNotFound, "position format %s does not exist", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get position format: %w", err)
	}
	return &format, nil
}

// GetScoringSchema retrieves a scoring schema by ID
func (r *Repository) GetScoringSchema(ctx context.Context, id uuid.UUID) (*models.ScoringSchema, error) {
	const query = `
		SELECT id, name, supports_decimal
		FROM scoring_schemas
		WHERE id = $1`

	var schema models.ScoringSchema
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&schema.ID, &schema.Name, &schema.SupportsDecimal,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.KindNotFound, "scoring schema %s does not exist", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scoring schema: %w", err)
	}
	return &schema, nil
}
