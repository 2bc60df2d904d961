// Package player provides player lookups for roster validation. Player
// ingestion is handled by an upstream feed, not this service.
package player

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

// Repository implements player data access operations
type Repository struct {
	db sqlutil.DBTX
}

// NewRepository creates a new player repository
func NewRepository(db sqlutil.DBTX) *Repository {
	return &Repository{db: db}
}

// GetPlayer retrieves a player by ID
func (r *Repository) GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error) {
	const query = `
		SELECT id, full_name, position, image_url, active, created_at
		FROM players
		WHERE id = $1`

	var (
		p        models.Player
		imageURL sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.FullName, &p.Position, &imageURL, &p.Active, &p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.KindNotFound, "player %s does not exist", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	p.ImageURL = sqlutil.FromSqlString(imageURL, "")
	return &p, nil
}
