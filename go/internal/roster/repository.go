package roster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mcdev12/gridiron/go/internal/apperrors"
	"github.com/mcdev12/gridiron/go/internal/models"
	"github.com/mcdev12/gridiron/go/internal/sqlutil"
)

const entryColumns = `id, team_id, league_id, player_id, acquisition_type, acquired_at, active, dropped_at`

// CreateEntryRequest is a validated roster entry ready to insert
type CreateEntryRequest struct {
	TeamID          uuid.UUID
	LeagueID        uuid.UUID
	PlayerID        uuid.UUID
	AcquisitionType models.AcquisitionType
	AcquiredAt      time.Time
}

// Repository implements roster entry data access operations
type Repository struct {
	db sqlutil.DBTX
}

// NewRepository creates a new roster repository
func NewRepository(db sqlutil.DBTX) *Repository {
	return &Repository{db: db}
}

// CreateEntry inserts a new active roster entry
func (r *Repository) CreateEntry(ctx context.Context, req CreateEntryRequest) (*models.RosterEntry, error) {
	const query = `
		INSERT INTO roster_entries (id, team_id, league_id, player_id, acquisition_type, acquired_at, active)
		VALUES ($1, $2, $3, $4, $5, $6, true)
		RETURNING ` + entryColumns

	row := r.db.QueryRowContext(ctx, query,
		uuid.New(), req.TeamID, req.LeagueID, req.PlayerID, req.AcquisitionType, req.AcquiredAt,
	)
	entry, err := scanEntry(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create roster entry: %w", err)
	}
	return entry, nil
}

// GetEntry retrieves a roster entry by ID
func (r *Repository) GetEntry(ctx context.Context, id uuid.UUID) (*models.RosterEntry, error) {
	const query = `SELECT ` + entryColumns + ` FROM roster_entries WHERE id = $1`

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.KindNotFound, "roster entry %s does not exist", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get roster entry: %w", err)
	}
	return entry, nil
}

// ListActiveByTeam returns a team's active roster ordered by acquisition time
func (r *Repository) ListActiveByTeam(ctx context.Context, teamID uuid.UUID) ([]models.RosterEntry, error) {
	const query = `
		SELECT ` + entryColumns + `
		FROM roster_entries
		WHERE team_id = $1 AND active
		ORDER BY acquired_at`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster entries: %w", err)
	}
	defer rows.Close()

	var entries []models.RosterEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan roster entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list roster entries: %w", err)
	}
	return entries, nil
}

// CountActiveByTeam returns the number of active roster entries for a team
func (r *Repository) CountActiveByTeam(ctx context.Context, teamID uuid.UUID) (int, error) {
	const query = `SELECT COUNT(*) FROM roster_entries WHERE team_id = $1 AND active`

	var count int
	if err := r.db.QueryRowContext(ctx, query, teamID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count roster entries: %w", err)
	}
	return count, nil
}

// CountByTeamAndTypes counts a team's entries, active or dropped, whose
// acquisition type is in types. Used for add caps.
func (r *Repository) CountByTeamAndTypes(ctx context.Context, teamID uuid.UUID, types []models.AcquisitionType) (int, error) {
	const query = `
		SELECT COUNT(*) FROM roster_entries
		WHERE team_id = $1 AND acquisition_type = ANY($2)`

	typeStrings := make([]string, len(types))
	for i, t := range types {
		typeStrings[i] = string(t)
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query, teamID, pq.Array(typeStrings)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count roster entries by type: %w", err)
	}
	return count, nil
}

// PlayerHasActiveEntryInLeague reports whether the player is already on any
// active roster in the league
func (r *Repository) PlayerHasActiveEntryInLeague(ctx context.Context, leagueID, playerID uuid.UUID) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM roster_entries
			WHERE league_id = $1 AND player_id = $2 AND active
		)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, leagueID, playerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check player roster status: %w", err)
	}
	return exists, nil
}

// DeactivateEntry soft-deletes a roster entry
func (r *Repository) DeactivateEntry(ctx context.Context, id uuid.UUID, at time.Time) error {
	const query = `
		UPDATE roster_entries
		SET active = false, dropped_at = $2
		WHERE id = $1 AND active`

	result, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to drop roster entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to drop roster entry: %w", err)
	}
	if affected == 0 {
		return apperrors.Newf(apperrors.KindNotFound, "roster entry %s is not active", id)
	}
	return nil
}

// AcquisitionCount is one acquisition type's active entry count for a team
type AcquisitionCount struct {
	Type  models.AcquisitionType
	Count int
}

// CountActiveByAcquisitionType groups a team's active entries by how they
// were acquired
func (r *Repository) CountActiveByAcquisitionType(ctx context.Context, teamID uuid.UUID) ([]AcquisitionCount, error) {
	const query = `
		SELECT acquisition_type, COUNT(*)
		FROM roster_entries
		WHERE team_id = $1 AND active
		GROUP BY acquisition_type
		ORDER BY acquisition_type`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to count acquisitions: %w", err)
	}
	defer rows.Close()

	var counts []AcquisitionCount
	for rows.Next() {
		var c AcquisitionCount
		if err := rows.Scan(&c.Type, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan acquisition count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to count acquisitions: %w", err)
	}
	return counts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.RosterEntry, error) {
	var (
		entry     models.RosterEntry
		droppedAt sql.NullTime
	)
	err := row.Scan(&entry.ID, &entry.TeamID, &entry.LeagueID, &entry.PlayerID,
		&entry.AcquisitionType, &entry.AcquiredAt, &entry.Active, &droppedAt)
	if err != nil {
		return nil, err
	}
	entry.DroppedAt = sqlutil.FromSqlTime(droppedAt)
	return &entry, nil
}
