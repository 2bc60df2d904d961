// Package team stores fantasy teams. Teams are soft-deactivated on leave or
// removal; rows survive so roster history keeps resolving.
package team

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/gridiron/go/internal/apperrors"
	"github.com/mcdev12/gridiron/go/internal/models"
	"github.com/mcdev12/gridiron/go/internal/sqlutil"
)

const teamColumns = `id, league_id, owner_id, name, logo_url, thumbnail_url, active, created_at, deactivated_at`

// CreateTeamRequest represents the data needed to create a new team
type CreateTeamRequest struct {
	LeagueID     uuid.UUID `json:"league_id"`
	OwnerID      uuid.UUID `json:"owner_id"`
	Name         string    `json:"name"`
	LogoURL      string    `json:"logo_url"`
	ThumbnailURL string    `json:"thumbnail_url"`
}

// Repository implements team data access operations
type Repository struct {
	db sqlutil.DBTX
}

// NewRepository creates a new team repository
func NewRepository(db sqlutil.DBTX) *Repository {
	return &Repository{db: db}
}

// CreateTeam creates a new active team
func (r *Repository) CreateTeam(ctx context.Context, req CreateTeamRequest) (*models.Team, error) {
	const query = `
		INSERT INTO teams (id, league_id, owner_id, name, logo_url, thumbnail_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + teamColumns

	row := r.db.QueryRowContext(ctx, query,
		uuid.New(), req.LeagueID, req.OwnerID, req.Name,
		sqlutil.ToSqlString(nilIfEmpty(req.LogoURL)),
		sqlutil.ToSqlString(nilIfEmpty(req.ThumbnailURL)),
	)
	team, err := scanTeam(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return team, nil
}

// GetTeam retrieves a team by ID
func (r *Repository) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	const query = `
		SELECT ` + teamColumns + `
		FROM teams
		WHERE id = $1`

	team, err := scanTeam(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.KindNotFound, "team %s does not exist", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return team, nil
}

// GetActiveTeamByLeagueAndOwner retrieves the owner's active team in a league
func (r *Repository) GetActiveTeamByLeagueAndOwner(ctx context.Context, leagueID, ownerID uuid.UUID) (*models.Team, error) {
	const query = `
		SELECT ` + teamColumns + `
		FROM teams
		WHERE league_id = $1 AND owner_id = $2 AND active`

	team, err := scanTeam(r.db.QueryRowContext(ctx, query, leagueID, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.New(apperrors.KindNotFound, "user has no active team in this league")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team by league and owner: %w", err)
	}
	return team, nil
}

// ListActiveByLeague retrieves all active teams in a league
func (r *Repository) ListActiveByLeague(ctx context.Context, leagueID uuid.UUID) ([]models.Team, error) {
	const query = `
		SELECT ` + teamColumns + `
		FROM teams
		WHERE league_id = $1 AND active
		ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams by league: %w", err)
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, *team)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list teams by league: %w", err)
	}
	return teams, nil
}

// CountActiveByLeague counts active teams in a league
func (r *Repository) CountActiveByLeague(ctx context.Context, leagueID uuid.UUID) (int, error) {
	const query = `SELECT COUNT(*) FROM teams WHERE league_id = $1 AND active`

	var count int
	if err := r.db.QueryRowContext(ctx, query, leagueID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count teams by league: %w", err)
	}
	return count, nil
}

// ActiveTeamNameExists reports whether an active team in the league already
// uses the name (case-insensitive)
func (r *Repository) ActiveTeamNameExists(ctx context.Context, leagueID uuid.UUID, name string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM teams
			WHERE league_id = $1 AND lower(name) = lower($2) AND active
		)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, leagueID, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check team name: %w", err)
	}
	return exists, nil
}

// DeactivateTeam soft-deletes a team
func (r *Repository) DeactivateTeam(ctx context.Context, id uuid.UUID, at time.Time) error {
	const query = `
		UPDATE teams
		SET active = FALSE, deactivated_at = $2
		WHERE id = $1 AND active`

	res, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to deactivate team: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to deactivate team: %w", err)
	}
	if affected == 0 {
		return apperrors.New(apperrors.KindNotFound, "team is not active")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTeam(row rowScanner) (*models.Team, error) {
	var (
		team          models.Team
		logoURL       sql.NullString
		thumbnailURL  sql.NullString
		deactivatedAt sql.NullTime
	)
	err := row.Scan(&team.ID, &team.LeagueID, &team.OwnerID, &team.Name,
		&logoURL, &thumbnailURL, &team.Active, &team.CreatedAt, &deactivatedAt)
	if err != nil {
		return nil, err
	}
	team.LogoURL = sqlutil.FromSqlString(logoURL, "")
	team.ThumbnailURL = sqlutil.FromSqlString(thumbnailURL, "")
	team.DeactivatedAt = sqlutil.FromSqlTime(deactivatedAt)
	return &team, nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
